package relation

import "github.com/peter-xbs/FSM/types"

// ExtractActionRuns groups maximal runs of consecutive actTag tokens. Runs
// shorter than two tokens are dropped. After a run the scan resumes one past
// the token that broke it.
func ExtractActionRuns(tokens []*types.Token, actTag string) [][]*types.Token {
	var runs [][]*types.Token
	length := len(tokens)
	if length < 2 {
		return runs
	}

	index := 0
	for index < length {
		if tokens[index].Tag != actTag {
			index++
			continue
		}

		next := index + 1
		run := []*types.Token{tokens[index]}
		for next < length && tokens[next].Tag == actTag {
			run = append(run, tokens[next])
			next++
		}
		if len(run) >= 2 {
			runs = append(runs, run)
		}

		index = next + 1
	}
	return runs
}
