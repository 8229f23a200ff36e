package fsm

type Condition func(word string) bool

type Rule struct {
	Dst  string
	Cond Condition
}

func AnyCondition(word string) bool {
	return true
}

func NewWordSetCondition(set map[string]bool) Condition {
	return func(word string) bool {
		return set[word]
	}
}

// NewWordsCondition matches any of the given words exactly.
func NewWordsCondition(words ...string) Condition {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return NewWordSetCondition(set)
}

func NewTextValueCondition(value string) Condition {
	return func(word string) bool {
		return word == value
	}
}

func NewDisjointCondition(conditions ...Condition) Condition {
	return func(word string) bool {
		for _, cond := range conditions {
			if cond(word) {
				return true
			}
		}

		return false
	}
}

func NewNegateCondition(cond Condition) Condition {
	return func(word string) bool {
		return !cond(word)
	}
}

// NewRuleTransition checks rules in order against the current word and falls
// back to the given state when none of them match.
func NewRuleTransition(rules []Rule, fallback string) TransitionFunc {
	return func(words []string, index int) (string, int) {
		word := words[index]
		for _, rule := range rules {
			if rule.Cond(word) {
				return rule.Dst, index + 1
			}
		}
		return fallback, index + 1
	}
}
