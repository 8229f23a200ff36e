package relation

import (
	"sort"

	"github.com/peter-xbs/FSM/relation/fsm"
)

// LabelDictionary maps an action word to the entity tags it may govern.
type LabelDictionary map[string][]string

func DefaultLabelDictionary() LabelDictionary {
	return LabelDictionary{
		fsm.WordDiagnose:    {"dis", "sym"},
		fsm.WordGive:        {"tot", "med"},
		"行":                 {"sur", "tot"},
		fsm.WordTake:        {"med"},
		fsm.WordTakeOrally:  {"med"},
		fsm.WordEmerge:      {"dis", "sym"},
		fsm.WordDiscontinue: {"tot", "med"},
		fsm.WordAdminister:  {"tot", "med"},
		fsm.WordHave:        {"sym", "dis"},
		fsm.WordApply:       {"med", "tot"},
	}
}

// Tags returns the governed tags of word, nil for unknown words.
func (dict LabelDictionary) Tags(word string) []string {
	return dict[word]
}

func (dict LabelDictionary) Eligible(word string, tag string) bool {
	for _, t := range dict[word] {
		if t == tag {
			return true
		}
	}
	return false
}

// WithOverrides returns a copy where every word of overrides replaces the
// default tag set.
func (dict LabelDictionary) WithOverrides(overrides map[string][]string) LabelDictionary {
	merged := make(LabelDictionary, len(dict)+len(overrides))
	for word, tags := range dict {
		merged[word] = append([]string(nil), tags...)
	}
	for word, tags := range overrides {
		merged[word] = append([]string(nil), tags...)
	}
	return merged
}

func (dict LabelDictionary) Words() []string {
	words := make([]string, 0, len(dict))
	for w := range dict {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}
