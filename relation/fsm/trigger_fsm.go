package fsm

import (
	"github.com/peter-xbs/FSM/fsm"
)

// Trigger chain lexicon.
const (
	WordDiagnose    = "诊断"
	WordEmerge      = "出现"
	WordHave        = "有"
	WordGive        = "给予"
	WordTake        = "服"
	WordAdminister  = "予以"
	WordTakeOrally  = "服用"
	WordDiscontinue = "停用"
	WordApply       = "应用"
)

// TriggerState enumerates the states of the trigger chain automaton.
type TriggerState int

const (
	StartState TriggerState = iota
	DiagnoseTriggerState
	EmergeTriggerState
	HaveTriggerState
	StopTriggerState
	EndState
	ErrorState
)

var AllTriggerStates = []TriggerState{
	StartState,
	DiagnoseTriggerState,
	EmergeTriggerState,
	HaveTriggerState,
	StopTriggerState,
	EndState,
	ErrorState,
}

func (s TriggerState) String() string {
	switch s {
	case StartState:
		return "start"
	case DiagnoseTriggerState:
		return "diagnose-trigger"
	case EmergeTriggerState:
		return "emerge-trigger"
	case HaveTriggerState:
		return "have-trigger"
	case StopTriggerState:
		return "stop-trigger"
	case EndState:
		return "end"
	case ErrorState:
		return "error"
	}
	return "unknown"
}

func (s TriggerState) Terminal() bool {
	return s == EndState || s == ErrorState
}

var administerConnectors = []string{WordGive, WordTake, WordAdminister, WordTakeOrally}

// Edge moves the automaton to Dst when the current word is one of Words.
type Edge struct {
	Words []string
	Dst   TriggerState
}

// Edges returns the ordered transitions of a live state and the state taken
// when no edge matches. Terminal states have no edges.
func (s TriggerState) Edges() ([]Edge, TriggerState) {
	switch s {
	case StartState:
		return []Edge{
			{Words: []string{WordDiagnose}, Dst: DiagnoseTriggerState},
			{Words: []string{WordEmerge}, Dst: EmergeTriggerState},
			{Words: []string{WordHave}, Dst: HaveTriggerState},
		}, EndState
	case DiagnoseTriggerState:
		return []Edge{
			{Words: administerConnectors, Dst: EndState},
		}, ErrorState
	case EmergeTriggerState:
		return []Edge{
			{Words: []string{WordDiscontinue}, Dst: StopTriggerState},
			{Words: administerConnectors, Dst: EndState},
		}, ErrorState
	case StopTriggerState:
		return []Edge{
			{Words: []string{WordAdminister, WordGive}, Dst: EndState},
		}, ErrorState
	case HaveTriggerState:
		return []Edge{
			{Words: []string{WordApply, WordGive}, Dst: EndState},
		}, ErrorState
	case EndState, ErrorState:
		return nil, s
	}
	return nil, ErrorState
}

// Rules converts Edges into engine rules.
func (s TriggerState) Rules() ([]fsm.Rule, TriggerState) {
	edges, fallback := s.Edges()
	rules := make([]fsm.Rule, len(edges))
	for i, edge := range edges {
		rules[i] = fsm.Rule{Dst: edge.Dst.String(), Cond: fsm.NewWordsCondition(edge.Words...)}
	}
	return rules, fallback
}

// NewTriggerAutomaton builds the automaton recognising trigger -> receiver
// verb chains such as 诊断 ... 给予 or 出现 ... 停用 ... 予以.
func NewTriggerAutomaton() (*fsm.Automaton, error) {
	builder := fsm.NewBuilder()
	for _, state := range AllTriggerStates {
		if state.Terminal() {
			builder.AddTerminal(state.String())
			continue
		}
		rules, fallback := state.Rules()
		builder.AddState(state.String(), fsm.NewRuleTransition(rules, fallback.String()))
	}
	return builder.SetStart(StartState.String()).Build()
}
