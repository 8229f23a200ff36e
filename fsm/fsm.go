package fsm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoStartState     = errors.New("fsm: start state must be set before run")
	ErrNoTerminalStates = errors.New("fsm: at least one terminal state is required")
)

// UnknownStateError is returned when a transition leads to a state that has
// neither a transition function nor a terminal registration.
type UnknownStateError struct {
	State string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("fsm: there is no transitions from '%s' state", e.State)
}

// TransitionFunc consumes words[index] and returns the next state together
// with the next index, which is always index+1.
type TransitionFunc func(words []string, index int) (string, int)

type Automaton struct {
	transitions map[string]TransitionFunc
	terminals   map[string]bool
	start       string
	startName   string
}

type Builder struct {
	transitions map[string]TransitionFunc
	terminals   map[string]bool
	start       string
	startName   string
}

func NewBuilder() *Builder {
	return &Builder{
		transitions: make(map[string]TransitionFunc),
		terminals:   make(map[string]bool),
	}
}

func (b *Builder) AddState(name string, transition TransitionFunc) *Builder {
	b.transitions[canonical(name)] = transition
	return b
}

func (b *Builder) AddTerminal(name string) *Builder {
	b.terminals[canonical(name)] = true
	return b
}

func (b *Builder) SetStart(name string) *Builder {
	b.start = canonical(name)
	b.startName = name
	return b
}

// Build validates the configuration once and freezes it.
func (b *Builder) Build() (*Automaton, error) {
	if b.start == "" {
		return nil, ErrNoStartState
	}
	if _, ok := b.transitions[b.start]; !ok {
		return nil, fmt.Errorf("%w: '%s' has no transition function", ErrNoStartState, b.startName)
	}
	if len(b.terminals) == 0 {
		return nil, ErrNoTerminalStates
	}

	transitions := make(map[string]TransitionFunc, len(b.transitions))
	for name, fn := range b.transitions {
		transitions[name] = fn
	}
	terminals := make(map[string]bool, len(b.terminals))
	for name := range b.terminals {
		terminals[name] = true
	}

	return &Automaton{
		transitions: transitions,
		terminals:   terminals,
		start:       b.start,
		startName:   b.startName,
	}, nil
}

// Run feeds words through the automaton and returns the index reached and
// the state name reported by the last transition. Reaching a terminal state,
// including a failure terminal, is not an error.
func (a *Automaton) Run(words []string) (int, string, error) {
	if a == nil || a.start == "" {
		return 0, "", ErrNoStartState
	}
	if len(a.terminals) == 0 {
		return 0, "", ErrNoTerminalStates
	}

	if len(words) == 0 {
		return 0, a.startName, nil
	}

	transition := a.transitions[a.start]
	index := 0
	length := len(words)
	for {
		var state string
		state, index = transition(words, index)
		if index >= length {
			return index, state, nil
		}

		key := canonical(state)
		if a.terminals[key] {
			return index, state, nil
		}

		next, ok := a.transitions[key]
		if !ok {
			return index, state, &UnknownStateError{State: state}
		}
		transition = next
	}
}

func (a *Automaton) IsTerminal(state string) bool {
	return a.terminals[canonical(state)]
}

func (a *Automaton) Start() string {
	return a.startName
}

func canonical(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
