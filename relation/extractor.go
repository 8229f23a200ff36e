package relation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/peter-xbs/FSM/fsm"
	"github.com/peter-xbs/FSM/logger"
	relfsm "github.com/peter-xbs/FSM/relation/fsm"
	"github.com/peter-xbs/FSM/types"
	"github.com/rs/zerolog"
)

// TokenPair is a trigger token and one receiver token of the same matched
// action chain.
type TokenPair struct {
	Trigger  *types.Token
	Receiver *types.Token
}

type ExtractorParams struct {
	Labels   LabelDictionary
	Resolver TypeResolver
	ActTag   string
}

// Extractor turns dependency trees into relationships. It is immutable and
// may be shared between goroutines; sinks are not.
type Extractor struct {
	automaton   *fsm.Automaton
	labels      LabelDictionary
	resolver    TypeResolver
	actTag      string
	failState   string
	relexLogger zerolog.Logger
}

func NewExtractor(automaton *fsm.Automaton, params ExtractorParams) (*Extractor, error) {
	if automaton == nil {
		return nil, errors.New("relation extractor requires an automaton")
	}
	if params.Resolver == nil {
		return nil, errors.New("relation extractor requires a relation type resolver")
	}
	labels := params.Labels
	if labels == nil {
		labels = DefaultLabelDictionary()
	}
	actTag := params.ActTag
	if actTag == "" {
		actTag = types.DefaultActTag
	}
	return &Extractor{
		automaton:   automaton,
		labels:      labels,
		resolver:    params.Resolver,
		actTag:      actTag,
		failState:   relfsm.ErrorState.String(),
		relexLogger: logger.NewLogger("Relation extractor"),
	}, nil
}

// TokenPairs classifies every action run of the tree's root and returns the
// (trigger, receiver) pairs of the runs that form a known chain. Only
// automaton configuration problems are reported as errors.
func (e *Extractor) TokenPairs(tree *types.Tree) ([]TokenPair, error) {
	if tree == nil || tree.Root == nil {
		return nil, nil
	}

	var pairs []TokenPair
	for _, run := range ExtractActionRuns(tree.Root.RightChildren, e.actTag) {
		words := types.Words(run)
		index, state, err := e.automaton.Run(words)
		if err != nil {
			return nil, fmt.Errorf("failed to classify action run %v: %w", words, err)
		}
		if strings.EqualFold(state, e.failState) {
			e.relexLogger.Debug().Strs("words", words).Msg("Action run is not a known trigger chain")
			continue
		}

		consumed := run[:index]
		trigger := consumed[0]
		for _, receiver := range consumed[1:] {
			pairs = append(pairs, TokenPair{Trigger: trigger, Receiver: receiver})
		}
	}
	return pairs, nil
}

// BuildRelationships emits every relationship found in tree to sink and
// returns how many were emitted. Relationships are not deduplicated.
func (e *Extractor) BuildRelationships(tree *types.Tree, store types.EntityStore, sink Sink) (int, error) {
	pairs, err := e.TokenPairs(tree)
	if err != nil {
		return 0, err
	}

	emitted := 0
	for _, pair := range pairs {
		triggers := e.GovernedEntities(pair.Trigger, store)
		if len(triggers) == 0 {
			continue
		}
		receivers := e.GovernedEntities(pair.Receiver, store)
		if len(receivers) == 0 {
			continue
		}

		for _, trigger := range triggers {
			for _, receiver := range receivers {
				relationType := e.resolver.Resolve(trigger.Label, receiver.Label)
				if relationType == "" {
					continue
				}
				sink.Add(trigger, receiver, relationType)
				emitted++
			}
		}
	}
	return emitted, nil
}

// GovernedEntities collects the entities of the token's right children whose
// tag the token's word may govern, followed by their coordinated entities.
// Ids missing from the store are skipped.
func (e *Extractor) GovernedEntities(token *types.Token, store types.EntityStore) []types.Entity {
	var entities []types.Entity
	for _, child := range token.RightChildren {
		if !e.labels.Eligible(token.Word, child.Tag) {
			continue
		}
		if child.HasEntity() {
			entities = e.appendEntity(entities, child.EntityID, store)
		}
		for _, id := range child.CoordinationSiblings {
			entities = e.appendEntity(entities, id, store)
		}
	}
	return entities
}

func (e *Extractor) appendEntity(entities []types.Entity, id string, store types.EntityStore) []types.Entity {
	ent, ok := store.Get(id)
	if !ok {
		e.relexLogger.Debug().Str("entity_id", id).Msg("Governed entity is missing from the entity store")
		return entities
	}
	return append(entities, ent)
}

func (e *Extractor) ActTag() string {
	return e.actTag
}

func (e *Extractor) Labels() LabelDictionary {
	return e.labels
}
