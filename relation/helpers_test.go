package relation

import (
	"testing"

	relfsm "github.com/peter-xbs/FSM/relation/fsm"
	"github.com/peter-xbs/FSM/types"
	"github.com/stretchr/testify/require"
)

func act(word string, children ...*types.Token) *types.Token {
	return &types.Token{Word: word, Tag: "act", RightChildren: children}
}

func mention(tag string, entityID string, siblings ...string) *types.Token {
	return &types.Token{Word: entityID, Tag: tag, EntityID: entityID, CoordinationSiblings: siblings}
}

func word(tag string, w string) *types.Token {
	return &types.Token{Word: w, Tag: tag}
}

func treeOf(children ...*types.Token) *types.Tree {
	return &types.Tree{Root: &types.Token{ID: types.RootID, Word: "ROOT", RightChildren: children}}
}

func newTestExtractor(t *testing.T, resolver TypeResolver) *Extractor {
	automaton, err := relfsm.NewTriggerAutomaton()
	require.NoError(t, err)
	extractor, err := NewExtractor(automaton, ExtractorParams{Resolver: resolver})
	require.NoError(t, err)
	return extractor
}

var clinicalTypes = NewRelationTypeTable([]types.RelationTypeRule{
	{TriggerLabel: "dis", ReceiverLabel: "med", Type: "treated_by"},
	{TriggerLabel: "sym", ReceiverLabel: "med", Type: "relieved_by"},
	{TriggerLabel: "dis", ReceiverLabel: "tot", Type: "treated_by"},
	{TriggerLabel: "sym", ReceiverLabel: "tot", Type: "relieved_by"},
})

var clinicalEntities = types.Entities{
	"hypertension": {ID: "hypertension", Text: "Hypertension", Label: "dis"},
	"diabetes":     {ID: "diabetes", Text: "Diabetes", Label: "dis"},
	"rash":         {ID: "rash", Text: "Rash", Label: "sym"},
	"aspirin":      {ID: "aspirin", Text: "Aspirin", Label: "med"},
	"insulin":      {ID: "insulin", Text: "Insulin", Label: "med"},
	"penicillin":   {ID: "penicillin", Text: "Penicillin", Label: "med"},
	"dialysis":     {ID: "dialysis", Text: "Dialysis", Label: "tot"},
	"surgery":      {ID: "surgery", Text: "Surgery", Label: "sur"},
}
