package relation

import "github.com/peter-xbs/FSM/types"

// TypeResolver names the relation between a trigger entity label and a
// receiver entity label; "" means the pair is not related.
type TypeResolver interface {
	Resolve(triggerLabel string, receiverLabel string) string
}

type LabelPair struct {
	Trigger  string
	Receiver string
}

type RelationTypeTable map[LabelPair]string

// NewRelationTypeTable builds a table from configuration rules. Later rules
// override earlier ones for the same label pair.
func NewRelationTypeTable(rules []types.RelationTypeRule) RelationTypeTable {
	table := make(RelationTypeTable, len(rules))
	for _, rule := range rules {
		table[LabelPair{Trigger: rule.TriggerLabel, Receiver: rule.ReceiverLabel}] = rule.Type
	}
	return table
}

func (table RelationTypeTable) Resolve(triggerLabel string, receiverLabel string) string {
	return table[LabelPair{Trigger: triggerLabel, Receiver: receiverLabel}]
}

type ResolverFunc func(triggerLabel string, receiverLabel string) string

func (f ResolverFunc) Resolve(triggerLabel string, receiverLabel string) string {
	return f(triggerLabel, receiverLabel)
}
