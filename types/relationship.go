package types

import (
	"fmt"

	"github.com/peter-xbs/FSM/utils"
)

type Relationship struct {
	Trigger  Entity `json:"trigger" yaml:"trigger"`
	Receiver Entity `json:"receiver" yaml:"receiver"`
	Type     string `json:"type" yaml:"type"`
}

func (rel Relationship) GetHashCode() uint64 {
	key := fmt.Sprintf("%s|%s|%s", rel.Trigger.ID, rel.Receiver.ID, rel.Type)
	return utils.HashString(key)
}
