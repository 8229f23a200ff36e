package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/peter-xbs/FSM/types"
)

// RelationStore persists the per-configuration responses of one chunk.
type RelationStore interface {
	SaveRelationships(ctx context.Context, docID string, responses map[string]types.RelationResponse) error
}

type storeTransactions interface {
	saveRelations(task *Task, result string) error
}

type storeWrapper struct {
	store RelationStore
}

func (wrapper *storeWrapper) saveRelations(task *Task, result string) error {
	responses := make(map[string]types.RelationResponse)
	if err := json.Unmarshal([]byte(result), &responses); err != nil {
		return fmt.Errorf("pipeline result is not a relation response: %w", err)
	}
	return wrapper.store.SaveRelationships(task.ctx, task.chunkTask.DocID, responses)
}
