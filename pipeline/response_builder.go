package pipeline

import (
	"sort"

	"github.com/peter-xbs/FSM/types"
)

type Result struct {
	ConfigName string
	Response   types.RelationResponse
}

// NewRelationResult gathers the relations of every sentence into one
// response per configuration. Sentences are ordered by index regardless of
// the order they were annotated in.
func NewRelationResult() func(in <-chan SentenceRelations, cfgName string, request Request) <-chan Result {
	return func(in <-chan SentenceRelations, cfgName string, request Request) <-chan Result {
		out := make(chan Result)
		go func() {
			defer close(out)
			var all []SentenceRelations
			for sent := range in {
				all = append(all, sent)
			}
			sort.Slice(all, func(i, j int) bool {
				return all[i].Index < all[j].Index
			})

			response := types.RelationResponse{
				DocId:     request.Tid,
				Sentences: len(all),
				Relations: []types.RelationItem{},
			}
			for _, sent := range all {
				if sent.Err != nil {
					response.Errors = append(response.Errors, sent.Err.Error())
				}
				for _, rel := range sent.Relationships {
					response.Relations = append(response.Relations, types.RelationItem{
						Id:       types.HashID(rel),
						Sentence: sent.Index,
						Trigger:  rel.Trigger,
						Receiver: rel.Receiver,
						Type:     rel.Type,
					})
				}
			}

			out <- Result{ConfigName: cfgName, Response: response}
		}()
		return out
	}
}
