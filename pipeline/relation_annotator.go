package pipeline

import (
	"github.com/peter-xbs/FSM/logger"
	"github.com/peter-xbs/FSM/relation"
	"github.com/peter-xbs/FSM/types"
)

type SentenceRelations struct {
	Index         int
	Relationships []types.Relationship
	Err           error
}

// NewRelationAnnotator runs the extractor of one configuration over every
// sentence it receives.
func NewRelationAnnotator(metrics *Metrics) func(in <-chan types.Sentence, extractor *relation.Extractor, cfgName string) <-chan SentenceRelations {
	relexLogger := logger.NewLogger("Relation annotator")

	return func(in <-chan types.Sentence, extractor *relation.Extractor, cfgName string) <-chan SentenceRelations {
		out := make(chan SentenceRelations)
		cfgLogger := relexLogger.With().Str("config_name", cfgName).Logger()

		go func() {
			defer close(out)
			for sent := range in {
				var collector relation.Collector
				emitted, err := extractor.BuildRelationships(sent.Tree, sent.Entities, &collector)
				if err != nil {
					cfgLogger.Err(err).Int("sentence", sent.Index).Msg("Relation extraction failed")
				} else {
					cfgLogger.Debug().Int("sentence", sent.Index).Int("relationships", emitted).Msg("Sentence annotated")
				}
				metrics.observeSentence(cfgName, collector.Relationships(), err)

				out <- SentenceRelations{
					Index:         sent.Index,
					Relationships: collector.Relationships(),
					Err:           err,
				}
			}
		}()
		return out
	}
}
