package pipeline

import (
	"github.com/peter-xbs/FSM/conll"
	"github.com/peter-xbs/FSM/logger"
	"github.com/peter-xbs/FSM/types"
)

// NewSentenceReader parses CoNLL documents into sentences. A document that
// fails to parse contributes no sentences; its error is reported on the
// second channel, which is closed once in is drained.
func NewSentenceReader() func(in <-chan string) (<-chan types.Sentence, <-chan error) {
	relexLogger := logger.NewLogger("Sentence reader")

	return func(in <-chan string) (<-chan types.Sentence, <-chan error) {
		out := make(chan types.Sentence)
		errs := make(chan error, 1)

		go func() {
			defer close(errs)
			defer close(out)

			for text := range in {
				sentences, err := conll.ParseDocument(text)
				if err != nil {
					relexLogger.Err(err).Msg("Could not parse CoNLL document")
					select {
					case errs <- err:
					default:
					}
					continue
				}
				for _, sent := range sentences {
					out <- sent
				}
			}
		}()
		return out, errs
	}
}
