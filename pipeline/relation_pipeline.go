package pipeline

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/peter-xbs/FSM/logger"
	"github.com/peter-xbs/FSM/relation"
	relfsm "github.com/peter-xbs/FSM/relation/fsm"
	"github.com/peter-xbs/FSM/types"
)

type RelationExtractionParams struct {
	Configurations []types.Configuration `json:"configurations"`
	Metrics        *Metrics              `json:"-"`
}

// NewExtractors builds one extractor per configuration over a single shared
// trigger automaton.
func NewExtractors(cfgs []types.Configuration) (map[string]*relation.Extractor, error) {
	automaton, err := relfsm.NewTriggerAutomaton()
	if err != nil {
		return nil, err
	}

	extractors := make(map[string]*relation.Extractor, len(cfgs))
	for _, cfg := range cfgs {
		extractor, err := relation.NewExtractor(automaton, relation.ExtractorParams{
			Labels:   relation.DefaultLabelDictionary().WithOverrides(cfg.Params.Relex.LabelOverrides),
			Resolver: relation.NewRelationTypeTable(cfg.Params.Relex.RelationTypes),
			ActTag:   cfg.ActTag(),
		})
		if err != nil {
			return nil, err
		}
		extractors[cfg.Name] = extractor
	}
	return extractors, nil
}

func RelationExtraction(params RelationExtractionParams) (Pipeline, error) {
	relexLogger := logger.NewLogger("Relation extraction pipeline")
	errLogger := relexLogger.With().Caller().Logger()

	if len(params.Configurations) == 0 {
		err := errors.New("relation extraction pipeline requires at least one configuration")
		errLogger.Err(err).Msg("Failed to create pipeline")
		return nil, err
	}
	relexLogger.Info().
		Interface("params", params).
		Msg("Starting relation extraction pipeline (see parameters in 'params' field)")

	extractors, err := NewExtractors(params.Configurations)
	if err != nil {
		errLogger.Err(err).
			Interface("configurations", params.Configurations).
			Msg("Failed to create relation extractors")
		return nil, err
	}

	reader := NewSentenceReader()
	splitter := NewSentenceChannelSplitter(len(params.Configurations))
	annotator := NewRelationAnnotator(params.Metrics)
	relationResult := NewRelationResult()

	return func(request Request) <-chan string {
		// buffered so the run finishes even when the caller stopped waiting
		responseChan := make(chan string, 1)
		pplnLog := relexLogger.With().Str("tid", request.Tid).Logger()
		pplnLog.Info().Msg("Started relation extraction pipeline")

		go func() {
			started := time.Now()
			var in = make(chan string)

			sentences, parseErrs := reader(in)
			split := splitter(sentences)

			resultChannel := make(chan Result)
			defer close(resultChannel)

			for i, cfg := range params.Configurations {
				annotations := annotator(split[i], extractors[cfg.Name], cfg.Name)
				connect(relationResult(annotations, cfg.Name, request), resultChannel)
			}

			in <- request.Text
			close(in)

			response := make(map[string]types.RelationResponse)
			for i := 0; i < len(params.Configurations); i++ {
				res := <-resultChannel
				pplnLog.Info().
					Str("config_name", res.ConfigName).
					Int("relations", len(res.Response.Relations)).
					Msg("Finished pipeline for configuration")
				response[res.ConfigName] = res.Response
			}

			// every configuration sees the same document, so parse errors are
			// reported in each response
			for err := range parseErrs {
				params.Metrics.observeFailedDocument()
				for name, res := range response {
					res.Errors = append(res.Errors, err.Error())
					response[name] = res
				}
			}

			buf, err := json.Marshal(response)
			if err != nil {
				pplnLog.Err(err).Caller().Msg("Failed to marshall response")
			}
			params.Metrics.observeDuration(time.Since(started))
			pplnLog.Info().Msg("Finished relation extraction pipeline")
			responseChan <- string(buf)
		}()

		return responseChan
	}, nil
}

func connect(from <-chan Result, to chan<- Result) {
	go func() {
		for v := range from {
			to <- v
		}
	}()
}
