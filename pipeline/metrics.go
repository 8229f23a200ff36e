package pipeline

import (
	"time"

	"github.com/peter-xbs/FSM/types"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Sentences       *prometheus.CounterVec
	Relationships   *prometheus.CounterVec
	FailedSentences *prometheus.CounterVec
	FailedDocuments prometheus.Counter
	Duration        prometheus.Histogram
}

// NewMetrics creates the pipeline collectors and registers them on reg when
// it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Sentences: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relex_sentences_total",
				Help: "Sentences processed per configuration.",
			},
			[]string{"config"},
		),
		Relationships: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relex_relationships_total",
				Help: "Relationships emitted per configuration and relation type.",
			},
			[]string{"config", "type"},
		),
		FailedSentences: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relex_failed_sentences_total",
				Help: "Sentences whose extraction returned an error.",
			},
			[]string{"config"},
		),
		FailedDocuments: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "relex_failed_documents_total",
				Help: "Documents that could not be parsed.",
			},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "relex_request_duration_seconds",
				Help:    "Time spent on one pipeline request.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Sentences, m.Relationships, m.FailedSentences, m.FailedDocuments, m.Duration)
	}
	return m
}

func (m *Metrics) observeSentence(cfgName string, rels []types.Relationship, err error) {
	if m == nil {
		return
	}
	m.Sentences.WithLabelValues(cfgName).Inc()
	if err != nil {
		m.FailedSentences.WithLabelValues(cfgName).Inc()
	}
	for _, rel := range rels {
		m.Relationships.WithLabelValues(cfgName, rel.Type).Inc()
	}
}

func (m *Metrics) observeFailedDocument() {
	if m == nil {
		return
	}
	m.FailedDocuments.Inc()
}

func (m *Metrics) observeDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.Duration.Observe(d.Seconds())
}
