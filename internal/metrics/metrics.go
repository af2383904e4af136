// Package metrics holds the Prometheus collectors of the analysis pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	RecordsAnalyzed   prometheus.Counter
	RecordsRejected   *prometheus.CounterVec
	PatternsProduced  prometheus.Histogram
	AnalysisDuration  *prometheus.HistogramVec
	AdvisoryFallbacks prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RecordsAnalyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "query_insight_records_analyzed_total",
			Help: "Raw query records folded into patterns.",
		}),
		RecordsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "query_insight_records_rejected_total",
			Help: "Raw query records dropped by validation, by origin.",
		}, []string{"origin"}),
		PatternsProduced: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "query_insight_patterns_per_run",
			Help:    "Distinct fingerprints found per analysis run.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		AnalysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "query_insight_analysis_duration_seconds",
			Help:    "Wall time of an analysis run, by trigger.",
			Buckets: prometheus.DefBuckets,
		}, []string{"trigger"}),
		AdvisoryFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "query_insight_advisory_fallbacks_total",
			Help: "Advisory requests answered by the local rules after the advisor failed.",
		}),
	}

	reg.MustRegister(
		m.RecordsAnalyzed,
		m.RecordsRejected,
		m.PatternsProduced,
		m.AnalysisDuration,
		m.AdvisoryFallbacks,
	)
	return m
}
