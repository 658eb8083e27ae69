package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xplore_insight_cache_lookups_total",
			Help: "Insight cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xplore_provider_requests_total",
			Help: "Upstream content provider calls by outcome",
		},
		[]string{"provider", "outcome"},
	)

	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "xplore_provider_duration_seconds",
			Help:    "Latency of upstream content provider calls",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"provider"},
	)

	Syntheses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xplore_insight_synthesis_total",
			Help: "Insight syntheses by outcome",
		},
		[]string{"outcome"},
	)

	SynthesesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "xplore_insight_synthesis_in_flight",
			Help: "Upstream fan-outs currently running",
		},
	)
)

// Label values
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"

	OutcomeSuccess   = "success"
	OutcomeEmpty     = "empty"
	OutcomeFailure   = "failure"
	OutcomeMalformed = "malformed"
	OutcomeCached    = "cached"
)
