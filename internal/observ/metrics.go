package observ

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DecisionsTotal counts resolved decisions by final action.
	DecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fusion_decisions_total",
		Help: "Decisions emitted per cycle, labeled by final action.",
	}, []string{"action"})

	// BlockedTotal counts hard-gate blocks by reason.
	BlockedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fusion_blocked_total",
		Help: "Symbols hard-blocked to HOLD, labeled by blocker reason.",
	}, []string{"reason"})

	// OverridesTotal counts intelligence overrides of the baseline
	// policy action.
	OverridesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fusion_overrides_total",
		Help: "Baseline actions overridden by the fused score, labeled by kind.",
	}, []string{"kind"})

	// SourceErrorsTotal counts per-source fetch/normalize failures
	// that degraded to absence.
	SourceErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fusion_source_errors_total",
		Help: "Source signals dropped as absent, labeled by source and cause.",
	}, []string{"source", "cause"})

	// DangerScore is the current portfolio-wide danger score.
	DangerScore = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "safemode_danger_score",
		Help: "Composite portfolio danger score, 0-100.",
	})

	// CapitalMultiplier is the current capital-preservation scalar.
	CapitalMultiplier = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "safemode_capital_multiplier",
		Help: "Portfolio-wide capital multiplier in (0,1].",
	})

	// WeightVersion is the version of the live weight snapshot.
	WeightVersion = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fusion_weight_snapshot_version",
		Help: "Version of the currently published source weight table.",
	})

	// EvaluationSeconds times full cycle evaluations.
	EvaluationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fusion_evaluation_seconds",
		Help:    "Wall time of one symbol's cycle evaluation.",
		Buckets: prometheus.DefBuckets,
	})
)

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
