package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Turn execution metrics
var (
	// Turn outcome counters
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homehub",
			Subsystem: "assistant_api",
			Name:      "turns_total",
			Help:      "Total number of turns executed",
		},
		[]string{"channel", "tier", "outcome"},
	)

	// Turn duration histogram
	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "homehub",
			Subsystem: "assistant_api",
			Name:      "turn_duration_seconds",
			Help:      "Turn execution duration in seconds",
			Buckets:   []float64{1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"channel"},
	)

	// Tool rounds per turn histogram
	TurnToolRounds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "homehub",
			Subsystem: "assistant_api",
			Name:      "turn_tool_rounds",
			Help:      "Tool rounds used per turn",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
		[]string{"channel"},
	)

	// Round limit counter
	TurnRoundLimitTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "homehub",
			Subsystem: "assistant_api",
			Name:      "turn_round_limit_total",
			Help:      "Turns that exhausted the tool round bound",
		},
	)

	// Token counters
	TokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homehub",
			Subsystem: "assistant_api",
			Name:      "tokens_total",
			Help:      "Total tokens consumed",
		},
		[]string{"tier", "direction"},
	)

	// Cost counter
	CostCentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homehub",
			Subsystem: "assistant_api",
			Name:      "cost_cents_total",
			Help:      "Total model spend in cents",
		},
		[]string{"tier"},
	)
)

// RecordTurn records one completed turn.
func RecordTurn(channel, tier, outcome string, toolRounds int, durationSec float64) {
	TurnsTotal.WithLabelValues(channel, tier, outcome).Inc()
	TurnDuration.WithLabelValues(channel).Observe(durationSec)
	TurnToolRounds.WithLabelValues(channel).Observe(float64(toolRounds))
}

// RecordRoundLimit records a turn that hit the tool round bound.
func RecordRoundLimit() {
	TurnRoundLimitTotal.Inc()
}

// RecordUsage records token and cost totals for one turn.
func RecordUsage(tier string, inputTokens, outputTokens int, costCents float64) {
	TokensTotal.WithLabelValues(tier, "input").Add(float64(inputTokens))
	TokensTotal.WithLabelValues(tier, "output").Add(float64(outputTokens))
	CostCentsTotal.WithLabelValues(tier).Add(costCents)
}
