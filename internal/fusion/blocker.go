package fusion

import (
	"github.com/Dark0tter/D-ai-Trader/internal/calendar"
	"github.com/Dark0tter/D-ai-Trader/internal/signal"
)

// Blocker reasons, emitted verbatim into Decision.blocked_reason.
const (
	ReasonHighImpactEvent = "scheduled high-impact event"
	ReasonBearishNews     = "strong bearish news"
)

// bearishNewsConfidence is the default confidence at or above which
// bearish news hard-blocks a symbol.
const bearishNewsConfidence = 0.70

// Block is the outcome of the hard gate. When Blocked, the resolver
// emits HOLD unconditionally regardless of the fused score.
type Block struct {
	Blocked bool   `json:"blocked"`
	Reason  string `json:"reason,omitempty"`
}

// BlockerConfig tunes the hard gate. The zero value selects the
// default news confidence threshold.
type BlockerConfig struct {
	BearishNewsConfidence float64
}

// EvaluateBlockers applies the hard gate in fixed order: a scheduled
// high-impact event wins over bearish news when both hold. An absent
// news record never blocks.
func EvaluateBlockers(todaysEvents []calendar.Event, set signal.Set, cfg BlockerConfig) Block {
	for _, ev := range todaysEvents {
		if ev.Risk == calendar.RiskHigh {
			return Block{Blocked: true, Reason: ReasonHighImpactEvent}
		}
	}

	threshold := cfg.BearishNewsConfidence
	if threshold == 0 {
		threshold = bearishNewsConfidence
	}
	if news, ok := set.Get(signal.SourceNews); ok {
		if news.Direction == signal.Bearish && news.Confidence >= threshold {
			return Block{Blocked: true, Reason: ReasonBearishNews}
		}
	}

	return Block{}
}
