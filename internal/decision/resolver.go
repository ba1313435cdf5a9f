package decision

import (
	"fmt"
	"time"

	"github.com/Dark0tter/D-ai-Trader/internal/fusion"
)

// Action is a directional trade instruction.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Override thresholds on the fused net score. The defaults may be
// tightened via ResolverConfig but the asymmetry is structural: the
// fusion layer can veto a BUY or upgrade a HOLD, never originate a
// SELL.
const (
	DefaultDowngradeBelow = -15.0
	DefaultUpgradeAbove   = 25.0
)

// Override reasons emitted for the audit trail.
const (
	ReasonDowngrade        = "intelligence override: downgrade"
	ReasonUpgrade          = "intelligence override: upgrade"
	ReasonInsufficientData = "insufficient data"
)

// Decision is the per-symbol outcome of one cycle.
type Decision struct {
	Symbol         string    `json:"symbol"`
	CycleTS        time.Time `json:"cycle_ts"`
	Action         Action    `json:"action"`
	Blocked        bool      `json:"blocked"`
	BlockedReason  string    `json:"blocked_reason,omitempty"`
	OverrideReason string    `json:"override_reason,omitempty"`
	Confidence     float64   `json:"confidence"` // [0,100]
}

// ResolverConfig tunes the override thresholds. Zero values select
// the defaults.
type ResolverConfig struct {
	DowngradeBelow float64
	UpgradeAbove   float64
}

// InvariantError reports a resolution that attempted something the
// design forbids. It fails only the affected symbol's cycle and is
// surfaced to operators, never rendered to users.
type InvariantError struct {
	Symbol string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("decision invariant violated for %s: %s", e.Symbol, e.Detail)
}

// Resolve merges the baseline policy's proposed action with the fused
// score. Rules apply in order: a hard block is terminal; then a
// strongly bearish fusion vetoes a baseline BUY; then a strongly
// bullish fusion upgrades a baseline HOLD; otherwise the baseline
// stands.
func Resolve(baseline Action, fused fusion.Result, blk fusion.Block, cfg ResolverConfig) (Decision, error) {
	down := cfg.DowngradeBelow
	if down == 0 {
		down = DefaultDowngradeBelow
	}
	up := cfg.UpgradeAbove
	if up == 0 {
		up = DefaultUpgradeAbove
	}

	dec := Decision{
		Symbol:     fused.Symbol,
		CycleTS:    fused.CycleTS,
		Confidence: fused.Confidence,
	}

	if blk.Blocked {
		dec.Action = ActionHold
		dec.Blocked = true
		dec.BlockedReason = blk.Reason
		return dec, nil
	}

	switch baseline {
	case ActionBuy, ActionSell, ActionHold:
	default:
		// An unusable baseline degrades to HOLD rather than failing
		// the cycle.
		dec.Action = ActionHold
		dec.OverrideReason = ReasonInsufficientData
		return dec, nil
	}

	switch {
	case baseline == ActionBuy && fused.NetScore < down:
		dec.Action = ActionHold
		dec.OverrideReason = ReasonDowngrade
	case baseline == ActionHold && fused.NetScore > up:
		dec.Action = ActionBuy
		dec.OverrideReason = ReasonUpgrade
	default:
		dec.Action = baseline
	}

	if dec.OverrideReason != "" && dec.Action == ActionSell {
		return Decision{}, &InvariantError{
			Symbol: fused.Symbol,
			Detail: fmt.Sprintf("override path produced SELL from baseline %s", baseline),
		}
	}
	return dec, nil
}
