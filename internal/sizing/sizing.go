// Package sizing converts per-source boosts and macro adjustments
// into one clamped position-size multiplier.
package sizing

import (
	"time"

	"github.com/Dark0tter/D-ai-Trader/internal/signal"
)

// Multiplier bounds. The final multiplier never leaves this range no
// matter what the sources report.
const (
	MinMultiplier = 0.4
	MaxMultiplier = 2.0
)

// Result explains how the final multiplier was assembled, for the
// audit trail and for display while a symbol is blocked.
type Result struct {
	Symbol            string                    `json:"symbol"`
	CycleTS           time.Time                 `json:"cycle_ts"`
	IndividualBoosts  map[signal.Source]float64 `json:"individual_boosts"`
	MacroAdjustments  map[signal.Source]float64 `json:"macro_adjustments"`
	AverageIndividual float64                   `json:"average_individual"`
	MacroProduct      float64                   `json:"macro_product"`
	FinalMultiplier   float64                   `json:"final_multiplier"` // [0.4, 2.0]
}

// Calculate sizes one symbol from its present signals.
//
// Individual boosts are averaged over present sources only; an absent
// source is excluded from the average, not defaulted to neutral.
// Macro adjustments multiply, and an absent macro source drops out of
// the product (equivalent to contributing 1.0). The two absence rules
// differ on purpose.
func Calculate(symbol string, cycleTS time.Time, set signal.Set) Result {
	res := Result{
		Symbol:           symbol,
		CycleTS:          cycleTS,
		IndividualBoosts: map[signal.Source]float64{},
		MacroAdjustments: map[signal.Source]float64{},
	}

	sum := 0.0
	for _, src := range signal.BoostSources() {
		rec, ok := set.Get(src)
		if !ok {
			continue
		}
		r, _ := signal.RangeFor(src)
		boost := r.Clamp(rec.Boost)
		res.IndividualBoosts[src] = boost
		sum += boost
	}
	if len(res.IndividualBoosts) == 0 {
		res.AverageIndividual = 1.0
	} else {
		res.AverageIndividual = sum / float64(len(res.IndividualBoosts))
	}

	res.MacroProduct = 1.0
	for _, src := range signal.AdjustmentSources() {
		rec, ok := set.Get(src)
		if !ok {
			continue
		}
		r, _ := signal.RangeFor(src)
		adj := r.Clamp(rec.Boost)
		res.MacroAdjustments[src] = adj
		res.MacroProduct *= adj
	}

	raw := res.AverageIndividual * res.MacroProduct
	res.FinalMultiplier = clampMultiplier(raw)
	return res
}

func clampMultiplier(v float64) float64 {
	if v < MinMultiplier {
		return MinMultiplier
	}
	if v > MaxMultiplier {
		return MaxMultiplier
	}
	return v
}
