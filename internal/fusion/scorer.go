package fusion

import (
	"time"

	"github.com/Dark0tter/D-ai-Trader/internal/signal"
)

// Result is the fused directional view of one symbol for one cycle.
// Scores are in points: one source at full confidence contributes its
// weight x 100.
type Result struct {
	Symbol       string    `json:"symbol"`
	CycleTS      time.Time `json:"cycle_ts"`
	BullishScore float64   `json:"bullish_score"`
	BearishScore float64   `json:"bearish_score"`
	NetScore     float64   `json:"net_score"`
	Confidence   float64   `json:"confidence"` // [0,100]
}

// Score fuses the present directional records under the given weight
// snapshot. It is a pure function: identical inputs produce
// bit-identical results. Sources iterate in the fixed core order so
// float accumulation is deterministic. Zero present signals is the
// neutral prior (net 0, confidence 50), not an error.
func Score(symbol string, cycleTS time.Time, set signal.Set, w *Weights) Result {
	res := Result{Symbol: symbol, CycleTS: cycleTS}
	for _, src := range signal.CoreSources() {
		rec, ok := set.Get(src)
		if !ok {
			continue
		}
		contribution := w.Get(src) * rec.Confidence * 100
		switch rec.Direction {
		case signal.Bullish:
			res.BullishScore += contribution
		case signal.Bearish:
			res.BearishScore += contribution
		}
	}
	res.NetScore = res.BullishScore - res.BearishScore
	res.Confidence = clampScore(50 + res.NetScore)
	return res
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
