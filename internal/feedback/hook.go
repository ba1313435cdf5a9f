// Package feedback closes the learning loop: realized trade outcomes
// flow back to the upstream policy and into an adaptive re-weighting
// of the fusion sources. Delivery is best-effort by design; learning
// must never block or fail live decisioning.
package feedback

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Dark0tter/D-ai-Trader/internal/fusion"
	"github.com/Dark0tter/D-ai-Trader/internal/observ"
	"github.com/Dark0tter/D-ai-Trader/internal/signal"
)

// Outcome is one closed trade.
type Outcome struct {
	Symbol   string    `json:"symbol"`
	Action   string    `json:"action"` // BUY | SELL | HOLD
	Reward   float64   `json:"reward"` // realized, positive = profit
	ClosedAt time.Time `json:"closed_at"`
}

// Config tunes the re-weighting pass. Zero values select defaults.
type Config struct {
	Enabled      bool    `yaml:"enabled"`
	LearningRate float64 `yaml:"learning_rate"` // max relative nudge per pass
	AdjustEvery  int     `yaml:"adjust_every"`  // outcomes between passes
	MinWeight    float64 `yaml:"min_weight"`    // floor before renormalizing
}

func (c *Config) applyDefaults() {
	if c.LearningRate == 0 {
		c.LearningRate = 0.05
	}
	if c.AdjustEvery == 0 {
		c.AdjustEvery = 20
	}
	if c.MinWeight == 0 {
		c.MinWeight = 0.01
	}
}

type sourceStats struct {
	agreements    int
	disagreements int
	rewardBalance float64
}

// Hook accumulates per-source agreement against realized outcomes and
// periodically publishes a nudged weight snapshot. It is the single
// writer of the weight table.
type Hook struct {
	cfg   Config
	table *fusion.Table
	log   zerolog.Logger

	mu          sync.Mutex
	observed    map[string]map[signal.Source]signal.Direction
	stats       map[signal.Source]*sourceStats
	sinceAdjust int
}

// NewHook builds the hook around the shared weight table.
func NewHook(cfg Config, table *fusion.Table) *Hook {
	cfg.applyDefaults()
	return &Hook{
		cfg:      cfg,
		table:    table,
		log:      observ.Component("feedback"),
		observed: map[string]map[signal.Source]signal.Direction{},
		stats:    map[signal.Source]*sourceStats{},
	}
}

// ObserveSignals remembers which way each source leaned on a symbol,
// so a later outcome can be attributed.
func (h *Hook) ObserveSignals(symbol string, set signal.Set) {
	dirs := map[signal.Source]signal.Direction{}
	for _, src := range signal.CoreSources() {
		if rec, ok := set.Get(src); ok {
			dirs[src] = rec.Direction
		}
	}
	h.mu.Lock()
	h.observed[symbol] = dirs
	h.mu.Unlock()
}

// Record scores the outcome against each source's last observed
// direction and, every AdjustEvery outcomes, nudges the weight table
// toward the sources that kept agreeing with profitable trades.
func (h *Hook) Record(out Outcome) {
	if !h.cfg.Enabled || out.Reward == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	dirs, ok := h.observed[out.Symbol]
	if !ok {
		return
	}
	for src, dir := range dirs {
		aligned := dir == signal.Bullish && out.Action == "BUY" ||
			dir == signal.Bearish && out.Action == "SELL"
		opposed := dir == signal.Bearish && out.Action == "BUY" ||
			dir == signal.Bullish && out.Action == "SELL"
		if !aligned && !opposed {
			continue
		}

		st := h.stats[src]
		if st == nil {
			st = &sourceStats{}
			h.stats[src] = st
		}
		// A source was right when it backed a winner or warned
		// against a loser.
		if aligned == (out.Reward > 0) {
			st.agreements++
			st.rewardBalance += abs(out.Reward)
		} else {
			st.disagreements++
			st.rewardBalance -= abs(out.Reward)
		}
	}

	h.sinceAdjust++
	if h.sinceAdjust >= h.cfg.AdjustEvery {
		h.adjustLocked()
		h.sinceAdjust = 0
	}
}

// adjustLocked publishes a renormalized snapshot with each source
// nudged by its hit rate. Callers hold h.mu.
func (h *Hook) adjustLocked() {
	values := h.table.Snapshot().Map()

	for src, st := range h.stats {
		total := st.agreements + st.disagreements
		if total == 0 {
			continue
		}
		hitRate := float64(st.agreements) / float64(total)
		// hitRate 0.5 is noise; the nudge scales linearly to
		// +/-LearningRate at perfect agreement/disagreement.
		nudge := h.cfg.LearningRate * (hitRate - 0.5) * 2
		values[src] *= 1 + nudge
		if values[src] < h.cfg.MinWeight {
			values[src] = h.cfg.MinWeight
		}
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	for src := range values {
		values[src] /= sum
	}

	w, err := fusion.NewWeights(values)
	if err != nil {
		h.log.Warn().Err(err).Msg("weight adjustment produced invalid table, keeping current")
		return
	}
	h.table.Publish(w)
	observ.WeightVersion.Set(float64(w.Version()))
	h.log.Info().Int64("version", w.Version()).Msg("source weights adjusted from outcomes")

	h.stats = map[signal.Source]*sourceStats{}
}

// Stats returns a copy of the agreement ledger for audit output.
func (h *Hook) Stats() map[signal.Source]struct{ Agreements, Disagreements int } {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := map[signal.Source]struct{ Agreements, Disagreements int }{}
	for src, st := range h.stats {
		out[src] = struct{ Agreements, Disagreements int }{st.agreements, st.disagreements}
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
