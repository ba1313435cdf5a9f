package fusion

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/Dark0tter/D-ai-Trader/internal/signal"
)

// weightSumTolerance bounds acceptable drift in the core weight sum.
const weightSumTolerance = 1e-6

// Weights is one immutable, versioned snapshot of the core source
// weight table. Adjustment sources (economic, macro, crypto) never
// appear here; they multiply position size instead of voting.
type Weights struct {
	values  map[signal.Source]float64
	version int64
}

// NewWeights validates and freezes a weight table. The weights must
// cover exactly the core directional sources, each in [0,1], and sum
// to 1 within tolerance.
func NewWeights(values map[signal.Source]float64) (*Weights, error) {
	core := signal.CoreSources()
	if len(values) != len(core) {
		return nil, fmt.Errorf("weight table: want %d core sources, got %d", len(core), len(values))
	}
	sum := 0.0
	for _, src := range core {
		w, ok := values[src]
		if !ok {
			return nil, fmt.Errorf("weight table: missing source %q", src)
		}
		if w < 0 || w > 1 {
			return nil, fmt.Errorf("weight table: %s weight %.4f outside [0,1]", src, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return nil, fmt.Errorf("weight table: weights sum to %.8f, want 1", sum)
	}
	copied := make(map[signal.Source]float64, len(values))
	for src, w := range values {
		copied[src] = w
	}
	return &Weights{values: copied}, nil
}

// DefaultWeights is the production allocation across the core
// directional sources.
func DefaultWeights() *Weights {
	w, err := NewWeights(map[signal.Source]float64{
		signal.SourceNews:          0.20,
		signal.SourceOptions:       0.18,
		signal.SourceInsiders:      0.17,
		signal.SourceOvernight:     0.15,
		signal.SourceSocial:        0.12,
		signal.SourceShortInterest: 0.10,
		signal.SourceTrends:        0.08,
	})
	if err != nil {
		panic(fmt.Sprintf("default weights invalid: %v", err))
	}
	return w
}

// Get returns the weight for a core source, zero for anything else.
func (w *Weights) Get(src signal.Source) float64 {
	return w.values[src]
}

// Map returns a copy of the table for audit output.
func (w *Weights) Map() map[signal.Source]float64 {
	out := make(map[signal.Source]float64, len(w.values))
	for src, v := range w.values {
		out[src] = v
	}
	return out
}

// Version identifies this snapshot; it is assigned at publish time.
func (w *Weights) Version() int64 { return w.version }

// Table holds the live weight snapshot under a single-writer,
// multi-reader discipline: cycles read whole snapshots, the feedback
// hook (or an operator) publishes replacements atomically between
// cycles.
type Table struct {
	current atomic.Pointer[Weights]
	nextVer atomic.Int64
}

// NewTable starts a table at the given snapshot.
func NewTable(w *Weights) *Table {
	t := &Table{}
	t.Publish(w)
	return t
}

// Snapshot returns the current complete snapshot. Readers never see a
// partially updated table.
func (t *Table) Snapshot() *Weights {
	return t.current.Load()
}

// Publish installs a new snapshot and stamps its version.
func (t *Table) Publish(w *Weights) {
	w.version = t.nextVer.Add(1)
	t.current.Store(w)
}
