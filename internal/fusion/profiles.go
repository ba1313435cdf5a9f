package fusion

import (
	"fmt"

	"github.com/Dark0tter/D-ai-Trader/internal/signal"
)

// Profile names a preset allocation of the core weight table across
// risk groups. Profiles are a configuration layer: applying one just
// publishes a different snapshot of the same table.
type Profile string

const (
	ProfileConservative Profile = "conservative"
	ProfileModerate     Profile = "moderate"
	ProfileAggressive   Profile = "aggressive"
)

// Source risk groups. Speculative crowd signals are high risk,
// flow-derived signals medium, filing- and reporting-backed signals
// low.
var (
	highRiskSources   = []signal.Source{signal.SourceSocial, signal.SourceShortInterest, signal.SourceTrends}
	mediumRiskSources = []signal.Source{signal.SourceOptions, signal.SourceOvernight}
	lowRiskSources    = []signal.Source{signal.SourceNews, signal.SourceInsiders}
)

// profileSplits maps a profile to its high/medium/low group shares.
var profileSplits = map[Profile][3]float64{
	ProfileConservative: {0.10, 0.20, 0.70},
	ProfileModerate:     {0.20, 0.30, 0.50},
	ProfileAggressive:   {0.40, 0.35, 0.25},
}

// ProfileWeights builds the weight snapshot for a preset. Within each
// risk group the split is distributed proportionally to the default
// allocation, so relative source trust is preserved while the group
// totals move.
func ProfileWeights(p Profile) (*Weights, error) {
	split, ok := profileSplits[p]
	if !ok {
		return nil, fmt.Errorf("unknown risk profile %q", p)
	}
	defaults := DefaultWeights()
	values := make(map[signal.Source]float64, len(signal.CoreSources()))
	groups := [][]signal.Source{highRiskSources, mediumRiskSources, lowRiskSources}
	for i, group := range groups {
		groupSum := 0.0
		for _, src := range group {
			groupSum += defaults.Get(src)
		}
		for _, src := range group {
			values[src] = split[i] * defaults.Get(src) / groupSum
		}
	}
	return NewWeights(values)
}
