package adapters

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Dark0tter/D-ai-Trader/internal/calendar"
	"github.com/Dark0tter/D-ai-Trader/internal/risk"
	"github.com/Dark0tter/D-ai-Trader/internal/signal"
)

// Fixtures is a JSON file holding everything a demo run needs:
// per-symbol raw signals, the economic calendar, the baseline
// policy's scripted actions, and a risk-indicator snapshot.
type Fixtures struct {
	Signals    map[string][]signal.Raw `json:"signals"`
	Events     []calendar.Event        `json:"events"`
	Baseline   map[string]string       `json:"baseline"`
	Indicators risk.Indicators         `json:"indicators"`
}

// LoadFixtures reads and decodes a fixtures file.
func LoadFixtures(path string) (*Fixtures, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: %w", err)
	}
	var f Fixtures
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("fixtures %s: %w", path, err)
	}
	return &f, nil
}

// SourceAdapters builds one static adapter per source that appears
// anywhere in the fixtures.
func (f *Fixtures) SourceAdapters() []SourceAdapter {
	bySource := map[signal.Source]map[string]signal.Raw{}
	for sym, raws := range f.Signals {
		for _, raw := range raws {
			src := signal.Source(raw.Source)
			if bySource[src] == nil {
				bySource[src] = map[string]signal.Raw{}
			}
			bySource[src][sym] = raw
		}
	}
	out := make([]SourceAdapter, 0, len(bySource))
	for src, bySym := range bySource {
		out = append(out, NewStaticSource(src, bySym))
	}
	return out
}

// EventsOn implements the engine's EventSource.
func (f *Fixtures) EventsOn(day time.Time) ([]calendar.Event, error) {
	return calendar.EventsOn(f.Events, day), nil
}

// Policy returns the scripted baseline policy from the fixtures.
func (f *Fixtures) Policy() *ScriptedPolicy {
	return &ScriptedPolicy{Default: "HOLD", BySymbol: f.Baseline}
}
