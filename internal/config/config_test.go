package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Dark0tter/D-ai-Trader/internal/fusion"
	"github.com/Dark0tter/D-ai-Trader/internal/signal"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	c := Default()
	if c.LogLevel != "info" {
		t.Errorf("log level: want info, got %q", c.LogLevel)
	}
	if c.Thresholds.DowngradeBelow != -15 || c.Thresholds.UpgradeAbove != 25 {
		t.Errorf("thresholds: got %+v", c.Thresholds)
	}
	if c.Thresholds.BearishNewsConfidence != 0.70 {
		t.Errorf("bearish news confidence: got %v", c.Thresholds.BearishNewsConfidence)
	}
	if c.StaleAfter() != 15*time.Minute {
		t.Errorf("staleness: got %v", c.StaleAfter())
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
thresholds:
  downgrade_below: -30
gather:
  fetch_timeout_ms: 1500
`)
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.LogLevel != "debug" {
		t.Errorf("log level: got %q", c.LogLevel)
	}
	if c.Thresholds.DowngradeBelow != -30 {
		t.Errorf("downgrade_below: got %v", c.Thresholds.DowngradeBelow)
	}
	if c.Thresholds.UpgradeAbove != 25 {
		t.Errorf("upgrade_above default not filled: got %v", c.Thresholds.UpgradeAbove)
	}
	gc := c.GatherConfig()
	if gc.FetchTimeout != 1500*time.Millisecond {
		t.Errorf("fetch timeout: got %v", gc.FetchTimeout)
	}
	if gc.BreakerFailures != 3 || gc.BreakerReset != 30*time.Second {
		t.Errorf("breaker defaults not filled: %+v", gc)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	cases := map[string]func(*Root){
		"positive downgrade": func(c *Root) { c.Thresholds.DowngradeBelow = 10 },
		"negative upgrade":   func(c *Root) { c.Thresholds.UpgradeAbove = -5 },
		"confidence above 1": func(c *Root) { c.Thresholds.BearishNewsConfidence = 1.5 },
	}
	for name, mutate := range cases {
		c := Default()
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestBuildWeightsPrecedence(t *testing.T) {
	c := Default()
	w, err := c.BuildWeights()
	if err != nil {
		t.Fatal(err)
	}
	if w.Get(signal.SourceNews) != 0.20 {
		t.Errorf("defaults: news weight %v", w.Get(signal.SourceNews))
	}

	c.Weights = fusionMapToNames(map[signal.Source]float64{
		signal.SourceNews:          0.25,
		signal.SourceOptions:       0.18,
		signal.SourceInsiders:      0.17,
		signal.SourceOvernight:     0.15,
		signal.SourceSocial:        0.07,
		signal.SourceShortInterest: 0.10,
		signal.SourceTrends:        0.08,
	})
	w, err = c.BuildWeights()
	if err != nil {
		t.Fatal(err)
	}
	if w.Get(signal.SourceNews) != 0.25 {
		t.Errorf("explicit table: news weight %v", w.Get(signal.SourceNews))
	}

	// A named profile wins over the explicit table.
	c.RiskProfile = string(fusion.ProfileAggressive)
	w, err = c.BuildWeights()
	if err != nil {
		t.Fatal(err)
	}
	if w.Get(signal.SourceNews) == 0.25 {
		t.Error("profile should win over explicit weights")
	}
}

func TestBuildWeightsRejectsBadInput(t *testing.T) {
	c := Default()
	c.Weights = map[string]float64{"news": 1.0}
	if _, err := c.BuildWeights(); err == nil {
		t.Error("partial table should be rejected")
	}

	c = Default()
	c.RiskProfile = "reckless"
	if _, err := c.BuildWeights(); err == nil {
		t.Error("unknown profile should be rejected")
	}
}

func TestGovernorConfigMapping(t *testing.T) {
	c := Default()
	c.SafeMode = SafeMode{CautionMultiplier: 0.6, MinDwellSeconds: 120}
	gc := c.GovernorConfig()
	if gc.CautionMultiplier != 0.6 {
		t.Errorf("caution multiplier: got %v", gc.CautionMultiplier)
	}
	if gc.MinDwell != 2*time.Minute {
		t.Errorf("min dwell: got %v", gc.MinDwell)
	}
}

func fusionMapToNames(values map[signal.Source]float64) map[string]float64 {
	out := make(map[string]float64, len(values))
	for src, w := range values {
		out[string(src)] = w
	}
	return out
}
