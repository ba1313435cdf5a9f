package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Dark0tter/D-ai-Trader/internal/adapters"
	"github.com/Dark0tter/D-ai-Trader/internal/feedback"
	"github.com/Dark0tter/D-ai-Trader/internal/fusion"
	"github.com/Dark0tter/D-ai-Trader/internal/risk"
	"github.com/Dark0tter/D-ai-Trader/internal/signal"
)

type Thresholds struct {
	// DowngradeBelow vetoes a baseline BUY when the net score falls
	// under it; UpgradeAbove promotes a baseline HOLD above it.
	DowngradeBelow        float64 `yaml:"downgrade_below"`
	UpgradeAbove          float64 `yaml:"upgrade_above"`
	BearishNewsConfidence float64 `yaml:"bearish_news_confidence"`
}

type Staleness struct {
	MaxAgeSeconds int `yaml:"max_age_seconds"`
}

type Gather struct {
	FetchTimeoutMs  int     `yaml:"fetch_timeout_ms"`
	RatePerSecond   float64 `yaml:"rate_per_second"`
	BreakerFailures int     `yaml:"breaker_failures"`
	BreakerResetSec int     `yaml:"breaker_reset_seconds"`
}

type SafeMode struct {
	NormalMultiplier   float64 `yaml:"normal_multiplier"`
	CautionMultiplier  float64 `yaml:"caution_multiplier"`
	ElevatedMultiplier float64 `yaml:"elevated_multiplier"`
	CriticalMultiplier float64 `yaml:"critical_multiplier"`
	MinDwellSeconds    int     `yaml:"min_dwell_seconds"`
}

type Root struct {
	LogLevel string `yaml:"log_level"`

	// Weights overrides the default core weight table; empty keeps
	// the defaults. RiskProfile, when set, wins over Weights.
	Weights     map[string]float64 `yaml:"weights"`
	RiskProfile string             `yaml:"risk_profile"`

	Thresholds Thresholds      `yaml:"thresholds"`
	Staleness  Staleness       `yaml:"staleness"`
	Gather     Gather          `yaml:"gather"`
	SafeMode   SafeMode        `yaml:"safe_mode"`
	Feedback   feedback.Config `yaml:"feedback"`
}

// Load reads the yaml config and fills zero-value defaults.
func Load(path string) (Root, error) {
	var c Root
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, err
	}
	c.applyDefaults()
	return c, nil
}

// Default returns the built-in configuration.
func Default() Root {
	var c Root
	c.applyDefaults()
	return c
}

func (c *Root) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Thresholds.DowngradeBelow == 0 {
		c.Thresholds.DowngradeBelow = -15
	}
	if c.Thresholds.UpgradeAbove == 0 {
		c.Thresholds.UpgradeAbove = 25
	}
	if c.Thresholds.BearishNewsConfidence == 0 {
		c.Thresholds.BearishNewsConfidence = 0.70
	}
	if c.Staleness.MaxAgeSeconds == 0 {
		c.Staleness.MaxAgeSeconds = 900
	}
	if c.Gather.FetchTimeoutMs == 0 {
		c.Gather.FetchTimeoutMs = 5000
	}
	if c.Gather.BreakerFailures == 0 {
		c.Gather.BreakerFailures = 3
	}
	if c.Gather.BreakerResetSec == 0 {
		c.Gather.BreakerResetSec = 30
	}
}

// Validate rejects configurations no cycle may run under.
func (c Root) Validate() error {
	if _, err := c.BuildWeights(); err != nil {
		return err
	}
	if c.Thresholds.DowngradeBelow >= 0 {
		return fmt.Errorf("config: downgrade_below must be negative, got %.2f", c.Thresholds.DowngradeBelow)
	}
	if c.Thresholds.UpgradeAbove <= 0 {
		return fmt.Errorf("config: upgrade_above must be positive, got %.2f", c.Thresholds.UpgradeAbove)
	}
	if c.Thresholds.BearishNewsConfidence < 0 || c.Thresholds.BearishNewsConfidence > 1 {
		return fmt.Errorf("config: bearish_news_confidence %.2f outside [0,1]", c.Thresholds.BearishNewsConfidence)
	}
	return nil
}

// BuildWeights resolves the configured weight snapshot: a named
// profile, an explicit table, or the defaults.
func (c Root) BuildWeights() (*fusion.Weights, error) {
	if c.RiskProfile != "" {
		return fusion.ProfileWeights(fusion.Profile(c.RiskProfile))
	}
	if len(c.Weights) > 0 {
		values := make(map[signal.Source]float64, len(c.Weights))
		for name, w := range c.Weights {
			values[signal.Source(name)] = w
		}
		return fusion.NewWeights(values)
	}
	return fusion.DefaultWeights(), nil
}

// GovernorConfig maps the yaml block to the risk package.
func (c Root) GovernorConfig() risk.GovernorConfig {
	return risk.GovernorConfig{
		NormalMultiplier:   c.SafeMode.NormalMultiplier,
		CautionMultiplier:  c.SafeMode.CautionMultiplier,
		ElevatedMultiplier: c.SafeMode.ElevatedMultiplier,
		CriticalMultiplier: c.SafeMode.CriticalMultiplier,
		MinDwell:           time.Duration(c.SafeMode.MinDwellSeconds) * time.Second,
	}
}

// StaleAfter returns the staleness bound as a duration.
func (c Root) StaleAfter() time.Duration {
	return time.Duration(c.Staleness.MaxAgeSeconds) * time.Second
}

// GatherConfig maps the yaml block to the adapters package shape.
func (c Root) GatherConfig() adapters.GatherConfig {
	return adapters.GatherConfig{
		FetchTimeout:    time.Duration(c.Gather.FetchTimeoutMs) * time.Millisecond,
		RatePerSecond:   c.Gather.RatePerSecond,
		BreakerFailures: uint32(c.Gather.BreakerFailures),
		BreakerReset:    time.Duration(c.Gather.BreakerResetSec) * time.Second,
	}
}
