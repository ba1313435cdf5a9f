package risk

import (
	"fmt"
	"sync"
	"time"

	"github.com/Dark0tter/D-ai-Trader/internal/calendar"
	"github.com/Dark0tter/D-ai-Trader/internal/observ"
)

// Status is the safe-mode tier derived from the danger score.
type Status string

const (
	StatusNormal   Status = "NORMAL"   // score < 40, full size
	StatusCaution  Status = "CAUTION"  // [40,60), halve positions
	StatusElevated Status = "ELEVATED" // [60,80), minimal trading
	StatusCritical Status = "CRITICAL" // >= 80, capital floor, no new entries
)

// DangerScore is the portfolio-wide risk snapshot, recomputed each
// cycle. Field names follow the dashboard wire contract.
type DangerScore struct {
	At                time.Time `json:"ts"`
	Score             float64   `json:"danger_score"` // [0,100]
	Status            Status    `json:"status"`
	CapitalMultiplier float64   `json:"risk_reduction"` // (0,1]
	TradingAllowed    bool      `json:"trading_allowed"`
	Reasons           []string  `json:"reasons,omitempty"`
}

// GovernorConfig tunes tier multipliers and the optional transition
// debounce. Zero values select defaults.
type GovernorConfig struct {
	// Capital multiplier per tier. Critical must stay above zero;
	// the TradingAllowed flag, not a zero multiplier, expresses the
	// no-new-trades stance.
	NormalMultiplier   float64 `yaml:"normal_multiplier"`
	CautionMultiplier  float64 `yaml:"caution_multiplier"`
	ElevatedMultiplier float64 `yaml:"elevated_multiplier"`
	CriticalMultiplier float64 `yaml:"critical_multiplier"`

	// MinDwell debounces de-escalation: once a tier is entered, the
	// governor will not step DOWN to a calmer tier until the dwell
	// has elapsed. Escalation is never delayed. Zero disables.
	MinDwell time.Duration `yaml:"min_dwell"`
}

func (c *GovernorConfig) applyDefaults() {
	if c.NormalMultiplier == 0 {
		c.NormalMultiplier = 1.0
	}
	if c.CautionMultiplier == 0 {
		c.CautionMultiplier = 0.5
	}
	if c.ElevatedMultiplier == 0 {
		c.ElevatedMultiplier = 0.25
	}
	if c.CriticalMultiplier == 0 {
		c.CriticalMultiplier = 0.1
	}
}

func (c GovernorConfig) validate() error {
	ms := []struct {
		name string
		v    float64
	}{
		{"normal", c.NormalMultiplier},
		{"caution", c.CautionMultiplier},
		{"elevated", c.ElevatedMultiplier},
		{"critical", c.CriticalMultiplier},
	}
	prev := 1.0 + 1e-9
	for _, m := range ms {
		if m.v <= 0 || m.v > 1 {
			return fmt.Errorf("safe mode: %s multiplier %.3f outside (0,1]", m.name, m.v)
		}
		if m.v > prev {
			return fmt.Errorf("safe mode: %s multiplier %.3f breaks monotonic decrease", m.name, m.v)
		}
		prev = m.v
	}
	return nil
}

// Governor recomputes the portfolio-wide danger score from externally
// supplied indicators and applies it as a final multiplicative brake
// on every symbol's position size. It is independent of any single
// symbol's fused signals.
//
// Single writer, many readers: only the indicator-ingestion step
// calls Update, between cycles; cycles read complete snapshots via
// Current.
type Governor struct {
	mu  sync.RWMutex
	cfg GovernorConfig

	current       DangerScore
	statusEntered time.Time
	now           func() time.Time
}

// NewGovernor starts the governor at NORMAL.
func NewGovernor(cfg GovernorConfig) (*Governor, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	g := &Governor{cfg: cfg, now: time.Now}
	g.current = DangerScore{
		At:                g.now(),
		Status:            StatusNormal,
		CapitalMultiplier: cfg.NormalMultiplier,
		TradingAllowed:    true,
	}
	g.statusEntered = g.current.At
	return g, nil
}

// Current returns the latest complete snapshot.
func (g *Governor) Current() DangerScore {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current
}

// Update rescores the environment and publishes a new snapshot.
func (g *Governor) Update(ind Indicators) DangerScore {
	score, reasons := composeScore(ind)
	status := statusFor(score)

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	prev := g.current.Status
	if g.cfg.MinDwell > 0 && rank(status) < rank(prev) && now.Sub(g.statusEntered) < g.cfg.MinDwell {
		// Hold the stricter tier until the dwell expires so a score
		// oscillating on a boundary cannot flap status every cycle.
		status = prev
	}
	if status != prev {
		g.statusEntered = now
		logger := observ.Component("safemode")
		logger.Warn().
			Str("from", string(prev)).
			Str("to", string(status)).
			Float64("danger_score", score).
			Strs("reasons", reasons).
			Msg("safe mode status changed")
	}

	snap := DangerScore{
		At:                now,
		Score:             score,
		Status:            status,
		CapitalMultiplier: g.multiplierFor(status),
		TradingAllowed:    status != StatusCritical,
		Reasons:           reasons,
	}
	g.current = snap

	observ.DangerScore.Set(score)
	observ.CapitalMultiplier.Set(snap.CapitalMultiplier)
	return snap
}

// ShouldCloseAll advises emergency liquidation: at least two
// independent crash signals firing at once.
func (g *Governor) ShouldCloseAll(ind Indicators) (bool, string) {
	var reasons []string
	if ind.BTCChange24h != nil && *ind.BTCChange24h < -15 {
		reasons = append(reasons, fmt.Sprintf("crypto market crash (BTC %.1f%%)", *ind.BTCChange24h))
	}
	if ind.VIX != nil && *ind.VIX > 40 {
		reasons = append(reasons, fmt.Sprintf("extreme fear (VIX %.1f)", *ind.VIX))
	}
	if ind.DailyPnLPct != nil && *ind.DailyPnLPct < -5 {
		reasons = append(reasons, fmt.Sprintf("emergency stop loss (%.1f%% daily loss)", *ind.DailyPnLPct))
	}
	if len(reasons) >= 2 {
		return true, fmt.Sprintf("emergency: %s, %s", reasons[0], reasons[1])
	}
	return false, ""
}

func (g *Governor) multiplierFor(status Status) float64 {
	switch status {
	case StatusCaution:
		return g.cfg.CautionMultiplier
	case StatusElevated:
		return g.cfg.ElevatedMultiplier
	case StatusCritical:
		return g.cfg.CriticalMultiplier
	default:
		return g.cfg.NormalMultiplier
	}
}

// statusFor maps score to tier with exact boundaries: 40.0 is already
// CAUTION, 60.0 ELEVATED, 80.0 CRITICAL.
func statusFor(score float64) Status {
	switch {
	case score >= 80:
		return StatusCritical
	case score >= 60:
		return StatusElevated
	case score >= 40:
		return StatusCaution
	default:
		return StatusNormal
	}
}

func rank(s Status) int {
	switch s {
	case StatusCaution:
		return 1
	case StatusElevated:
		return 2
	case StatusCritical:
		return 3
	default:
		return 0
	}
}

// composeScore sums the indicator contributions into [0,100].
func composeScore(ind Indicators) (float64, []string) {
	score := 0.0
	var reasons []string
	add := func(pts float64, reason string) {
		score += pts
		reasons = append(reasons, reason)
	}

	if ind.MacroRegime == "BEARISH" && ind.MacroConfidence > 75 {
		add(30, fmt.Sprintf("bearish macro regime (%.0f%% conf)", ind.MacroConfidence))
	}
	if ind.TreasurySpread != nil && *ind.TreasurySpread < 0 {
		add(20, "inverted yield curve")
	}
	if ind.VIX != nil {
		switch {
		case *ind.VIX > 30:
			add(25, fmt.Sprintf("high volatility (VIX %.1f)", *ind.VIX))
		case *ind.VIX > 25:
			add(15, fmt.Sprintf("elevated volatility (VIX %.1f)", *ind.VIX))
		}
	}
	if ind.BTCChange24h != nil {
		switch {
		case *ind.BTCChange24h < -10:
			add(25, fmt.Sprintf("crypto crash (BTC %.1f%%)", *ind.BTCChange24h))
		case *ind.BTCChange24h < -5:
			add(10, fmt.Sprintf("crypto selling (BTC %.1f%%)", *ind.BTCChange24h))
		}
	}
	switch ind.EventRisk {
	case calendar.DayRiskExtreme:
		add(30, "extreme scheduled-event risk")
	case calendar.DayRiskHigh:
		add(15, "high scheduled-event risk")
	}
	if ind.DailyPnLPct != nil {
		switch {
		case *ind.DailyPnLPct < -3:
			add(50, fmt.Sprintf("daily loss limit hit (%.1f%%)", *ind.DailyPnLPct))
		case *ind.DailyPnLPct < -2:
			add(30, fmt.Sprintf("significant daily losses (%.1f%%)", *ind.DailyPnLPct))
		case *ind.DailyPnLPct < -1:
			add(15, fmt.Sprintf("daily losses mounting (%.1f%%)", *ind.DailyPnLPct))
		}
	}
	switch {
	case ind.LosingStreak >= 5:
		add(20, fmt.Sprintf("losing streak: %d trades", ind.LosingStreak))
	case ind.LosingStreak >= 3:
		add(10, fmt.Sprintf("losing streak: %d trades", ind.LosingStreak))
	}
	if ind.BearishSymbols >= 3 && ind.BearishSymbols > ind.BullishSymbols*2 {
		add(15, fmt.Sprintf("widespread negative news (%d bearish vs %d bullish)",
			ind.BearishSymbols, ind.BullishSymbols))
	}

	if score > 100 {
		score = 100
	}
	return score, reasons
}
