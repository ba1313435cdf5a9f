package risk

import (
	"strings"
	"testing"
	"time"

	"github.com/Dark0tter/D-ai-Trader/internal/calendar"
)

func f64p(v float64) *float64 { return &v }

func newTestGovernor(t *testing.T, cfg GovernorConfig) *Governor {
	t.Helper()
	g, err := NewGovernor(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestGovernorStartsNormal(t *testing.T) {
	g := newTestGovernor(t, GovernorConfig{})
	cur := g.Current()
	if cur.Status != StatusNormal {
		t.Errorf("status: want NORMAL, got %s", cur.Status)
	}
	if cur.CapitalMultiplier != 1.0 {
		t.Errorf("multiplier: want 1.0, got %v", cur.CapitalMultiplier)
	}
	if !cur.TradingAllowed {
		t.Error("trading should be allowed at NORMAL")
	}
}

func TestStatusBoundariesAreExact(t *testing.T) {
	cases := []struct {
		score float64
		want  Status
	}{
		{0, StatusNormal},
		{39.999, StatusNormal},
		{40.0, StatusCaution},
		{59.999, StatusCaution},
		{60.0, StatusElevated},
		{79.999, StatusElevated},
		{80.0, StatusCritical},
		{100, StatusCritical},
	}
	for _, tc := range cases {
		if got := statusFor(tc.score); got != tc.want {
			t.Errorf("score %v: want %s, got %s", tc.score, tc.want, got)
		}
	}
}

func TestComposeScoreContributions(t *testing.T) {
	cases := []struct {
		name string
		ind  Indicators
		want float64
	}{
		{"calm markets", Indicators{}, 0},
		{"bearish macro high conf", Indicators{MacroRegime: "BEARISH", MacroConfidence: 80}, 30},
		{"bearish macro low conf", Indicators{MacroRegime: "BEARISH", MacroConfidence: 60}, 0},
		{"inverted curve", Indicators{TreasurySpread: f64p(-0.3)}, 20},
		{"vix high", Indicators{VIX: f64p(32)}, 25},
		{"vix elevated", Indicators{VIX: f64p(27)}, 15},
		{"btc crash", Indicators{BTCChange24h: f64p(-12)}, 25},
		{"btc selling", Indicators{BTCChange24h: f64p(-7)}, 10},
		{"extreme event day", Indicators{EventRisk: calendar.DayRiskExtreme}, 30},
		{"high event day", Indicators{EventRisk: calendar.DayRiskHigh}, 15},
		{"daily loss limit", Indicators{DailyPnLPct: f64p(-3.5)}, 50},
		{"significant losses", Indicators{DailyPnLPct: f64p(-2.5)}, 30},
		{"mounting losses", Indicators{DailyPnLPct: f64p(-1.5)}, 15},
		{"long losing streak", Indicators{LosingStreak: 5}, 20},
		{"short losing streak", Indicators{LosingStreak: 3}, 10},
		{"broad bearish news", Indicators{BearishSymbols: 4, BullishSymbols: 1}, 15},
		{"bearish but balanced", Indicators{BearishSymbols: 4, BullishSymbols: 3}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := composeScore(tc.ind)
			if got != tc.want {
				t.Errorf("score: want %v, got %v", tc.want, got)
			}
		})
	}
}

func TestComposeScoreClampsAt100(t *testing.T) {
	ind := Indicators{
		MacroRegime:     "BEARISH",
		MacroConfidence: 90,
		TreasurySpread:  f64p(-0.5),
		VIX:             f64p(45),
		BTCChange24h:    f64p(-20),
		EventRisk:       calendar.DayRiskExtreme,
		DailyPnLPct:     f64p(-6),
		LosingStreak:    6,
		BearishSymbols:  8,
	}
	score, reasons := composeScore(ind)
	if score != 100 {
		t.Errorf("score: want clamp to 100, got %v", score)
	}
	if len(reasons) < 5 {
		t.Errorf("expected all contributing reasons, got %v", reasons)
	}
}

func TestUpdateAppliesTierMultipliers(t *testing.T) {
	g := newTestGovernor(t, GovernorConfig{})
	cases := []struct {
		ind     Indicators
		status  Status
		mult    float64
		allowed bool
	}{
		{Indicators{}, StatusNormal, 1.0, true},
		{Indicators{VIX: f64p(32), LosingStreak: 3, BearishSymbols: 3}, StatusCaution, 0.5, true},
		{Indicators{VIX: f64p(32), DailyPnLPct: f64p(-3.5)}, StatusElevated, 0.25, true},
		{Indicators{VIX: f64p(32), DailyPnLPct: f64p(-3.5), TreasurySpread: f64p(-0.2)}, StatusCritical, 0.1, false},
	}
	for _, tc := range cases {
		snap := g.Update(tc.ind)
		if snap.Status != tc.status {
			t.Errorf("status: want %s, got %s (score %v)", tc.status, snap.Status, snap.Score)
		}
		if snap.CapitalMultiplier != tc.mult {
			t.Errorf("%s: multiplier want %v, got %v", tc.status, tc.mult, snap.CapitalMultiplier)
		}
		if snap.TradingAllowed != tc.allowed {
			t.Errorf("%s: trading allowed want %v", tc.status, tc.allowed)
		}
	}
}

func TestGovernorConfigValidation(t *testing.T) {
	if _, err := NewGovernor(GovernorConfig{CriticalMultiplier: -0.1}); err == nil {
		t.Error("negative multiplier should be rejected")
	}
	if _, err := NewGovernor(GovernorConfig{CautionMultiplier: 0.2, ElevatedMultiplier: 0.6}); err == nil {
		t.Error("non-monotonic multipliers should be rejected")
	}
	if _, err := NewGovernor(GovernorConfig{NormalMultiplier: 1.2}); err == nil {
		t.Error("multiplier above 1 should be rejected")
	}
}

func TestMinDwellDebouncesDeEscalationOnly(t *testing.T) {
	g := newTestGovernor(t, GovernorConfig{MinDwell: 10 * time.Minute})
	clock := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	g.now = func() time.Time { return clock }

	// Escalation is immediate.
	snap := g.Update(Indicators{VIX: f64p(32), DailyPnLPct: f64p(-3.5)})
	if snap.Status != StatusElevated {
		t.Fatalf("want ELEVATED, got %s", snap.Status)
	}

	// Calm score inside the dwell holds the stricter tier.
	clock = clock.Add(2 * time.Minute)
	snap = g.Update(Indicators{})
	if snap.Status != StatusElevated {
		t.Errorf("de-escalation inside dwell: want ELEVATED, got %s", snap.Status)
	}

	// Escalating further inside the dwell is never delayed.
	clock = clock.Add(time.Minute)
	snap = g.Update(Indicators{VIX: f64p(32), DailyPnLPct: f64p(-3.5), TreasurySpread: f64p(-0.2)})
	if snap.Status != StatusCritical {
		t.Errorf("escalation inside dwell: want CRITICAL, got %s", snap.Status)
	}

	// After the dwell expires the calm score wins.
	clock = clock.Add(11 * time.Minute)
	snap = g.Update(Indicators{})
	if snap.Status != StatusNormal {
		t.Errorf("de-escalation after dwell: want NORMAL, got %s", snap.Status)
	}
}

func TestShouldCloseAll(t *testing.T) {
	g := newTestGovernor(t, GovernorConfig{})

	if ok, _ := g.ShouldCloseAll(Indicators{}); ok {
		t.Error("calm markets should not close all")
	}
	if ok, _ := g.ShouldCloseAll(Indicators{VIX: f64p(45)}); ok {
		t.Error("one crash signal is not enough")
	}
	ok, reason := g.ShouldCloseAll(Indicators{VIX: f64p(45), DailyPnLPct: f64p(-6)})
	if !ok {
		t.Fatal("two crash signals should close all")
	}
	if !strings.HasPrefix(reason, "emergency:") {
		t.Errorf("reason: got %q", reason)
	}
	if ok, _ := g.ShouldCloseAll(Indicators{BTCChange24h: f64p(-18), VIX: f64p(45), DailyPnLPct: f64p(-6)}); !ok {
		t.Error("three crash signals should close all")
	}
}
