// risk-demo walks the safe-mode governor through a worsening market
// and prints every snapshot, ending with the emergency-liquidation
// check.
package main

import (
	"fmt"
	"os"

	"github.com/Dark0tter/D-ai-Trader/internal/calendar"
	"github.com/Dark0tter/D-ai-Trader/internal/observ"
	"github.com/Dark0tter/D-ai-Trader/internal/risk"
)

func ptr(v float64) *float64 { return &v }

func main() {
	observ.Setup("info", true)

	governor, err := risk.NewGovernor(risk.GovernorConfig{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "governor: %v\n", err)
		os.Exit(1)
	}

	scenarios := []struct {
		name string
		ind  risk.Indicators
	}{
		{"calm market", risk.Indicators{VIX: ptr(16.0)}},
		{"vix creeping", risk.Indicators{VIX: ptr(27.0), LosingStreak: 3}},
		{"event day + crypto selling", risk.Indicators{
			VIX:          ptr(27.0),
			BTCChange24h: ptr(-6.5),
			EventRisk:    calendar.DayRiskHigh,
			LosingStreak: 3,
		}},
		{"bearish regime confirmed", risk.Indicators{
			MacroRegime:     "BEARISH",
			MacroConfidence: 85,
			VIX:             ptr(32.0),
			BTCChange24h:    ptr(-8.0),
			EventRisk:       calendar.DayRiskHigh,
		}},
		{"full crash", risk.Indicators{
			MacroRegime:     "BEARISH",
			MacroConfidence: 90,
			TreasurySpread:  ptr(-0.4),
			VIX:             ptr(45.0),
			BTCChange24h:    ptr(-17.0),
			DailyPnLPct:     ptr(-5.5),
			LosingStreak:    6,
		}},
	}

	for _, sc := range scenarios {
		snap := governor.Update(sc.ind)
		fmt.Printf("%-32s score=%5.1f status=%-8s capital=%.2f trading=%v\n",
			sc.name, snap.Score, snap.Status, snap.CapitalMultiplier, snap.TradingAllowed)
		for _, r := range snap.Reasons {
			fmt.Printf("    - %s\n", r)
		}
	}

	last := scenarios[len(scenarios)-1].ind
	if closeAll, reason := governor.ShouldCloseAll(last); closeAll {
		fmt.Printf("\nliquidation advisory: %s\n", reason)
	}
}
