package risk

import "github.com/Dark0tter/D-ai-Trader/internal/calendar"

// Indicators is the externally supplied market/account risk feed the
// governor scores each cycle. Optional readings are pointers so an
// unavailable indicator contributes nothing instead of reading as a
// calm zero.
type Indicators struct {
	// Macro regime from the FRED-style analyzer.
	MacroRegime     string  `json:"macro_regime,omitempty"` // BULLISH | BEARISH | NEUTRAL
	MacroConfidence float64 `json:"macro_confidence"`       // [0,100]

	// 10y-2y treasury spread; negative means inverted curve.
	TreasurySpread *float64 `json:"treasury_spread,omitempty"`

	VIX *float64 `json:"vix,omitempty"`

	// Bitcoin 24h change in percent, risk-off proxy.
	BTCChange24h *float64 `json:"btc_change_24h,omitempty"`

	// Aggregate scheduled-event risk for the day.
	EventRisk calendar.DayRisk `json:"event_risk,omitempty"`

	// Account performance.
	DailyPnLPct  *float64 `json:"daily_pnl_pct,omitempty"`
	LosingStreak int      `json:"losing_streak"`

	// News breadth across the watchlist.
	BearishSymbols int `json:"bearish_symbols"`
	BullishSymbols int `json:"bullish_symbols"`
}

// IndicatorFeed is the capability interface for whatever ingests the
// raw risk data. The governor only ever sees the assembled snapshot.
type IndicatorFeed interface {
	Current() (Indicators, error)
}
