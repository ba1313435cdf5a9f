package signal

import "time"

// Direction is a source's directional opinion on a symbol.
type Direction string

const (
	Bullish Direction = "BULLISH"
	Bearish Direction = "BEARISH"
	Neutral Direction = "NEUTRAL"
)

// Source identifies an intelligence provider.
type Source string

const (
	SourceNews          Source = "news"
	SourceOptions       Source = "options"
	SourceInsiders      Source = "insiders"
	SourceOvernight     Source = "overnight"
	SourceSocial        Source = "social"
	SourceShortInterest Source = "shortinterest"
	SourceTrends        Source = "trends"

	// Adjustment sources multiply position size but carry no
	// directional weight in fusion.
	SourceEconomic Source = "economic"
	SourceMacro    Source = "macro"
	SourceCrypto   Source = "crypto"
)

// CoreSources are the directional sources that participate in the
// weighted fusion score, in a fixed evaluation order.
func CoreSources() []Source {
	return []Source{
		SourceNews,
		SourceOptions,
		SourceInsiders,
		SourceOvernight,
		SourceSocial,
		SourceShortInterest,
		SourceTrends,
	}
}

// AdjustmentSources contribute multiplicative macro adjustments to
// position sizing only.
func AdjustmentSources() []Source {
	return []Source{SourceEconomic, SourceMacro, SourceCrypto}
}

// BoostSources are the individual sources whose boosts are averaged
// by the sizing calculator. Overnight analysis votes directionally
// but carries no sizing boost.
func BoostSources() []Source {
	return []Source{
		SourceNews,
		SourceOptions,
		SourceInsiders,
		SourceSocial,
		SourceShortInterest,
		SourceTrends,
	}
}

// BoostRange is the declared multiplier range for one source.
type BoostRange struct {
	Min float64
	Max float64
}

func (r BoostRange) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

var boostRanges = map[Source]BoostRange{
	SourceNews:          {0.5, 1.5},
	SourceOptions:       {0.5, 2.0},
	SourceInsiders:      {0.7, 1.8},
	SourceSocial:        {0.6, 1.6},
	SourceShortInterest: {1.0, 2.0},
	SourceTrends:        {0.8, 1.4},
	SourceEconomic:      {0.5, 1.0},
	SourceMacro:         {0.6, 1.3},
	SourceCrypto:        {0.7, 1.2},
}

// RangeFor returns the declared boost range for a source. Sources
// without a sizing role (overnight) report ok=false.
func RangeFor(src Source) (BoostRange, bool) {
	r, ok := boostRanges[src]
	return r, ok
}

// Known reports whether src is a recognized provider.
func Known(src Source) bool {
	switch src {
	case SourceNews, SourceOptions, SourceInsiders, SourceOvernight,
		SourceSocial, SourceShortInterest, SourceTrends,
		SourceEconomic, SourceMacro, SourceCrypto:
		return true
	}
	return false
}

// IsAdjustment reports whether src multiplies rather than votes.
func IsAdjustment(src Source) bool {
	return src == SourceEconomic || src == SourceMacro || src == SourceCrypto
}

// Record is one source's normalized opinion for a symbol in one
// cycle. Records are immutable once built.
type Record struct {
	Source     Source    `json:"source"`
	Direction  Direction `json:"direction"`
	Confidence float64   `json:"confidence"` // [0,1]
	Boost      float64   `json:"boost"`      // clamped to the source's declared range
	ObservedAt time.Time `json:"observed_at"`
	Evidence   string    `json:"evidence,omitempty"`
}

// Set holds the present records for one symbol in one cycle. A source
// that failed, timed out, or produced garbage is simply absent; no
// component may read absence as a neutral vote.
type Set map[Source]Record

func (s Set) Get(src Source) (Record, bool) {
	r, ok := s[src]
	return r, ok
}

// Raw is the wire shape produced by a provider before normalization.
// Optional fields are pointers so "not reported" is distinguishable
// from a zero value.
type Raw struct {
	Source     string     `json:"source"`
	Direction  *string    `json:"direction,omitempty"`
	Confidence *float64   `json:"confidence,omitempty"`
	Boost      *float64   `json:"boost,omitempty"`
	Evidence   string     `json:"evidence,omitempty"`
	ObservedAt *time.Time `json:"observed_at,omitempty"`
}
