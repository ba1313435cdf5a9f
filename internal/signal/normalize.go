package signal

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Normalization drop reasons. Callers log the drop at warning level
// and continue the cycle; a dropped raw signal never aborts
// evaluation.
var (
	ErrUnknownSource = errors.New("unknown source")
	ErrNoDirection   = errors.New("directional source without direction")
	ErrNoConfidence  = errors.New("directional source without confidence")
	ErrNoBoost       = errors.New("adjustment source without boost")
	ErrStale         = errors.New("signal older than staleness bound")
)

// Normalizer converts raw provider output into Records. It is a pure
// transform: malformed input yields an error (absence downstream),
// never a neutral record.
type Normalizer struct {
	staleAfter time.Duration
	now        func() time.Time
}

// NewNormalizer builds a normalizer with the given staleness bound.
// staleAfter <= 0 disables the staleness check.
func NewNormalizer(staleAfter time.Duration) *Normalizer {
	return &Normalizer{staleAfter: staleAfter, now: time.Now}
}

// Normalize converts one raw signal into a Record. Confidence is
// clamped to [0,1] and boost to the source's declared range.
func (n *Normalizer) Normalize(raw Raw) (Record, error) {
	src := Source(strings.ToLower(strings.TrimSpace(raw.Source)))
	if !Known(src) {
		return Record{}, fmt.Errorf("%w: %q", ErrUnknownSource, raw.Source)
	}

	observed := n.now()
	if raw.ObservedAt != nil {
		observed = *raw.ObservedAt
	}
	if n.staleAfter > 0 && n.now().Sub(observed) > n.staleAfter {
		return Record{}, fmt.Errorf("%w: %s observed %s", ErrStale, src, observed.UTC().Format(time.RFC3339))
	}

	rec := Record{
		Source:     src,
		Direction:  Neutral,
		ObservedAt: observed,
		Evidence:   raw.Evidence,
	}

	if IsAdjustment(src) {
		if raw.Boost == nil {
			return Record{}, fmt.Errorf("%w: %s", ErrNoBoost, src)
		}
		r, _ := RangeFor(src)
		rec.Boost = r.Clamp(*raw.Boost)
		if raw.Confidence != nil {
			rec.Confidence = clamp01(*raw.Confidence)
		}
		return rec, nil
	}

	if raw.Direction == nil {
		return Record{}, fmt.Errorf("%w: %s", ErrNoDirection, src)
	}
	switch Direction(strings.ToUpper(strings.TrimSpace(*raw.Direction))) {
	case Bullish:
		rec.Direction = Bullish
	case Bearish:
		rec.Direction = Bearish
	case Neutral:
		rec.Direction = Neutral
	default:
		return Record{}, fmt.Errorf("%w: %s direction %q", ErrNoDirection, src, *raw.Direction)
	}

	if raw.Confidence == nil {
		return Record{}, fmt.Errorf("%w: %s", ErrNoConfidence, src)
	}
	rec.Confidence = clamp01(*raw.Confidence)

	// A boost is optional for directional sources; a source that
	// reports none sizes as neutral.
	rec.Boost = 1.0
	if r, ok := RangeFor(src); ok {
		if raw.Boost != nil {
			rec.Boost = r.Clamp(*raw.Boost)
		} else {
			rec.Boost = r.Clamp(1.0)
		}
	}

	return rec, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
