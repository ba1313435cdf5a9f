package calendar

import "time"

// RiskLevel classifies one scheduled economic event.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Event is read-only reference data for one scheduled release
// (FOMC decision, CPI, Non-Farm Payrolls, ...).
type Event struct {
	Date time.Time `json:"date" yaml:"date"`
	Name string    `json:"name" yaml:"name"`
	Risk RiskLevel `json:"risk_level" yaml:"risk_level"`
}

// DayRisk is the aggregate risk of all events on one trading day.
type DayRisk string

const (
	DayRiskNone    DayRisk = "NONE"
	DayRiskMedium  DayRisk = "MEDIUM"
	DayRiskHigh    DayRisk = "HIGH"
	DayRiskExtreme DayRisk = "EXTREME"
)

// SameDay reports whether two instants fall on the same UTC date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// EventsOn filters events to those scheduled on the given day.
func EventsOn(events []Event, day time.Time) []Event {
	var out []Event
	for _, ev := range events {
		if SameDay(ev.Date, day) {
			out = append(out, ev)
		}
	}
	return out
}

// Assess aggregates a day's events into one risk tier. Two or more
// high-impact releases on the same day compound into extreme risk.
func Assess(events []Event) DayRisk {
	var high, medium int
	for _, ev := range events {
		switch ev.Risk {
		case RiskHigh:
			high++
		case RiskMedium:
			medium++
		}
	}
	switch {
	case high >= 2:
		return DayRiskExtreme
	case high == 1:
		return DayRiskHigh
	case medium > 0:
		return DayRiskMedium
	default:
		return DayRiskNone
	}
}

// SizingFactor maps the day's aggregate event risk to a position-size
// adjustment in [0.5, 1.0]. Event days get smaller positions.
func SizingFactor(risk DayRisk) float64 {
	switch risk {
	case DayRiskExtreme:
		return 0.5
	case DayRiskHigh:
		return 0.7
	case DayRiskMedium:
		return 0.85
	default:
		return 1.0
	}
}
