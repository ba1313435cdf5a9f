package adapters

import (
	"context"
	"sync"
	"time"

	"github.com/Dark0tter/D-ai-Trader/internal/calendar"
	"github.com/Dark0tter/D-ai-Trader/internal/feedback"
	"github.com/Dark0tter/D-ai-Trader/internal/signal"
)

// StaticSource serves a fixed raw signal per symbol. Used by tests
// and the demo binary in place of live providers.
type StaticSource struct {
	src     signal.Source
	bySym   map[string]signal.Raw
	err     error
	latency time.Duration
}

// NewStaticSource builds an adapter answering for the given symbols.
func NewStaticSource(src signal.Source, bySym map[string]signal.Raw) *StaticSource {
	return &StaticSource{src: src, bySym: bySym}
}

// NewFailingSource builds an adapter that always errors.
func NewFailingSource(src signal.Source, err error) *StaticSource {
	return &StaticSource{src: src, err: err}
}

// WithLatency makes every fetch sleep first, for timeout tests.
func (s *StaticSource) WithLatency(d time.Duration) *StaticSource {
	s.latency = d
	return s
}

func (s *StaticSource) Source() signal.Source { return s.src }

func (s *StaticSource) Fetch(ctx context.Context, symbol string) (signal.Raw, error) {
	if s.latency > 0 {
		select {
		case <-ctx.Done():
			return signal.Raw{}, ctx.Err()
		case <-time.After(s.latency):
		}
	}
	if s.err != nil {
		return signal.Raw{}, s.err
	}
	raw, ok := s.bySym[symbol]
	if !ok {
		return signal.Raw{}, ErrNoData
	}
	return raw, nil
}

// StaticCalendar serves a fixed event list.
type StaticCalendar struct {
	Events []calendar.Event
	Err    error
}

func (c *StaticCalendar) EventsOn(day time.Time) ([]calendar.Event, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return calendar.EventsOn(c.Events, day), nil
}

// ScriptedPolicy proposes a fixed baseline action per symbol and
// records what it is asked to learn. Stands in for the upstream
// policy in tests and demos.
type ScriptedPolicy struct {
	Default  string
	BySymbol map[string]string
	LearnErr error

	mu       sync.Mutex
	outcomes []feedback.Outcome
}

func (p *ScriptedPolicy) Propose(ctx context.Context, symbol string, cycleTS time.Time) (string, error) {
	if a, ok := p.BySymbol[symbol]; ok {
		return a, nil
	}
	if p.Default == "" {
		return "HOLD", nil
	}
	return p.Default, nil
}

func (p *ScriptedPolicy) Learn(out feedback.Outcome) error {
	if p.LearnErr != nil {
		return p.LearnErr
	}
	p.mu.Lock()
	p.outcomes = append(p.outcomes, out)
	p.mu.Unlock()
	return nil
}

// Learned returns the outcomes delivered so far.
func (p *ScriptedPolicy) Learned() []feedback.Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]feedback.Outcome, len(p.outcomes))
	copy(out, p.outcomes)
	return out
}
