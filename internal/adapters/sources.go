// Package adapters fans out to the per-source intelligence providers
// and reduces whatever comes back into a normalized signal set. The
// providers themselves (HTTP clients, scrapers) live outside this
// core; everything here treats them as capabilities that may fail.
package adapters

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Dark0tter/D-ai-Trader/internal/observ"
	"github.com/Dark0tter/D-ai-Trader/internal/signal"
)

// SourceAdapter fetches one provider's raw opinion for a symbol.
// Fetch must honor ctx cancellation; the gatherer bounds every call.
type SourceAdapter interface {
	Source() signal.Source
	Fetch(ctx context.Context, symbol string) (signal.Raw, error)
}

// ErrNoData is returned by adapters that have nothing for a symbol
// this cycle. It degrades to absence without a warning log.
var ErrNoData = errors.New("no data for symbol")

// GatherConfig bounds the fan-out.
type GatherConfig struct {
	// FetchTimeout bounds each individual source fetch.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	// RatePerSecond limits calls per source; 0 disables limiting.
	RatePerSecond float64 `yaml:"rate_per_second"`
	// BreakerFailures consecutive failures open a source's breaker.
	BreakerFailures uint32 `yaml:"breaker_failures"`
	// BreakerReset is how long an open breaker waits before probing.
	BreakerReset time.Duration `yaml:"breaker_reset"`
}

func (c *GatherConfig) applyDefaults() {
	if c.FetchTimeout == 0 {
		c.FetchTimeout = 5 * time.Second
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = 3
	}
	if c.BreakerReset == 0 {
		c.BreakerReset = 30 * time.Second
	}
}

// Gatherer issues all source fetches concurrently, each independently
// cancellable, and normalizes the survivors. Any failure - timeout,
// open breaker, malformed payload, staleness - yields absence for
// that source only.
type Gatherer struct {
	cfg        GatherConfig
	adapters   []SourceAdapter
	normalizer *signal.Normalizer
	breakers   map[signal.Source]*gobreaker.CircuitBreaker
	limiters   map[signal.Source]*rate.Limiter
	log        zerolog.Logger
}

// NewGatherer wires one breaker and one limiter per adapter.
func NewGatherer(cfg GatherConfig, normalizer *signal.Normalizer, srcs ...SourceAdapter) *Gatherer {
	cfg.applyDefaults()
	g := &Gatherer{
		cfg:        cfg,
		adapters:   srcs,
		normalizer: normalizer,
		breakers:   make(map[signal.Source]*gobreaker.CircuitBreaker, len(srcs)),
		limiters:   make(map[signal.Source]*rate.Limiter, len(srcs)),
		log:        observ.Component("gatherer"),
	}
	for _, a := range srcs {
		failures := cfg.BreakerFailures
		st := gobreaker.Settings{
			Name:    string(a.Source()),
			Timeout: cfg.BreakerReset,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
		}
		g.breakers[a.Source()] = gobreaker.NewCircuitBreaker(st)
		if cfg.RatePerSecond > 0 {
			g.limiters[a.Source()] = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
		}
	}
	return g
}

// Gather returns the present records for one symbol. It never returns
// an error: a failed source is simply missing from the set.
func (g *Gatherer) Gather(ctx context.Context, symbol string, cycleTS time.Time) signal.Set {
	set := signal.Set{}
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	for _, a := range g.adapters {
		adapter := a
		eg.Go(func() error {
			rec, ok := g.fetchOne(egCtx, adapter, symbol)
			if ok {
				mu.Lock()
				set[rec.Source] = rec
				mu.Unlock()
			}
			return nil
		})
	}
	_ = eg.Wait()

	_ = cycleTS // records carry their own observation time
	return set
}

func (g *Gatherer) fetchOne(ctx context.Context, adapter SourceAdapter, symbol string) (signal.Record, bool) {
	src := adapter.Source()

	fetchCtx, cancel := context.WithTimeout(ctx, g.cfg.FetchTimeout)
	defer cancel()

	if lim, ok := g.limiters[src]; ok {
		if err := lim.Wait(fetchCtx); err != nil {
			g.warn(src, "rate", symbol, err)
			return signal.Record{}, false
		}
	}

	raw, err := g.breakers[src].Execute(func() (interface{}, error) {
		return adapter.Fetch(fetchCtx, symbol)
	})
	if err != nil {
		if errors.Is(err, ErrNoData) {
			return signal.Record{}, false
		}
		g.warn(src, "fetch", symbol, err)
		return signal.Record{}, false
	}

	rec, err := g.normalizer.Normalize(raw.(signal.Raw))
	if err != nil {
		g.warn(src, "normalize", symbol, err)
		return signal.Record{}, false
	}
	return rec, true
}

func (g *Gatherer) warn(src signal.Source, cause, symbol string, err error) {
	observ.SourceErrorsTotal.WithLabelValues(string(src), cause).Inc()
	g.log.Warn().Err(err).
		Str("source", string(src)).
		Str("symbol", symbol).
		Str("cause", cause).
		Msg("source degraded to absent")
}
