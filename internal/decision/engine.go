package decision

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Dark0tter/D-ai-Trader/internal/calendar"
	"github.com/Dark0tter/D-ai-Trader/internal/feedback"
	"github.com/Dark0tter/D-ai-Trader/internal/fusion"
	"github.com/Dark0tter/D-ai-Trader/internal/observ"
	"github.com/Dark0tter/D-ai-Trader/internal/risk"
	"github.com/Dark0tter/D-ai-Trader/internal/signal"
	"github.com/Dark0tter/D-ai-Trader/internal/sizing"
)

// Gatherer assembles the present signal records for one symbol. A
// slow or failing source must degrade to absence, never stall the
// cycle.
type Gatherer interface {
	Gather(ctx context.Context, symbol string, cycleTS time.Time) signal.Set
}

// EventSource supplies the scheduled economic events for a day.
type EventSource interface {
	EventsOn(day time.Time) ([]calendar.Event, error)
}

// Policy is the upstream trading policy as a capability: it proposes
// a baseline action and accepts trade outcomes for its own learning.
// Its internals are out of scope here.
type Policy interface {
	Propose(ctx context.Context, symbol string, cycleTS time.Time) (string, error)
	Learn(out feedback.Outcome) error
}

// Evaluation is the full per-symbol output of one cycle.
type Evaluation struct {
	Decision Decision      `json:"decision"`
	Sizing   sizing.Result `json:"sizing"`
	Fusion   fusion.Result `json:"fusion"`
	// EventRisk is the day's aggregate scheduled-event tier and
	// EventFactor its position-size haircut.
	EventRisk   calendar.DayRisk `json:"event_risk"`
	EventFactor float64          `json:"event_factor"`
	// EffectiveSize is FinalMultiplier scaled by the event-day factor
	// and the portfolio-wide capital multiplier.
	EffectiveSize float64          `json:"effective_size"`
	Danger        risk.DangerScore `json:"danger"`
	CorrelationID string           `json:"correlation_id"`
}

// EngineConfig carries the tunables the engine wires into its parts.
type EngineConfig struct {
	Resolver ResolverConfig
	Blocker  fusion.BlockerConfig
}

// Engine is the fusion/decision core. All cycle-visible state is
// read through immutable snapshots (weight table, danger score), so
// EvaluateCycle is safe to call concurrently across symbols.
type Engine struct {
	cfg      EngineConfig
	weights  *fusion.Table
	gatherer Gatherer
	events   EventSource
	governor *risk.Governor
	policy   Policy
	hook     *feedback.Hook
	log      zerolog.Logger
}

// NewEngine validates configuration and assembles the engine. An
// invalid weight table is fatal here: no cycle runs until the
// configuration is corrected.
func NewEngine(cfg EngineConfig, weights *fusion.Table, gatherer Gatherer, events EventSource, governor *risk.Governor, policy Policy, hook *feedback.Hook) (*Engine, error) {
	if weights == nil || weights.Snapshot() == nil {
		return nil, fmt.Errorf("engine: weight table required")
	}
	if gatherer == nil {
		return nil, fmt.Errorf("engine: gatherer required")
	}
	if governor == nil {
		return nil, fmt.Errorf("engine: risk governor required")
	}
	if policy == nil {
		return nil, fmt.Errorf("engine: baseline policy required")
	}
	return &Engine{
		cfg:      cfg,
		weights:  weights,
		gatherer: gatherer,
		events:   events,
		governor: governor,
		policy:   policy,
		hook:     hook,
		log:      observ.Component("engine"),
	}, nil
}

// EvaluateCycle runs one symbol through the full pipeline: gather ->
// block -> fuse -> resolve -> size -> capital brake. Ordinary
// partial-data conditions still yield a Decision; only an invariant
// violation fails the symbol's cycle.
func (e *Engine) EvaluateCycle(ctx context.Context, symbol string, cycleTS time.Time) (Evaluation, error) {
	started := time.Now()
	defer func() {
		observ.EvaluationSeconds.Observe(time.Since(started).Seconds())
	}()
	correlationID := uuid.NewString()

	set := e.gatherer.Gather(ctx, symbol, cycleTS)
	if e.hook != nil {
		e.hook.ObserveSignals(symbol, set)
	}

	var todays []calendar.Event
	if e.events != nil {
		evs, err := e.events.EventsOn(cycleTS)
		if err != nil {
			// The calendar degrades like any other source: absent,
			// logged, cycle continues.
			e.log.Warn().Err(err).Str("symbol", symbol).Msg("economic calendar unavailable")
			observ.SourceErrorsTotal.WithLabelValues("calendar", "fetch").Inc()
		} else {
			todays = calendar.EventsOn(evs, cycleTS)
		}
	}

	blk := fusion.EvaluateBlockers(todays, set, e.cfg.Blocker)
	snapshot := e.weights.Snapshot()
	fused := fusion.Score(symbol, cycleTS, set, snapshot)

	baseline := ActionHold
	baselineReason := ""
	if raw, err := e.policy.Propose(ctx, symbol, cycleTS); err != nil {
		e.log.Warn().Err(err).Str("symbol", symbol).Msg("baseline policy unavailable, holding")
		baselineReason = ReasonInsufficientData
	} else {
		baseline = Action(raw)
	}

	dec, err := Resolve(baseline, fused, blk, e.cfg.Resolver)
	if err != nil {
		e.log.Error().Err(err).
			Str("symbol", symbol).
			Str("correlation_id", correlationID).
			Msg("cycle failed")
		return Evaluation{}, err
	}
	if dec.OverrideReason == "" && baselineReason != "" {
		dec.OverrideReason = baselineReason
	}

	// Sizing still runs for blocked symbols so dashboards can show
	// what the position would have been.
	siz := sizing.Calculate(symbol, cycleTS, set)
	dayRisk := calendar.Assess(todays)
	eventFactor := calendar.SizingFactor(dayRisk)
	danger := e.governor.Current()
	effective := siz.FinalMultiplier * eventFactor * danger.CapitalMultiplier

	e.observe(dec, blk)
	e.log.Info().
		Str("symbol", symbol).
		Str("action", string(dec.Action)).
		Bool("blocked", dec.Blocked).
		Float64("net_score", fused.NetScore).
		Float64("final_multiplier", siz.FinalMultiplier).
		Float64("effective_size", effective).
		Int64("weights_version", snapshot.Version()).
		Str("correlation_id", correlationID).
		Msg("cycle evaluated")

	return Evaluation{
		Decision:      dec,
		Sizing:        siz,
		Fusion:        fused,
		EventRisk:     dayRisk,
		EventFactor:   eventFactor,
		EffectiveSize: effective,
		Danger:        danger,
		CorrelationID: correlationID,
	}, nil
}

func (e *Engine) observe(dec Decision, blk fusion.Block) {
	observ.DecisionsTotal.WithLabelValues(string(dec.Action)).Inc()
	if blk.Blocked {
		observ.BlockedTotal.WithLabelValues(blk.Reason).Inc()
	}
	switch dec.OverrideReason {
	case ReasonDowngrade:
		observ.OverridesTotal.WithLabelValues("downgrade").Inc()
	case ReasonUpgrade:
		observ.OverridesTotal.WithLabelValues("upgrade").Inc()
	}
}

// RecordOutcome forwards a closed trade to the learning paths.
// Best-effort: failures are logged and never surface into live
// decisioning.
func (e *Engine) RecordOutcome(symbol string, action Action, reward float64) {
	out := feedback.Outcome{
		Symbol:   symbol,
		Action:   string(action),
		Reward:   reward,
		ClosedAt: time.Now(),
	}
	if err := e.policy.Learn(out); err != nil {
		e.log.Warn().Err(err).Str("symbol", symbol).Msg("policy learn failed")
	}
	if e.hook != nil {
		e.hook.Record(out)
	}
}

// GetDangerScore returns the current portfolio-wide risk snapshot.
func (e *Engine) GetDangerScore() risk.DangerScore {
	return e.governor.Current()
}

// UpdateRiskIndicators rescores the safe-mode governor. It is meant
// to be called by the single indicator-ingestion owner between
// cycles.
func (e *Engine) UpdateRiskIndicators(ind risk.Indicators) risk.DangerScore {
	return e.governor.Update(ind)
}

// GetSourceWeights returns the live weight snapshot for audit.
func (e *Engine) GetSourceWeights() map[signal.Source]float64 {
	return e.weights.Snapshot().Map()
}

// SetSourceWeights validates and publishes a replacement table.
func (e *Engine) SetSourceWeights(values map[signal.Source]float64) error {
	w, err := fusion.NewWeights(values)
	if err != nil {
		return err
	}
	e.weights.Publish(w)
	observ.WeightVersion.Set(float64(w.Version()))
	e.log.Info().Int64("version", w.Version()).Msg("source weights replaced")
	return nil
}

// ApplyRiskProfile publishes one of the preset allocations.
func (e *Engine) ApplyRiskProfile(p fusion.Profile) error {
	w, err := fusion.ProfileWeights(p)
	if err != nil {
		return err
	}
	e.weights.Publish(w)
	observ.WeightVersion.Set(float64(w.Version()))
	e.log.Info().Str("profile", string(p)).Int64("version", w.Version()).Msg("risk profile applied")
	return nil
}
