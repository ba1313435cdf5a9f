package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Dark0tter/D-ai-Trader/internal/adapters"
	"github.com/Dark0tter/D-ai-Trader/internal/config"
	"github.com/Dark0tter/D-ai-Trader/internal/decision"
	"github.com/Dark0tter/D-ai-Trader/internal/feedback"
	"github.com/Dark0tter/D-ai-Trader/internal/fusion"
	"github.com/Dark0tter/D-ai-Trader/internal/observ"
	"github.com/Dark0tter/D-ai-Trader/internal/risk"
	"github.com/Dark0tter/D-ai-Trader/internal/signal"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to yaml config")
	fixturesPath := flag.String("fixtures", "data/fixtures.json", "path to signal fixtures")
	symbolsCSV := flag.String("symbols", "AAPL,TSLA,NVDA", "comma-separated symbols to evaluate")
	metricsAddr := flag.String("metrics-addr", "", "serve /metrics on this address (empty = off)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
		cfg = config.Default()
	}
	observ.Setup(cfg.LogLevel, true)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuration invalid, refusing to evaluate")
	}

	fixtures, err := adapters.LoadFixtures(*fixturesPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load fixtures")
	}

	weights, err := cfg.BuildWeights()
	if err != nil {
		log.Fatal().Err(err).Msg("build weights")
	}
	table := fusion.NewTable(weights)

	governor, err := risk.NewGovernor(cfg.GovernorConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("build governor")
	}

	normalizer := signal.NewNormalizer(cfg.StaleAfter())
	gatherer := adapters.NewGatherer(cfg.GatherConfig(), normalizer, fixtures.SourceAdapters()...)
	hook := feedback.NewHook(cfg.Feedback, table)
	policy := fixtures.Policy()

	engine, err := decision.NewEngine(decision.EngineConfig{
		Resolver: decision.ResolverConfig{
			DowngradeBelow: cfg.Thresholds.DowngradeBelow,
			UpgradeAbove:   cfg.Thresholds.UpgradeAbove,
		},
		Blocker: fusion.BlockerConfig{
			BearishNewsConfidence: cfg.Thresholds.BearishNewsConfidence,
		},
	}, table, gatherer, fixtures, governor, policy, hook)
	if err != nil {
		log.Fatal().Err(err).Msg("build engine")
	}

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observ.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	// One indicator-ingestion pass before the cycle, as the single
	// writer of the danger score.
	danger := engine.UpdateRiskIndicators(fixtures.Indicators)
	log.Info().
		Float64("danger_score", danger.Score).
		Str("status", string(danger.Status)).
		Float64("risk_reduction", danger.CapitalMultiplier).
		Msg("safe mode evaluated")

	ctx := context.Background()
	cycleTS := time.Now().UTC()
	enc := json.NewEncoder(os.Stdout)
	for _, symbol := range strings.Split(*symbolsCSV, ",") {
		symbol = strings.TrimSpace(strings.ToUpper(symbol))
		if symbol == "" {
			continue
		}
		eval, err := engine.EvaluateCycle(ctx, symbol, cycleTS)
		if err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("cycle failed")
			continue
		}
		if err := enc.Encode(eval); err != nil {
			log.Error().Err(err).Msg("encode evaluation")
		}
	}
}
