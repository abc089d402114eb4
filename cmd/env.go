package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bizlens/competitor-insights/internal/comparison"
	"github.com/bizlens/competitor-insights/internal/provider"
	"github.com/bizlens/competitor-insights/internal/resilience"
	"github.com/bizlens/competitor-insights/internal/scoring"
	"github.com/bizlens/competitor-insights/internal/store"
	"github.com/bizlens/competitor-insights/pkg/perplexity"
	"github.com/bizlens/competitor-insights/pkg/serper"
)

// env bundles the wired pipeline for a command invocation.
type env struct {
	Store        store.Store
	Data         provider.DataProvider
	LLM          provider.LLMProvider
	Orchestrator *comparison.Orchestrator
}

// Close releases held resources.
func (e *env) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("failed to close store", zap.Error(err))
		}
	}
}

// initEnv builds the pipeline from configuration: store, data provider,
// LLM provider, and the orchestrator on top.
func initEnv(ctx context.Context) (*env, error) {
	retry := resilience.FromConfig(cfg.Retry.MaxAttempts, cfg.Retry.InitialBackoffMs)

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	data, err := initDataProvider(retry)
	if err != nil {
		if st != nil {
			st.Close() //nolint:errcheck
		}
		return nil, err
	}

	llm := initLLMProvider(retry)

	engine := scoring.NewEngine(scoring.Weights{
		PerBooleanField: cfg.Scoring.PerBooleanField,
		ReviewBonus:     cfg.Scoring.ReviewBonus,
		ImageBonus:      cfg.Scoring.ImageBonus,
	})

	var reports comparison.ReportStore
	if st != nil {
		reports = st
	}
	orchestrator := comparison.NewOrchestrator(data, llm, engine, reports, comparison.Config{
		CompetitorLimit:  cfg.Comparison.CompetitorLimit,
		FetchConcurrency: cfg.Comparison.FetchConcurrency,
		FetchTimeout:     secsToDuration(cfg.Comparison.FetchTimeoutSecs),
		AnalysisTimeout:  secsToDuration(cfg.Comparison.AnalysisTimeoutSecs),
	})

	zap.L().Info("pipeline initialized",
		zap.String("store", cfg.Store.Driver),
		zap.String("data_provider", data.Name()),
		zap.String("llm_provider", llm.Name()),
	)

	return &env{Store: st, Data: data, LLM: llm, Orchestrator: orchestrator}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		st, err := store.NewSQLite(cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close() //nolint:errcheck
			return nil, err
		}
		return st, nil
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close() //nolint:errcheck
			return nil, err
		}
		return st, nil
	case "none":
		return nil, nil
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func initDataProvider(retry resilience.RetryConfig) (provider.DataProvider, error) {
	switch cfg.Provider.Kind {
	case "serper":
		client := serper.NewClient(cfg.Serper.Key, serper.WithBaseURL(cfg.Serper.BaseURL))
		return provider.NewSerperDataProvider(client, cfg.Provider.Location, retry), nil
	default:
		return provider.NewMockDataProvider(cfg.Provider.MockStrict)
	}
}

func initLLMProvider(retry resilience.RetryConfig) provider.LLMProvider {
	switch cfg.LLM.Kind {
	case "perplexity":
		client := perplexity.NewClient(cfg.Perplexity.Key,
			perplexity.WithBaseURL(cfg.Perplexity.BaseURL),
			perplexity.WithModel(cfg.Perplexity.Model),
		)
		return provider.NewPerplexityLLMProvider(client, cfg.Perplexity.Model, retry)
	case "anthropic":
		return provider.NewAnthropicLLMProvider(cfg.Anthropic.Key, cfg.Anthropic.Model)
	default:
		return provider.NewMockLLMProvider()
	}
}

func secsToDuration(secs int) time.Duration {
	return time.Duration(secs) * time.Second
}
