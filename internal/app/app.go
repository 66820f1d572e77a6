// Package app assembles a Deren instance from configuration. Both binaries
// start here.
package app

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/agenthands/deren/internal/config"
	"github.com/agenthands/deren/internal/core"
	"github.com/agenthands/deren/internal/core/graph"
	"github.com/agenthands/deren/internal/core/mission"
	"github.com/agenthands/deren/internal/driver"
	"github.com/agenthands/deren/internal/llm"
	"github.com/agenthands/deren/internal/metrics"
	"github.com/agenthands/deren/internal/store"
	"github.com/agenthands/deren/internal/tools"
)

// App owns a Deren and the external clients behind it.
type App struct {
	Deren   *core.Deren
	Tools   *tools.Registry
	Config  *config.Config
	closers []func(context.Context) error
	logger  *zap.Logger
}

// New connects to the configured LLM provider and Memgraph, when set, and
// falls back to simulated tools and an in-memory graph otherwise.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, logger: logger}

	collector := metrics.NewCollector(cfg.Server.Namespace)

	llmClient, embedder, err := llm.NewClient(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	if c, ok := llmClient.(io.Closer); ok {
		a.closers = append(a.closers, func(context.Context) error { return c.Close() })
	}

	var repo *store.GraphRepository
	if cfg.Memgraph.URI != "" {
		d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password, logger)
		if err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("failed to connect to Memgraph: %w", err)
		}
		a.closers = append(a.closers, d.Close)
		if err := d.BuildIndices(ctx); err != nil {
			logger.Warn("Failed to build indices", zap.Error(err))
		}
		repo = store.NewGraphRepository(d, cfg.Memgraph.Map, logger)
	}

	registry := tools.NewRegistry(cfg.Breaker, logger)
	registry.SetObserver(collector.ObserveTool)
	providers := tools.Providers{LLM: llmClient, Embedder: embedder}
	if repo != nil {
		providers.Saver = repo
	}
	if err := tools.RegisterDefaults(registry, cfg.Tools, cfg.Mission.ToolDelay.Duration, providers); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	a.Tools = registry

	orch := mission.NewOrchestrator(registry, logger)
	orch.PhaseDelay = cfg.Mission.PhaseDelay.Duration
	orch.StepDelay = cfg.Mission.StepDelay.Duration
	if cfg.Mission.Planner == "llm" {
		if llmClient == nil {
			logger.Warn("LLM planner requested without an LLM provider, using static plan")
		} else {
			orch.Planner = mission.NewLLMPlanner(llmClient, cfg.Mission.PlanPrompt, logger)
		}
	}

	var graphRepo core.GraphRepository
	if repo != nil {
		graphRepo = repo
	}
	a.Deren = core.NewDeren(graph.NewStore(logger), orch, graphRepo, collector, logger)

	if cfg.Server.SeedDemo {
		if err := a.Deren.Seed(); err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("failed to seed demo graph: %w", err)
		}
	}

	logger.Info("DEREN ready",
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.Bool("memgraph", repo != nil),
		zap.Strings("tools", registry.Names()),
	)
	return a, nil
}

// Close releases external clients in reverse order of creation.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
