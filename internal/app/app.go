package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/airalabs/aira/internal/agent"
	"github.com/airalabs/aira/internal/common"
	"github.com/airalabs/aira/internal/eodhd"
	"github.com/airalabs/aira/internal/handlers"
	"github.com/airalabs/aira/internal/interfaces"
	"github.com/airalabs/aira/internal/monitor"
	"github.com/airalabs/aira/internal/newsapi"
	"github.com/airalabs/aira/internal/services/events"
	"github.com/airalabs/aira/internal/services/llm"
	storagebadger "github.com/airalabs/aira/internal/storage/badger"
	"github.com/airalabs/aira/internal/tools"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Oracle and tools
	CompletionService *llm.CompletionService
	ToolRegistry      *tools.Registry

	// Agent services
	Engine       *agent.Engine
	Evaluator    *agent.Evaluator
	Orchestrator *agent.Orchestrator

	// Monitor services
	MonitorEngine  *monitor.Engine
	MonitorService *monitor.Service

	// Event stream
	EventHub *events.Hub

	// HTTP handlers
	AnalysisHandler *handlers.AnalysisHandler
	MonitorHandler  *handlers.MonitorHandler
	AlertHandler    *handlers.AlertHandler
	StatusHandler   *handlers.StatusHandler
}

// New wires the full application from configuration. Components are
// constructed bottom-up: storage, oracle, sources, tools, agent,
// monitor, then HTTP handlers.
func New(ctx context.Context, config *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: config,
		Logger: logger,
	}

	storageManager, err := storagebadger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.StorageManager = storageManager

	completion, err := llm.NewCompletionService(config, storageManager.KeyValue(), logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize completion service: %w", err)
	}
	a.CompletionService = completion

	newsSource, finSource, err := a.buildSources(ctx)
	if err != nil {
		completion.Close()
		storageManager.Close()
		return nil, err
	}

	registry := tools.NewRegistry(logger)
	fastModel := completion.Factory().GetFastModel(llm.ProviderType(config.LLM.DefaultProvider))
	toolset := []interfaces.Tool{
		tools.NewNewsSearchTool(newsSource, storageManager.Articles(), config.Analysis.DaysBack, config.Analysis.MaxArticles, logger),
		tools.NewFinancialDataTool(finSource, logger),
		tools.NewSentimentTool(completion, fastModel, logger),
		tools.NewTickerExtractTool(completion, fastModel, logger),
	}
	for _, tool := range toolset {
		if err := registry.Register(tool); err != nil {
			completion.Close()
			storageManager.Close()
			return nil, fmt.Errorf("failed to register tool: %w", err)
		}
	}
	a.ToolRegistry = registry

	a.EventHub = events.NewHub(logger)

	a.Engine = agent.NewEngine(completion, registry, logger)
	a.Evaluator = agent.NewEvaluator(completion, &config.Reflection, fastModel, logger)
	a.Orchestrator = agent.NewOrchestrator(a.Engine, a.Evaluator, storageManager.Jobs(), config, a.EventHub, logger)

	a.MonitorEngine = monitor.NewEngine(
		newsSource,
		storageManager.Monitors(),
		storageManager.Alerts(),
		a.Orchestrator,
		&config.Monitor,
		a.EventHub,
		logger,
	)
	a.MonitorService = monitor.NewService(a.MonitorEngine, storageManager.Monitors(), &config.Monitor, logger)

	a.AnalysisHandler = handlers.NewAnalysisHandler(a.Orchestrator, storageManager.Jobs(), logger)
	a.MonitorHandler = handlers.NewMonitorHandler(a.MonitorService, logger)
	a.AlertHandler = handlers.NewAlertHandler(storageManager.Alerts(), logger)
	a.StatusHandler = handlers.NewStatusHandler(logger)

	logger.Info().Msg("Application initialized")

	return a, nil
}

// buildSources resolves API keys and constructs the news and financial
// data clients. Keys resolve KV-first with config/env fallback.
func (a *App) buildSources(ctx context.Context) (interfaces.NewsSource, interfaces.FinancialSource, error) {
	kv := a.StorageManager.KeyValue()

	newsKey, err := common.ResolveAPIKey(ctx, kv, "newsapi_api_key", a.Config.News.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("news source unavailable: %w", err)
	}

	eodhdKey, err := common.ResolveAPIKey(ctx, kv, "eodhd_api_key", a.Config.EODHD.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("financial source unavailable: %w", err)
	}

	newsTimeout := 30 * time.Second
	if parsed, err := time.ParseDuration(a.Config.News.Timeout); err == nil {
		newsTimeout = parsed
	}

	newsClient := newsapi.NewClient(newsKey,
		newsapi.WithBaseURL(a.Config.News.BaseURL),
		newsapi.WithHTTPClient(&http.Client{Timeout: newsTimeout}),
		newsapi.WithLogger(a.Logger),
	)

	eodhdClient := eodhd.NewClient(eodhdKey,
		eodhd.WithBaseURL(a.Config.EODHD.BaseURL),
		eodhd.WithRateLimit(a.Config.EODHD.RateLimit),
		eodhd.WithLogger(a.Logger),
	)

	return newsapi.NewSource(newsClient), eodhd.NewSource(eodhdClient), nil
}

// StartMonitors restores persisted monitors and starts the scheduler
func (a *App) StartMonitors(ctx context.Context) error {
	return a.MonitorService.Start(ctx)
}

// Shutdown stops background services and closes storage
func (a *App) Shutdown() {
	a.Logger.Info().Msg("Shutting down application")

	if a.MonitorService != nil {
		a.MonitorService.Stop()
	}
	if a.CompletionService != nil {
		a.CompletionService.Close()
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
	}
}
