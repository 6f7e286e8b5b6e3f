package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockdash/internal/common"
	"github.com/ternarybob/stockdash/internal/handlers"
	"github.com/ternarybob/stockdash/internal/interfaces"
	"github.com/ternarybob/stockdash/internal/services/analysis"
	"github.com/ternarybob/stockdash/internal/services/llm"
	"github.com/ternarybob/stockdash/internal/services/scheduler"
	"github.com/ternarybob/stockdash/internal/services/stocks"
	"github.com/ternarybob/stockdash/internal/services/watchlist"
	"github.com/ternarybob/stockdash/internal/storage/badger"
	"github.com/ternarybob/stockdash/internal/storage/jsonfile"
	"github.com/ternarybob/stockdash/internal/tushare"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Market data
	MarketData   *tushare.Client
	StockService *stocks.Service

	// Watchlist
	WatchlistService *watchlist.Service

	// Text generation and analysis tracks
	Generators      *llm.ProviderFactory
	AnalysisService *analysis.Service

	// Scheduled jobs; nil when the scheduler is disabled
	SchedulerService *scheduler.Service

	// HTTP handlers
	APIHandler       *handlers.APIHandler
	StockHandler     *handlers.StockHandler
	WatchlistHandler *handlers.WatchlistHandler
	AnalysisHandler  *handlers.AnalysisHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initScheduler(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Str("llm_provider", string(cfg.LLM.DefaultProvider)).
		Bool("scheduler", app.SchedulerService != nil).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase opens the Badger cache database
func (a *App) initDatabase() error {
	storageManager, err := badger.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

func (a *App) initServices() error {
	if a.Config.Tushare.Token == "" {
		a.Logger.Warn().Msg("Tushare token not configured, market data requests will fail")
	}

	// 1. Market data provider
	a.MarketData = tushare.NewClient(a.Config.Tushare.Token,
		tushare.WithBaseURL(a.Config.Tushare.BaseURL),
		tushare.WithTimeout(a.Config.TushareTimeout()),
		tushare.WithRateLimit(a.Config.Tushare.RateLimit),
		tushare.WithLogger(a.Logger),
	)

	// 2. Stock assembler over the daily snapshot cache
	a.StockService = stocks.NewService(a.MarketData, a.StorageManager.SnapshotStorage(), common.SystemClock, a.Logger)

	// 3. Watchlist (needs the stock service for names and snapshots)
	a.WatchlistService = watchlist.NewService(
		jsonfile.NewWatchlistStorage(a.Config.Watchlist.Path, a.Logger),
		a.StockService,
		a.Logger,
	)
	if err := a.WatchlistService.Load(context.Background()); err != nil {
		return fmt.Errorf("failed to load watchlist: %w", err)
	}
	a.StockService.SetTargetSource(a.WatchlistService)

	// 4. Text generators and the analysis orchestrator
	a.Generators = llm.NewProviderFactory(a.Config, a.Logger)
	cache := analysis.NewCache(a.StorageManager.AnalysisStorage(), common.SystemClock, a.Logger)
	a.AnalysisService = analysis.NewService(a.StockService, a.Generators, cache, a.Config.GeneratorTimeout(), a.Logger)

	a.Logger.Debug().
		Str("watchlist", a.Config.Watchlist.Path).
		Str("generator", a.Generators.Name()).
		Msg("Services initialized")

	return nil
}

// initScheduler registers the watchlist prewarm job when enabled
func (a *App) initScheduler() error {
	if !a.Config.Scheduler.Enabled {
		a.Logger.Debug().Msg("Scheduler disabled")
		return nil
	}

	a.SchedulerService = scheduler.NewService(a.Logger)
	if err := a.SchedulerService.RegisterJob(
		scheduler.PrewarmJobName,
		a.Config.Scheduler.PrewarmSchedule,
		"Refresh today's snapshot for every watchlist code",
		scheduler.NewPrewarmJob(a.WatchlistService, a.StockService, a.Logger),
	); err != nil {
		return err
	}

	return a.SchedulerService.Start()
}

func (a *App) initHandlers() {
	var jobs handlers.JobStatusSource
	if a.SchedulerService != nil {
		jobs = a.SchedulerService
	}

	a.APIHandler = handlers.NewAPIHandler(jobs, a.Logger)
	a.StockHandler = handlers.NewStockHandler(a.StockService, a.Logger)
	a.WatchlistHandler = handlers.NewWatchlistHandler(a.WatchlistService, a.Logger)
	a.AnalysisHandler = handlers.NewAnalysisHandler(a.AnalysisService, a.Logger)
}

// Close releases the scheduler, generator clients and the database
func (a *App) Close() error {
	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler service")
		}
	}

	if a.Generators != nil {
		if err := a.Generators.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close generator clients")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
