package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-staffing/pkg/cache"
	"github.com/ekaya-inc/ekaya-staffing/pkg/config"
	"github.com/ekaya-inc/ekaya-staffing/pkg/database"
	"github.com/ekaya-inc/ekaya-staffing/pkg/handlers"
	"github.com/ekaya-inc/ekaya-staffing/pkg/llm"
	"github.com/ekaya-inc/ekaya-staffing/pkg/logging"
	"github.com/ekaya-inc/ekaya-staffing/pkg/mcp"
	"github.com/ekaya-inc/ekaya-staffing/pkg/mcp/tools"
	"github.com/ekaya-inc/ekaya-staffing/pkg/middleware"
	"github.com/ekaya-inc/ekaya-staffing/pkg/repositories"
	"github.com/ekaya-inc/ekaya-staffing/pkg/retry"
	"github.com/ekaya-inc/ekaya-staffing/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	seedPath := flag.String("seed", "", "import a YAML roster into PostgreSQL before serving (store.backend=postgres only)")
	flag.Parse()

	cfg, err := config.LoadFile(*configPath, Version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, *seedPath, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg *config.Config, seedPath string, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("store", cfg.Store.Backend),
		zap.String("cache", cfg.Allocation.CacheBackend),
		zap.Bool("llm_enabled", cfg.LLM.Enabled),
		zap.Bool("mcp_enabled", cfg.MCP.Enabled),
	)

	employees, projects, closeStore, err := openStore(ctx, cfg, seedPath, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	proposalCache, cacheReady, closeCache, err := openCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	completer, err := openCompleter(cfg, logger)
	if err != nil {
		return err
	}

	normalizer := services.NewDemandNormalizer(logger)
	resolver := services.NewCandidateResolver(nil)
	ranker := services.NewCandidateRanker(completer, logger)
	engine := services.NewAllocationEngine(normalizer, resolver, ranker, proposalCache, logger)
	router := services.NewIntentRouter(engine, resolver, ranker,
		services.NewHeadcountRecommender(completer, logger),
		services.NewProposalExplainer(completer, logger),
		logger)
	assistant := services.NewStaffingAssistant(services.StaffingAssistantDeps{
		Employees:  employees,
		Projects:   projects,
		Engine:     engine,
		Normalizer: normalizer,
		Extractor:  services.NewIntentExtractor(completer, logger),
		Router:     router,
		Analysis:   services.NewAnalysisService(completer, logger),
		Undo:       services.NewUndoLog(cfg.Allocation.UndoDepth),
	}, logger)
	orchestrator := services.NewOrchestrator(completer, services.NewDemandParser(completer, logger), assistant, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).
		WithCheck("store", func(ctx context.Context) error {
			_, err := employees.List(ctx)
			return err
		}).
		WithCheck("cache", cacheReady).
		RegisterRoutes(mux)
	handlers.NewStaffingHandler(assistant, orchestrator, logger).RegisterRoutes(mux)

	if cfg.MCP.Enabled {
		mcpServer := mcp.NewServer("ekaya-staffing", cfg.Version, logger)
		tools.RegisterHealthTool(mcpServer.MCP(), tools.HealthInfo{
			Version:    cfg.Version,
			LLMEnabled: completer != nil,
			Store:      cfg.Store.Backend,
		})
		toolDeps := &tools.StaffingToolDeps{Assistant: assistant, Logger: logger.Named("mcp-tools")}
		if completer != nil {
			toolDeps.Orchestrator = orchestrator
		}
		tools.RegisterStaffingTools(mcpServer.MCP(), toolDeps)
		mux.Handle("/mcp", middleware.MCPRequestLogger(logger.Named("mcp-http"))(mcpServer.NewStreamableHTTPServer()))
	}

	srv := &http.Server{
		Addr:              cfg.BindAddr + ":" + cfg.Port,
		Handler:           middleware.RequestLogger(logger.Named("http"))(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting ekaya-staffing", zap.String("addr", srv.Addr), zap.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore returns the roster stores for the configured backend and a close func.
func openStore(ctx context.Context, cfg *config.Config, seedPath string, logger *zap.Logger) (repositories.EmployeeStore, repositories.ProjectStore, func(), error) {
	if cfg.Store.Backend == "fixture" {
		if seedPath != "" {
			logger.Warn("Ignoring -seed; it only applies to store.backend=postgres")
		}
		store := repositories.NewFixtureStore(cfg.Store.FixturePath)
		logger.Info("Serving roster from fixture", zap.String("path", cfg.Store.FixturePath))
		return store.Employees(), store.Projects(), func() {}, nil
	}

	dbCfg := database.ConfigFrom(&cfg.Database)
	db, err := retry.DoWithResult(ctx, retry.ExponentialConfig(), func() (*database.DB, error) {
		return database.NewConnection(ctx, dbCfg)
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to %s: %s", logging.SanitizeConnectionString(dbCfg.URL), logging.SanitizeError(err))
	}

	if err := database.Migrate(dbCfg.URL, cfg.Store.MigrationsPath, logger); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("migrate database: %w", err)
	}

	if seedPath != "" {
		roster, err := repositories.LoadRoster(seedPath)
		if err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		if err := repositories.ImportRoster(ctx, db, roster); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("seed roster: %w", err)
		}
		logger.Info("Seeded roster",
			zap.String("path", seedPath),
			zap.Int("employees", len(roster.Employees)),
			zap.Int("projects", len(roster.Projects)))
	}

	return repositories.NewEmployeeRepository(db), repositories.NewProjectRepository(db), db.Close, nil
}

// openCache returns the proposal cache for the configured backend along with
// its readiness check.
func openCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (cache.AllocationCache, handlers.ReadinessCheck, func(), error) {
	if cfg.Allocation.CacheBackend != "redis" {
		memory := cache.NewMemoryCache(cfg.Allocation.CacheTTL(), cfg.Allocation.CacheMaxEntries, logger)
		return memory, func(context.Context) error { return nil }, func() {}, nil
	}

	client, err := database.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr(), err)
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
	return cache.NewRedisCache(client, cfg.Allocation.CacheTTL(), logger), database.RedisPing(client), closeFn, nil
}

// openCompleter returns nil when the completion service is disabled; every
// service falls back to its deterministic path in that case.
func openCompleter(cfg *config.Config, logger *zap.Logger) (llm.TextCompleter, error) {
	if !cfg.LLM.Enabled {
		logger.Info("Completion service disabled; using deterministic ranking only")
		return nil, nil
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = cfg.LLM.MaxRetries
	retryCfg.InitialDelay = cfg.LLM.RetryInitialDelay()

	breaker := llm.NewCircuitBreaker(llm.CircuitBreakerConfig{
		Threshold:  cfg.LLM.CircuitThreshold,
		ResetAfter: cfg.LLM.CircuitReset(),
	})

	completer, err := llm.NewTextCompleter(&llm.Config{
		Provider:    cfg.LLM.Provider,
		Endpoint:    cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout(),
	}, retryCfg, breaker, logger)
	if err != nil {
		return nil, fmt.Errorf("create completion client: %w", err)
	}
	return completer, nil
}
