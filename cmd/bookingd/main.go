package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fleetdesk/booking-intake/internal/common"
	"github.com/fleetdesk/booking-intake/internal/export"
	"github.com/fleetdesk/booking-intake/internal/llm/openai"
	"github.com/fleetdesk/booking-intake/internal/lookup"
	"github.com/fleetdesk/booking-intake/internal/pipeline"
	"github.com/fleetdesk/booking-intake/internal/repository"
	"github.com/fleetdesk/booking-intake/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.Open(ctx, repository.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer repository.Close(pool, logger)

	if err := repository.HealthCheck(ctx, pool, cfg.Database.DialTimeout, logger); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}

	runs := repository.NewRunRepository(pool, logger)
	if err := runs.Migrate(ctx); err != nil {
		logger.Error("schema migration failed", "error", err)
		os.Exit(1)
	}

	tables, err := lookup.FromPaths(
		cfg.Lookup.CorporatesPath, cfg.Lookup.CitiesPath,
		cfg.Lookup.VehiclesPath, cfg.Lookup.RoutesPath,
	)
	if err != nil {
		logger.Error("lookup table load failed", "error", err)
		os.Exit(1)
	}

	var oracle *openai.Client
	if cfg.LLM.APIKey != "" {
		oracle = openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
	} else {
		logger.Warn("no OPENAI_API_KEY set, running on rule-based classification only")
	}

	stats := pipeline.NewStatsCollector()
	orchestrator := pipeline.NewOrchestrator(
		newClassifier(oracle, logger),
		newExtractor(oracle, logger),
		pipeline.NewValidator(tables, logger),
		stats,
		logger,
	)

	exporter := export.NewService(runs, logger)
	health := func(ctx context.Context) error {
		return repository.HealthCheck(ctx, pool, cfg.Database.DialTimeout, logger)
	}

	srv := server.New(orchestrator, runs, exporter, stats, health, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// newClassifier keeps the nil-oracle wiring in one place: a missing API key
// must produce a nil interface, not a typed nil.
func newClassifier(oracle *openai.Client, logger *slog.Logger) pipeline.Stage {
	if oracle == nil {
		return pipeline.NewClassifier(nil, nil, logger)
	}
	return pipeline.NewClassifier(oracle, nil, logger)
}

func newExtractor(oracle *openai.Client, logger *slog.Logger) pipeline.Stage {
	if oracle == nil {
		return pipeline.NewExtractor(nil, logger)
	}
	return pipeline.NewExtractor(oracle, logger)
}
