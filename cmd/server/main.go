package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/JonMunkholm/coverdesk/internal/config"
	"github.com/JonMunkholm/coverdesk/internal/core"
	_ "github.com/JonMunkholm/coverdesk/internal/core/entities" // Register all entities
	"github.com/JonMunkholm/coverdesk/internal/logging"
	"github.com/JonMunkholm/coverdesk/internal/metrics"
	"github.com/JonMunkholm/coverdesk/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"api", cfg.API.BaseURL,
		"history_db", cfg.Database.Enabled(),
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	ctx := context.Background()

	var history core.HistoryStore
	if cfg.Database.Enabled() {
		pool, err := connectDB(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to history database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pg, err := core.NewPostgresHistory(ctx, pool)
		if err != nil {
			slog.Error("failed to prepare history table", "error", err)
			os.Exit(1)
		}
		history = pg
	} else {
		slog.Info("no DATABASE_URL set, keeping import history in memory",
			"max_entries", cfg.History.MaxEntries)
	}

	service := core.NewService(cfg, history, m)

	slog.Info("entities registered",
		"count", core.Count(),
		"groups", len(core.Groups()),
	)
	for _, group := range core.Groups() {
		slog.Debug("entity group", "group", group, "entities", len(core.ByGroup(group)))
	}

	server := web.NewServer(service, cfg, reg, m)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	if _, err := core.StartHistoryPruner(jobCtx, service.History(), core.PruneConfig{
		Schedule:  cfg.History.PruneSchedule,
		Retention: cfg.History.Retention,
	}); err != nil {
		slog.Error("failed to start history pruner", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let in-flight imports reach the backend before closing.
		if status := service.UploadLimiterStatus(); status.Active > 0 {
			slog.Info("waiting for uploads to complete", "active", status.Active)
			if err := service.WaitForUploads(shutdownCtx); err != nil {
				slog.Warn("uploads did not complete in time", "error", err)
			} else {
				slog.Info("all uploads completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		cancelJobs()
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// connectDB opens and verifies the history database pool.
func connectDB(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to history database", "name", strings.TrimPrefix(u.Path, "/"))
	}
	return pool, nil
}
