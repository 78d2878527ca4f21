package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/gridclip/internal/clipboard"
	"github.com/JonMunkholm/gridclip/internal/config"
	"github.com/JonMunkholm/gridclip/internal/core"
	"github.com/JonMunkholm/gridclip/internal/fields"
	"github.com/JonMunkholm/gridclip/internal/logging"
	"github.com/JonMunkholm/gridclip/internal/metrics"
	"github.com/JonMunkholm/gridclip/internal/transfer"
	"github.com/JonMunkholm/gridclip/internal/web"
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
		"store", cfg.Store.Backend,
		"clipboard", cfg.Clipboard.Backend,
		"transfer_max_concurrent", cfg.Transfer.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	store, auditWriter, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	collector := metrics.New()

	loc, err := cfg.Clipboard.Location()
	if err != nil {
		slog.Error("invalid clipboard time zone", "error", err)
		os.Exit(1)
	}
	codec := fields.NewCodec(nil, loc)

	// Load table definitions
	watcher, err := core.NewSchemaWatcher(cfg.Schema.Path, codec.Registry(), slog.Default())
	if err != nil {
		slog.Error("failed to create schema watcher", "error", err)
		os.Exit(1)
	}
	watcher.OnReload(collector.SchemaReloaded)
	defs, err := watcher.Load()
	if err != nil {
		slog.Error("failed to load schema", "path", cfg.Schema.Path, "error", err)
		os.Exit(1)
	}

	if cfg.Store.SeedRows {
		seeded, err := core.SeedRows(ctx, store, defs)
		if err != nil {
			slog.Error("failed to seed rows", "error", err)
			os.Exit(1)
		}
		slog.Info("seed rows loaded", "rows", seeded)

		// Tables added by a later reload are seeded too.
		watcher.OnReload(func(_ int, err error) {
			if err != nil {
				return
			}
			if n, err := core.SeedRows(context.Background(), store, core.All()); err != nil {
				slog.Error("failed to seed reloaded tables", "error", err)
			} else if n > 0 {
				slog.Info("seed rows loaded", "rows", n)
			}
		})
	}

	if cfg.Schema.Watch {
		if err := watcher.Watch(); err != nil {
			slog.Error("failed to watch schema", "path", cfg.Schema.Path, "error", err)
			os.Exit(1)
		}
		defer watcher.Stop()
	}

	for _, group := range core.Groups() {
		slog.Debug("table group", "group", group, "tables", len(core.ByGroup(group)))
	}

	service, err := core.NewService(core.ServiceConfig{
		Store:   store,
		Audit:   core.NewAuditService(auditWriter, slog.Default()),
		Codec:   codec,
		Limiter: core.NewTransferLimiter(cfg.Transfer.MaxConcurrent, cfg.Transfer.MaxWaitTime),
		Metrics: collector,
		Timeout: cfg.Transfer.Timeout,
	})
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	// Cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	opts := web.Options{Metrics: collector}
	switch cfg.Clipboard.Backend {
	case config.ClipboardSession:
		opts.Sessions = clipboard.NewSessionStore(cfg.Clipboard.SessionTTL)
		go opts.Sessions.Run(jobCtx, cfg.Clipboard.SweepInterval)
	case config.ClipboardSystem:
		opts.System = systemClipboard()
	}

	go service.StartAuditRetention(jobCtx, core.RetentionConfig{
		RetentionDays: cfg.Audit.RetentionDays,
		CheckInterval: cfg.Audit.CheckInterval,
	})

	server := web.NewServer(service, cfg, opts)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.Limiter().Status(); status.Active > 0 {
			slog.Info("waiting for transfers to complete", "active", status.Active)
			if err := service.Limiter().WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("transfers did not complete in time", "error", err)
			} else {
				slog.Info("all transfers completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		return
	}
	slog.Info("server stopped")
}

// openStore returns the row store and audit writer for the configured
// backend, plus a function releasing their resources.
func openStore(ctx context.Context, cfg *config.Config) (core.RowStore, core.AuditWriter, func(), error) {
	if cfg.Store.Backend != config.StorePostgres {
		return core.NewMemoryStore(), core.NewMemoryAuditLog(cfg.Audit.MemoryEntries), func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, nil, nil, err
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	if err := core.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	return core.NewPgStore(pool), core.NewPgAuditWriter(pool), pool.Close, nil
}

// systemClipboard returns the host clipboard, or nil when the host has
// none. Requests then fall back to the request clipboard.
func systemClipboard() transfer.Clipboard {
	sys, err := clipboard.NewSystem()
	if err != nil {
		slog.Warn("system clipboard unavailable, using request clipboard", "error", err)
		return nil
	}
	return sys
}
