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

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/schemaform/internal/config"
	"github.com/JonMunkholm/schemaform/internal/core"
	"github.com/JonMunkholm/schemaform/internal/logging"
	"github.com/JonMunkholm/schemaform/internal/seed"
	"github.com/JonMunkholm/schemaform/internal/store"
	"github.com/JonMunkholm/schemaform/internal/store/postgres"
	"github.com/JonMunkholm/schemaform/internal/suggest"
	"github.com/JonMunkholm/schemaform/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"store", cfg.Store.Backend,
		"remote_suggest", cfg.Suggest.URL != "",
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("configuration", "config", cfg.String())

	ctx := context.Background()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	var suggester core.Suggester = suggest.NewHeuristic()
	if cfg.Suggest.URL != "" {
		suggester = suggest.NewClient(cfg.Suggest.URL, cfg.Suggest.Timeout)
	}

	service := core.NewService(st, suggester, core.ServiceConfig{
		PageSize:       cfg.Table.PageSize,
		SuggestTimeout: cfg.Suggest.Timeout,
		MaxSuggestions: cfg.Suggest.MaxResults,
		AllowReset:     cfg.Store.AllowReset,
	})

	if cfg.Seed.File != "" {
		if err := applySeed(ctx, service, cfg.Seed.File); err != nil {
			slog.Error("failed to apply schema seed", "file", cfg.Seed.File, "error", err)
			os.Exit(1)
		}
	}

	server := web.NewServer(service, cfg)

	// Graceful shutdown. done closes once Shutdown has returned, so the store
	// is not released while requests are still running.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		closeStore()
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}

// openStore builds the configured backend. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config) (core.Store, func(), error) {
	if cfg.Store.Backend != config.BackendPostgres {
		slog.Info("using in-memory store; data is lost on restart")
		return store.New(), func() {}, nil
	}

	if err := postgres.Migrate(cfg.Database.URL); err != nil {
		return nil, nil, err
	}

	pool, err := postgres.Open(ctx, postgres.PoolConfig{
		URL:      cfg.Database.URL,
		MaxConns: int32(cfg.Database.MaxConns),
		MinConns: int32(cfg.Database.MinConns),
	})
	if err != nil {
		return nil, nil, err
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	return postgres.New(pool), pool.Close, nil
}

// applySeed replaces the schema with the one in path.
func applySeed(ctx context.Context, service *core.Service, path string) error {
	schema, err := seed.Load(path)
	if err != nil {
		return err
	}

	res := service.UpdateSchema(ctx, schema)
	if !res.Success {
		return errors.New(res.Error)
	}
	slog.Info("schema seed applied", "file", path, "fields", len(schema))
	return nil
}
