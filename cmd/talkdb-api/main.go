package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talkdb/talkdb/internal/api"
	"github.com/talkdb/talkdb/internal/api/uistatic"
	"github.com/talkdb/talkdb/internal/assist"
	"github.com/talkdb/talkdb/internal/auth"
	"github.com/talkdb/talkdb/internal/blog"
	"github.com/talkdb/talkdb/internal/config"
	"github.com/talkdb/talkdb/internal/nl2sql"
	"github.com/talkdb/talkdb/internal/observability"
	"github.com/talkdb/talkdb/internal/query"
	"github.com/talkdb/talkdb/internal/query/sqlengine"
	"github.com/talkdb/talkdb/internal/store"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to read .env", slog.Any("error", err))
		os.Exit(1)
	}
	cfg, err := config.LoadFromEnv("talkdb-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)
	dialect, err := store.Lookup(cfg.Database.Driver)
	if err != nil {
		logger.Error("unsupported database driver", slog.Any("error", err))
		os.Exit(1)
	}
	policy, err := query.ParsePolicy(cfg.Query.Policy)
	if err != nil {
		logger.Error("invalid query policy", slog.Any("error", err))
		os.Exit(1)
	}

	translator, err := nl2sql.NewOpenAITranslator(nl2sql.OpenAIConfig{
		BaseURL:     cfg.AI.BaseURL,
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.Timeout,
	})
	if err != nil {
		logger.Error("failed to initialize query translator", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.AI.APIKey == "" {
		logger.Warn("no model api key configured; translate requests will fail until one is set")
	}

	engine := sqlengine.NewEngine(dialect, cfg.Database.DSN, policy, cfg.Query.RowLimit, logger)
	shell := assist.NewShell(translator, engine, logger)
	shell.Schema = blog.SchemaContext
	deps := api.Dependencies{
		Logger:            logger,
		Readiness:         api.CombineReadinessChecks(api.CheckDatabase(dialect, cfg.Database.DSN)),
		DependencyTimeout: 2 * time.Second,
		Translator:        translator,
		QueryEngine:       engine,
		Shell:             shell,
		Schema:            shell.Schema,
		UI:                uistatic.Handler(),
	}
	if validator := auth.NewStaticKeys(cfg.Auth.APIKey); validator != nil {
		deps.AuthMiddleware = auth.Middleware(logger, validator)
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server",
			slog.String("addr", cfg.HTTP.Address),
			slog.String("driver", dialect.Name),
			slog.String("policy", string(policy)),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
