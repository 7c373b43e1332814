// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/api"
	"github.com/starford/ansuz/internal/docservice"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/summarize"
	"github.com/starford/ansuz/internal/touch"
)

// newLogger builds the structured JSON logger and installs it as the
// process default.
func newLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// newSummarizer builds the OpenAI summarizer from config and the
// OPENAI_API_KEY environment variable. Returns nil (no error) when the
// key is unset, so serve/mcp modes can run without summarization.
func newSummarizer(cfg *Config) (*summarize.Summarizer, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, nil
	}
	return summarize.New(summarize.Options{
		APIKey:      key,
		Model:       cfg.OpenAI.Model,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Temperature: cfg.OpenAI.Temperature,
		BaseURL:     cfg.OpenAI.BaseURL,
	})
}

// components holds the wired application core shared by serve and mcp modes.
type components struct {
	store *storage.FS
	db    *index.DB
	svc   *docservice.Service
}

func setup(cfg *Config, logger *slog.Logger) (*components, error) {
	if err := os.MkdirAll(cfg.Docs.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create docs dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Docs.Root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init metadata cache: %w", err)
	}

	summarizer, err := newSummarizer(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init summarizer: %w", err)
	}
	if summarizer == nil {
		logger.Info("OPENAI_API_KEY not set, summarization disabled")
	}

	svc := docservice.New(store, db, summarizer, store.Root(), cfg.Docs.IndexPath, cfg.Docs.Sections)
	return &components{store: store, db: db, svc: svc}, nil
}

// Run starts the HTTP server with the file watcher.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := newLogger(cfg)
	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("docs_root", cfg.Docs.Root),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := setup(cfg, logger)
	if err != nil {
		return err
	}
	defer c.db.Close()

	// Run initial sync so the cache reflects the tree before serving.
	if err := index.Sync(c.db, c.store, cfg.Docs.IndexPath, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	if _, err := c.svc.RegenerateIndex(); err != nil {
		logger.Warn("initial index generation failed", slog.String("error", err.Error()))
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	apiRouter := api.NewRouter(c.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, http.HandlerFunc(broker.ServeHTTP))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback and index regeneration.
	g.Go(func() error {
		return index.Watch(gCtx, c.db, c.store, c.store.Root(), cfg.Docs.IndexPath, logger,
			func(kind, path string) {
				broker.PublishDocEvent(kind, path)
			},
			func() {
				if _, err := c.svc.RegenerateIndex(); err != nil {
					logger.Error("index regeneration failed", slog.String("error", err.Error()))
				}
			})
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP server on stdin/stdout.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	// MCP talks JSON-RPC on stdout, so logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	c, err := setup(cfg, logger)
	if err != nil {
		return err
	}
	defer c.db.Close()

	if err := index.Sync(c.db, c.store, cfg.Docs.IndexPath, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	srv := mcpserver.New(c.svc, c.store, c.db, c.store.Root(), cfg.Docs.IndexPath, logger)
	logger.Info("MCP server starting on stdio")
	return srv.ServeStdio()
}

// RunIndex rescans the docs tree and regenerates the auto index once.
func RunIndex(cfg *Config) error {
	logger := newLogger(cfg)

	c, err := setup(cfg, logger)
	if err != nil {
		return err
	}
	defer c.db.Close()

	if err := index.Sync(c.db, c.store, cfg.Docs.IndexPath, logger); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if _, err := c.svc.RegenerateIndex(); err != nil {
		return fmt.Errorf("generate index: %w", err)
	}

	logger.Info("Index generated", slog.String("path", cfg.Docs.IndexPath))
	return nil
}

// RunSummarize summarizes one file, writing the summary next to it.
// Unlike serve mode, the file does not have to live under the docs root.
func RunSummarize(ctx context.Context, cfg *Config, file string) error {
	logger := newLogger(cfg)

	summarizer, err := newSummarizer(cfg)
	if err != nil {
		return err
	}
	if summarizer == nil {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}

	out, err := summarizer.File(ctx, file, cfg.Docs.SummarySuffix)
	if err != nil {
		return err
	}
	logger.Info("Summary written", slog.String("source", file), slog.String("summary", out))
	return nil
}

// RunTouch sets the `updated` field of the given files to today's date.
func RunTouch(cfg *Config, files []string) error {
	logger := newLogger(cfg)

	today := time.Now().Format("2006-01-02")
	results, err := touch.Files(files, today)
	for _, res := range results {
		switch {
		case res.Skipped:
			logger.Info("Skipped", slog.String("path", res.Path))
		case res.Changed:
			logger.Info("Updated", slog.String("path", res.Path))
		default:
			logger.Info("Unchanged", slog.String("path", res.Path))
		}
	}
	return err
}
