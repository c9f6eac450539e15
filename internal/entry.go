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

	"github.com/ashval/inkweaver/internal/api"
	"github.com/ashval/inkweaver/internal/assistant"
	"github.com/ashval/inkweaver/internal/avatars"
	"github.com/ashval/inkweaver/internal/index"
	"github.com/ashval/inkweaver/internal/mcpserver"
	"github.com/ashval/inkweaver/internal/models"
	"github.com/ashval/inkweaver/internal/sse"
	"github.com/ashval/inkweaver/internal/storage"
	"github.com/ashval/inkweaver/internal/workspace"
)

// components are the long-lived pieces shared by every command.
type components struct {
	cfg      *Config
	logger   *slog.Logger
	ws       *workspace.Store
	db       *index.DB
	avatars  *avatars.Store
	ai       *assistant.Service
	dataFile string
}

func (c *components) Close() {
	if c.db != nil {
		_ = c.db.Close()
	}
}

// setup applies opts, installs the JSON logger and opens storage, the
// workspace, the search index and the avatar store.
func setup(opts []Option) (*components, error) {
	app := &application{logOutput: os.Stdout}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_dir", cfg.Storage.DataDir),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()),
		slog.Bool("ai_enabled", cfg.AI.Enabled()))

	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	dataFile, err := store.Path(models.KeyAppData)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	ws := workspace.Open(
		workspace.WithProvider(store),
		workspace.WithSyncer(storage.NoopSyncer{}),
		workspace.WithLogger(logger),
	)

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	av, err := avatars.NewStore(cfg.Storage.AvatarDir())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init avatars: %w", err)
	}

	c := &components{
		cfg:      cfg,
		logger:   logger,
		ws:       ws,
		db:       db,
		avatars:  av,
		dataFile: dataFile,
	}
	if cfg.AI.Enabled() {
		client, err := assistant.NewClient(context.Background(), cfg.AI.Client())
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		c.ai = assistant.NewService(ws, client, cfg.AI.Limits(), cfg.AI.DefaultInstruction, logger)
	} else {
		logger.Warn("AI API key not configured; assistant endpoints are disabled")
	}
	return c, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	c, err := setup(opts)
	if err != nil {
		return err
	}
	defer c.Close()

	cfg, logger := c.cfg, c.logger

	// SSE broker fed by every workspace change.
	broker := sse.NewBroker(cfg.Events.GraphThrottle, cfg.Events.KeepAlive)
	defer broker.Close()
	unsubscribe := c.ws.Subscribe(broker.PublishChange)
	defer unsubscribe()

	handlerOpts := []api.HandlerOption{
		api.WithIndex(c.db),
		api.WithAvatars(c.avatars),
		api.WithLogger(logger),
	}
	if c.ai != nil {
		handlerOpts = append(handlerOpts, api.WithAssistant(c.ai))
	}
	h := api.NewHandler(c.ws, handlerOpts...)
	apiRouter := api.NewRouter(h, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
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
		if err := c.db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Avatars are fetched by <img> tags, which cannot send a bearer token.
	r.Get(avatars.URLPrefix+"{filename}", api.NewAvatarHandler(c.ws, c.avatars).ServeFile)

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Open event streams end when the broker stops.
	httpServer.RegisterOnShutdown(broker.Close)

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Keep the search index in step with the workspace.
	g.Go(func() error {
		return index.Run(gCtx, c.db, c.ws, cfg.Events.IndexDebounce, logger)
	})

	// Pick up edits made to the envelope by another process.
	g.Go(func() error {
		err := index.Watch(gCtx, c.dataFile, c.ws, cfg.Events.IndexDebounce, logger, func() {
			broker.Publish(sse.Event{Type: sse.ExternalEvent, Data: map[string]string{}})
		})
		if err != nil {
			logger.Warn("file watcher unavailable", slog.String("error", err.Error()))
		}
		return nil
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
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...", slog.Int("sse_clients", broker.ClientCount()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group's context so the background loops stop
// once the HTTP server is down.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools over stdio until stdin closes or ctx is
// cancelled. The search index is synced before serving and kept in step
// while serving.
func RunMCP(ctx context.Context, opts ...Option) error {
	c, err := setup(opts)
	if err != nil {
		return err
	}
	defer c.Close()

	srv := mcpserver.New(c.ws, c.db,
		mcpserver.WithAvatars(c.avatars),
		mcpserver.WithLimits(c.cfg.AI.Limits()),
		mcpserver.WithLogger(c.logger),
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return index.Run(gCtx, c.db, c.ws, c.cfg.Events.IndexDebounce, c.logger)
	})
	g.Go(func() error {
		err := srv.ServeStdio()
		if err == nil {
			err = errShutdown
		}
		return err
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// Export writes the notes of a project (id or name; "" for every note) as
// Markdown files into dir and returns the number written.
func Export(ctx context.Context, project, dir string, opts ...Option) (int, error) {
	c, err := setup(opts)
	if err != nil {
		return 0, err
	}
	defer c.Close()

	n, err := ExportNotes(c.ws, project, dir)
	if err != nil {
		return n, err
	}
	c.logger.Info("Export finished", slog.Int("notes", n), slog.String("dir", dir))
	return n, ctx.Err()
}
