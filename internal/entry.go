// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/browser"
	"golang.org/x/sync/errgroup"

	"github.com/starford/followup/internal/activity"
	"github.com/starford/followup/internal/api"
	"github.com/starford/followup/internal/mcpserver"
	"github.com/starford/followup/internal/migrate"
	"github.com/starford/followup/internal/projectservice"
	"github.com/starford/followup/internal/sse"
	"github.com/starford/followup/internal/storage"
	"github.com/starford/followup/internal/watch"
	"github.com/starford/followup/web"
)

// openBrowser is replaced in tests.
var openBrowser = browser.OpenURL

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", output: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// newLogger builds the structured JSON logger and installs it as default.
func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// openStore initialises the data file and migrates legacy task ids when the
// file already existed.
func openStore(ctx context.Context, cfg *Config, logger *slog.Logger) (*storage.JSONFile, error) {
	store, err := storage.NewJSONFile(cfg.Data.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	existed, err := store.Init(ctx)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	if existed {
		migrate.Run(ctx, store, logger)
	} else {
		logger.Info("created empty data file", slog.String("path", store.Path()))
	}
	return store, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(cfg, os.Stdout)

	logger.Info("Configuration loaded",
		slog.String("version", app.version),
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_path", cfg.Data.Path),
		slog.String("static_dir", cfg.Static.Dir),
		slog.String("activity_path", cfg.Activity.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// SSE broker.
	broker := sse.NewBroker(cfg.Events.Throttle)
	defer broker.Close()

	svcOpts := []projectservice.Option{
		projectservice.WithLogger(logger),
		projectservice.WithListener(broker.Listener()),
	}

	// Optional activity journal.
	var journal api.ActivityReader
	if cfg.Activity.Enabled() {
		j, err := activity.Open(cfg.Activity.Path)
		if err != nil {
			return fmt.Errorf("init activity journal: %w", err)
		}
		defer j.Close()
		journal = j
		svcOpts = append(svcOpts, projectservice.WithListener(j.Listener(logger)))
	}

	svc := projectservice.NewService(store, svcOpts...)
	apiRouter := api.NewRouter(svc, journal, broker)

	static, err := api.NewStaticHandler(cfg.Static.Dir, web.FS())
	if err != nil {
		return fmt.Errorf("init static files: %w", err)
	}

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := store.Load(r.Context()); err != nil {
			logger.Warn("readiness check failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api, the front end everywhere else.
	r.Mount("/api", apiRouter)
	r.Handle("/*", static)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the data file for edits made outside the server.
	g.Go(func() error {
		if err := watch.Watch(gCtx, store.Path(), store.LastSaved, logger, broker.PublishExternalChange); err != nil {
			logger.Warn("data file watcher disabled", slog.String("error", err.Error()))
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

	if cfg.App.OpenBrowser {
		g.Go(func() error {
			select {
			case <-time.After(cfg.App.BrowserDelay):
			case <-gCtx.Done():
				return nil
			}
			url := cfg.App.HTTP.BrowserURL()
			if err := openBrowser(url); err != nil {
				logger.Warn("open browser failed", slog.String("url", url), slog.String("error", err.Error()))
			}
			return nil
		})
	}

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

		logger.Info("Shutting down server...")

		// Ends open SSE streams so Shutdown does not wait on them.
		broker.Close()

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

// errShutdown cancels the group once the server has been shut down so the
// watcher and browser goroutines stop too.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr because
// stdout carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(cfg, os.Stderr)

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	svcOpts := []projectservice.Option{projectservice.WithLogger(logger)}
	if cfg.Activity.Enabled() {
		j, err := activity.Open(cfg.Activity.Path)
		if err != nil {
			return fmt.Errorf("init activity journal: %w", err)
		}
		defer j.Close()
		svcOpts = append(svcOpts, projectservice.WithListener(j.Listener(logger)))
	}

	srv := mcpserver.New(projectservice.NewService(store, svcOpts...), app.version)
	logger.Info("MCP server starting on stdio", slog.String("data_path", store.Path()))
	return srv.ServeStdio()
}

// RunMigrate runs the legacy task id migration once and reports the result.
func RunMigrate(ctx context.Context, opts ...Option) (migrate.Result, error) {
	app, err := newApplication(opts)
	if err != nil {
		return migrate.Result{}, err
	}
	cfg := app.config
	logger := newLogger(cfg, os.Stderr)

	store, err := storage.NewJSONFile(cfg.Data.Path)
	if err != nil {
		return migrate.Result{}, fmt.Errorf("init storage: %w", err)
	}
	if _, err := store.Init(ctx); err != nil {
		return migrate.Result{}, fmt.Errorf("init storage: %w", err)
	}

	res := migrate.Run(ctx, store, logger)
	if res.Err != nil {
		return res, res.Err
	}
	fmt.Fprintf(app.output, "%s: %d task id(s) rewritten, saved=%t\n", store.Path(), res.Rewritten, res.Saved)
	return res, nil
}
