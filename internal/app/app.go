// Package app wires configuration, logging and the domain services into a
// running process.
package app

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cronkeeper/internal/adapter/rest"
	"cronkeeper/internal/config"
	"cronkeeper/internal/discovery"
	"cronkeeper/internal/jobs"
	"cronkeeper/internal/platform/logger"
	"cronkeeper/internal/store"
)

// App wires application components.
type App struct {
	cfg   config.Config
	log   *slog.Logger
	store *store.Store
	jobs  *jobs.Service
}

// New creates a new App instance and loads configuration.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Options{
		Env:          cfg.Env,
		ConsoleLevel: cfg.Log.ConsoleLevel,
		FileLevel:    cfg.Log.FileLevel,
		File:         cfg.Log.File,
		App:          "cronkeeper",
	})

	a := &App{cfg: cfg, log: log}
	a.store = store.New(cfg.Crontab.Path, cfg.Crontab.BackupDir,
		store.WithLogger(log),
		store.WithRetention(cfg.Crontab.Retention),
	)
	a.jobs = jobs.NewService(a.store,
		jobs.WithLogger(log),
		jobs.WithCommandValidator(a.commandValidator),
	)
	return a, nil
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config { return a.cfg }

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.log }

// Store returns the crontab document store.
func (a *App) Store() *store.Store { return a.store }

// Jobs returns the job service.
func (a *App) Jobs() *jobs.Service { return a.jobs }

// Engine builds a discovery engine for the current script root. The root is
// read from the crontab on every call so an edit to the KOHA_CRON_PATH line
// takes effect without a restart; SCRIPT_ROOT from the environment is the
// fallback. Returns nil when no root is configured anywhere.
func (a *App) Engine() (*discovery.Engine, error) {
	root, ok, err := a.jobs.ScriptRoot()
	if err != nil {
		return nil, err
	}
	if !ok {
		root = a.cfg.Scripts.Root
	}
	if root == "" {
		return nil, nil
	}
	return discovery.New(root,
		discovery.WithAllowlist(a.cfg.Scripts.Allowlist),
		discovery.WithLogger(a.log),
	), nil
}

// commandValidator gates job commands against the discovered script set.
// With no script root configured every command is accepted.
func (a *App) commandValidator(command string) error {
	eng, err := a.Engine()
	if err != nil {
		return err
	}
	if eng == nil {
		return nil
	}
	_, err = eng.ValidateCommand(command)
	return err
}

// Serve runs the HTTP API until the context is cancelled or a signal
// arrives, then shuts the server down gracefully.
func (a *App) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go a.watchCrontab(ctx)

	srv := rest.NewServer(a.jobs, a.store, a.Engine, a.log)
	httpSrv := &http.Server{Addr: a.cfg.HTTP.Addr, Handler: srv.Router()}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http listening", slog.String("addr", a.cfg.HTTP.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// Close releases logger resources.
func (a *App) Close() {
	_ = logger.Close(a.log)
}
