// Package server запускает эталонный сервер синхронизации.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/exp/slog"

	"salesync/internal/app/server/api"
	"salesync/internal/app/server/config"
	"salesync/internal/domain/session"
	"salesync/internal/infrastructure/storage/memory"
	"salesync/internal/infrastructure/storage/postgres"
)

type App struct {
	cfg     *config.Config
	log     *slog.Logger
	handler http.Handler
	closer  io.Closer
}

// New выбирает хранилище: PostgreSQL при заданном DATABASE_URI, иначе память
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	deps := api.Deps{
		Sessions: session.NewService(cfg.Auth.Secret, cfg.Auth.TokenTTL, log),
	}

	var closer io.Closer
	if cfg.DB.DatabaseURI != "" {
		storage, err := postgres.New(ctx, cfg.DB.DatabaseURI, cfg.DB.Migrations)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		deps.Users = postgres.NewUserRepository(storage.Pool(), log)
		deps.Datasets = postgres.NewDatasetRepository(storage.Pool(), log)
		deps.Storage = storage
		closer = storage
		log.Info("using postgres storage")
	} else {
		deps.Users = memory.NewUserRepository()
		deps.Datasets = memory.NewDatasetRepository()
		log.Warn("DATABASE_URI is empty, data is kept in memory")
	}

	return &App{
		cfg:     cfg,
		log:     log,
		handler: api.New(deps, log),
		closer:  closer,
	}, nil
}

// Handler нужен тестам, поднимающим сервер через httptest
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run обслуживает запросы до отмены ctx, затем корректно останавливается
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Server.RunAddress)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.Server.RunAddress, err)
	}
	return a.Serve(ctx, ln)
}

func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("starting HTTP server", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	a.close()
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	a.log.Info("server stopped")
	return nil
}

func (a *App) close() {
	if a.closer == nil {
		return
	}
	if err := a.closer.Close(); err != nil {
		a.log.Error("close storage", "error", err)
	}
}
