// Package app orchestrates the gateway's components: the HTTP server and
// the maintenance scheduler, with graceful shutdown on context
// cancellation.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/platepal/platepal/internal/config"
	"github.com/platepal/platepal/internal/gateway"
)

// App ties the gateway server and the scheduler into one lifecycle.
type App struct {
	logger    *slog.Logger
	cfg       *config.Config
	server    *gateway.Server
	scheduler *Scheduler
}

// New creates the application orchestrator.
func New(logger *slog.Logger, cfg *config.Config, server *gateway.Server, scheduler *Scheduler) *App {
	return &App{
		logger:    logger.With("component", "app"),
		cfg:       cfg,
		server:    server,
		scheduler: scheduler,
	}
}

// Run starts all components and blocks until the context is cancelled or
// a component fails. Shutdown drains in-flight requests before returning.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("Starting application...")

	// The scheduler starts before the listener so a start failure
	// returns immediately instead of leaving the server goroutine
	// running with nothing left to shut it down.
	if err := a.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	addr := fmt.Sprintf(":%d", a.cfg.Server.Port)

	g.Go(func() error {
		a.logger.Info("Starting gateway server", "addr", addr)

		if err := a.server.Listen(addr); err != nil {
			a.logger.Error("Gateway server stopped with error", "error", err)
			return fmt.Errorf("gateway server failed: %w", err)
		}
		a.logger.Info("Gateway server stopped.")
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("Shutdown signal received, stopping components...")

		if err := a.server.ShutdownWithTimeout(a.cfg.Server.ShutdownTimeout); err != nil {
			a.logger.Error("Error shutting down gateway server", "error", err)
		}
		if err := a.scheduler.Stop(); err != nil {
			a.logger.Error("Error stopping scheduler", "error", err)
		}

		return nil
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error("Application stopped due to error", "error", err)
		return err
	}

	a.logger.Info("Application stopped gracefully.")
	return nil
}
