// Package server wires the lifecycle resolver, the route dispatcher, and the
// HTTP listener together under a supervisor.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robbyt/go-supervisor/runnables/httpserver"
	"github.com/robbyt/go-supervisor/supervisor"

	"github.com/warmstand/warmstand/internal/dispatch"
	"github.com/warmstand/warmstand/internal/host/resolver"
	"github.com/warmstand/warmstand/internal/settings"
)

// Run starts the warmstand server using the provided context, logger,
// settings file path, and HTTP listen address. It blocks until shutdown.
func Run(
	ctx context.Context,
	logger *slog.Logger,
	settingsPath string,
	listenAddr string,
) error {
	logHandler := logger.Handler()

	s, err := settings.FromFile(settingsPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	res, err := resolver.New(
		resolver.EnvStandbySignal(),
		resolver.WithLogHandler(logHandler),
	)
	if err != nil {
		return fmt.Errorf("failed to create lifecycle resolver: %w", err)
	}

	disp, err := dispatch.New(res, s, dispatch.WithLogHandler(logHandler))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	routes, err := buildRoutes(res, disp, s, logger)
	if err != nil {
		return fmt.Errorf("failed to build routes: %w", err)
	}

	configCallback := func() (*httpserver.Config, error) {
		return httpserver.NewConfig(listenAddr, routes)
	}
	httpRunner, err := httpserver.NewRunner(
		httpserver.WithConfigCallback(configCallback),
	)
	if err != nil {
		return fmt.Errorf("failed to create HTTP listener runner: %w", err)
	}

	super, err := supervisor.New(
		supervisor.WithContext(ctx),
		supervisor.WithLogHandler(logHandler),
		supervisor.WithRunnables(
			newLifecycleRunner(res, s, logger),
			httpRunner,
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create supervisor: %w", err)
	}
	if err := super.Run(); err != nil {
		return fmt.Errorf("failed to run server: %w", err)
	}

	logger.Info("Server shutdown complete")
	return nil
}
