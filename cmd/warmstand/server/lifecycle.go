package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robbyt/go-supervisor/supervisor"

	"github.com/warmstand/warmstand/internal/host/resolver"
	"github.com/warmstand/warmstand/internal/settings"
)

// Interface guard
var _ supervisor.Runnable = (*lifecycleRunner)(nil)

// lifecycleRunner owns the resolver's process lifecycle: it triggers the
// first initialization at boot (so a standby host is warm before any request
// arrives) and disposes the resolver on shutdown.
type lifecycleRunner struct {
	res      *resolver.Resolver
	settings settings.Settings
	logger   *slog.Logger
}

func newLifecycleRunner(
	res *resolver.Resolver,
	s settings.Settings,
	logger *slog.Logger,
) *lifecycleRunner {
	return &lifecycleRunner{
		res:      res,
		settings: s,
		logger:   logger.WithGroup("lifecycle"),
	}
}

// Run initializes the resolver and blocks until the context is cancelled.
func (l *lifecycleRunner) Run(ctx context.Context) error {
	if err := l.res.EnsureInitialized(ctx, l.settings); err != nil {
		return fmt.Errorf("initial host warm-up failed: %w", err)
	}

	<-ctx.Done()
	return nil
}

// Stop disposes the resolver and both host instances it owns.
func (l *lifecycleRunner) Stop() {
	if err := l.res.Dispose(); err != nil {
		l.logger.Error("Resolver disposal failed", "error", err)
	}
}

// String returns the name of this runnable component.
func (l *lifecycleRunner) String() string {
	return "server.lifecycleRunner"
}
