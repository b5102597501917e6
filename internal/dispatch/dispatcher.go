// Package dispatch gates inbound requests on host readiness and resolves
// function descriptors by name against the current host's function table.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/warmstand/warmstand/internal/errz"
	"github.com/warmstand/warmstand/internal/host/resolver"
	"github.com/warmstand/warmstand/internal/settings"
)

// Dispatcher resolves inbound requests to execution handles. It reads from
// the resolver and never mutates its state.
type Dispatcher struct {
	resolver *resolver.Resolver
	settings settings.Settings

	// readyTimeout bounds the readiness wait. Zero means wait indefinitely.
	readyTimeout time.Duration

	logger *slog.Logger
}

// Option represents a functional option for configuring a Dispatcher.
type Option func(*Dispatcher) error

// WithLogHandler sets a custom slog handler for the Dispatcher instance.
func WithLogHandler(handler slog.Handler) Option {
	return func(d *Dispatcher) error {
		if handler != nil {
			d.logger = slog.New(handler).WithGroup("dispatch")
		}
		return nil
	}
}

// WithReadyTimeout bounds how long Dispatch waits for host readiness.
func WithReadyTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) error {
		if timeout > 0 {
			d.readyTimeout = timeout
		}
		return nil
	}
}

// New creates a Dispatcher bound to a resolver and the caller settings it
// passes through to the resolver's accessors.
func New(r *resolver.Resolver, s settings.Settings, opts ...Option) (*Dispatcher, error) {
	if r == nil {
		return nil, errors.New("resolver cannot be nil")
	}

	d := &Dispatcher{
		resolver: r,
		settings: s,
		logger:   slog.Default().WithGroup("dispatch"),
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	return d, nil
}

// Dispatch waits for the current host to report readiness, resolves the
// function by exact name match, and returns a context carrying the execution
// handle. A miss returns ErrFunctionNotFound.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	functionName string,
) (context.Context, *ExecutionHandle, error) {
	mgr, err := d.resolver.GetHostManager(ctx, d.settings)
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to resolve host: %w", err)
	}

	waitCtx := ctx
	if d.readyTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, d.readyTimeout)
		defer cancel()
	}
	if err := mgr.WaitReady(waitCtx); err != nil {
		return ctx, nil, err
	}

	fn, ok := mgr.Function(functionName)
	if !ok {
		d.logger.Debug("Function not found",
			"function", functionName,
			"host_id", mgr.ID())
		return ctx, nil, fmt.Errorf("%w: %q", errz.ErrFunctionNotFound, functionName)
	}

	handle := &ExecutionHandle{Manager: mgr, Function: fn}
	d.logger.Debug("Dispatch resolved",
		"function", functionName,
		"host_id", mgr.ID())

	return WithExecutionHandle(ctx, handle), handle, nil
}
