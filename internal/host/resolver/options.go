package resolver

import (
	"log/slog"
	"time"
)

// Option represents a functional option for configuring a Resolver.
type Option func(*Resolver) error

// WithLogHandler sets a custom slog handler for the Resolver instance.
func WithLogHandler(handler slog.Handler) Option {
	return func(r *Resolver) error {
		if handler != nil {
			r.logHandler = handler
			r.logger = slog.New(handler).WithGroup("resolver")
		}
		return nil
	}
}

// WithSpecializationInterval sets the failsafe timer period.
func WithSpecializationInterval(interval time.Duration) Option {
	return func(r *Resolver) error {
		if interval <= 0 {
			return nil // No-op if interval is not positive
		}
		r.interval = interval
		return nil
	}
}

// WithTempRoot overrides the temp root used to derive standby settings.
func WithTempRoot(dir string) Option {
	return func(r *Resolver) error {
		if dir != "" {
			r.tmpRoot = dir
		}
		return nil
	}
}

// WithManagerFactory overrides how host managers are constructed.
func WithManagerFactory(factory ManagerFactory) Option {
	return func(r *Resolver) error {
		if factory != nil {
			r.managerFactory = factory
		}
		return nil
	}
}

// WithBootstrap overrides the detached environment preparation step.
func WithBootstrap(fn func(*slog.Logger)) Option {
	return func(r *Resolver) error {
		if fn != nil {
			r.bootstrapFn = fn
		}
		return nil
	}
}
