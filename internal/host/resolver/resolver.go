// Package resolver coordinates the one-way transition of the process from a
// pre-warmed standby host to a host specialized for the deployed workload,
// and publishes whichever instance is currently valid to callers.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robbyt/go-loglater"

	"github.com/warmstand/warmstand/internal/bootstrap"
	"github.com/warmstand/warmstand/internal/errz"
	"github.com/warmstand/warmstand/internal/host"
	"github.com/warmstand/warmstand/internal/settings"
)

// EnvStandbyMode is the process-wide standby signal. It may only ever flip
// from "1" to unset/other, never back.
const EnvStandbyMode = "WARMSTAND_STANDBY_MODE"

// DefaultSpecializationInterval is how often the failsafe timer re-invokes
// EnsureInitialized while the process sits in standby mode.
const DefaultSpecializationInterval = 1 * time.Second

// StandbySignal reports whether the process is still in standby mode. It is
// read-only from the resolver's perspective: once it has reported false it
// must never report true again.
type StandbySignal func() bool

// EnvStandbySignal reads the standby latch from the environment.
func EnvStandbySignal() StandbySignal {
	return func() bool {
		return os.Getenv(EnvStandbyMode) == "1"
	}
}

// ManagerFactory builds a host manager for a derived configuration.
type ManagerFactory func(cfg *host.Config) (*host.Manager, error)

// instance pairs a host configuration with its manager. The pair is published
// through a single atomic pointer so readers never observe one without the
// other.
type instance struct {
	config  *host.Config
	manager *host.Manager
}

// Resolver holds at most one standby and at most one specialized host
// instance, and performs the standby-to-specialized transition under a
// single lock. Accessors read published instances without the lock.
type Resolver struct {
	standbySignal StandbySignal

	mu      sync.Mutex
	standby atomic.Pointer[instance]
	active  atomic.Pointer[instance]
	timer   *specializationTimer

	interval       time.Duration
	tmpRoot        string
	managerFactory ManagerFactory
	bootstrapFn    func(*slog.Logger)

	logger     *slog.Logger
	logHandler slog.Handler
	fallback   *loglater.LogCollector
	disposed   bool
}

// New creates a Resolver. The standby signal is required; everything else
// has defaults.
func New(signal StandbySignal, opts ...Option) (*Resolver, error) {
	if signal == nil {
		return nil, fmt.Errorf("standby signal cannot be nil")
	}

	r := &Resolver{
		standbySignal: signal,
		interval:      DefaultSpecializationInterval,
		tmpRoot:       os.TempDir(),
		bootstrapFn:   bootstrap.Apply,
		logHandler:    slog.Default().Handler(),
		logger:        slog.Default().WithGroup("resolver"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if r.managerFactory == nil {
		r.managerFactory = func(cfg *host.Config) (*host.Manager, error) {
			return host.NewManager(cfg, host.WithLogHandler(r.logHandler))
		}
	}

	// Retains log records emitted before any host sink exists, replayed into
	// the specialized host's sink after the transition.
	r.fallback = loglater.NewLogCollector(r.logHandler)

	return r, nil
}

// EnsureInitialized is the single entry point for both request-triggered and
// timer-triggered initialization. It is idempotent: under the lock it
// inspects the standby signal and the published instances, performs at most
// one lifecycle action, and otherwise does nothing.
func (r *Resolver) EnsureInitialized(ctx context.Context, s settings.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.disposed {
		return errz.ErrResolverDisposed
	}

	inStandby := r.standbySignal()

	switch {
	case !inStandby && r.active.Load() == nil:
		return r.specialize(ctx, s)

	case inStandby && r.standby.Load() == nil && r.active.Load() == nil:
		return r.warmStandby(ctx, s)
	}

	return nil
}

// specialize builds and publishes the specialized instance, then retires the
// standby instance and the failsafe timer. Called with the lock held.
func (r *Resolver) specialize(ctx context.Context, s settings.Settings) error {
	inst, err := r.startInstance(ctx, s, false)
	if err != nil {
		return err
	}
	r.active.Store(inst)
	r.logger.Info("Host specialized",
		"host_id", inst.config.ID,
		"script_root", inst.config.ScriptRoot,
		"functions", inst.manager.FunctionNames())

	// Early log records now have a durable home.
	if err := r.fallback.PlayLogs(inst.manager.LogHandler()); err != nil {
		r.logger.Warn("Failed to replay startup logs", "error", err)
	}

	go r.bootstrapFn(r.logger)

	if sb := r.standby.Swap(nil); sb != nil {
		r.retire(sb)
	}
	if r.timer != nil {
		r.timer.stop()
		r.timer = nil
	}

	return nil
}

// warmStandby builds and publishes the standby instance and arms the
// failsafe timer. Called with the lock held.
func (r *Resolver) warmStandby(ctx context.Context, s settings.Settings) error {
	standbySettings := settings.NewStandby(s, r.tmpRoot)
	inst, err := r.startInstance(ctx, standbySettings, true)
	if err != nil {
		return err
	}
	r.standby.Store(inst)
	r.logger.Info("Standby host warmed", "host_id", inst.config.ID)

	go r.bootstrapFn(r.logger)

	r.timer = newSpecializationTimer(r.interval, r.logger, func(tickCtx context.Context) {
		if err := r.EnsureInitialized(tickCtx, s); err != nil {
			r.logger.Error("Timer-triggered initialization failed", "error", err)
		}
	})
	r.timer.start()

	return nil
}

// startInstance derives a configuration and starts a manager for it. Nothing
// is published unless both succeed.
func (r *Resolver) startInstance(
	ctx context.Context,
	s settings.Settings,
	standby bool,
) (*instance, error) {
	cfg := host.NewConfig(s, standby)
	mgr, err := r.managerFactory(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create host manager: %w", err)
	}
	if err := mgr.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start host manager: %w", err)
	}
	return &instance{config: cfg, manager: mgr}, nil
}

// retire stops and disposes a superseded instance. Disposal problems are
// logged, never propagated: callers already bound to the new instance must
// not be disrupted.
func (r *Resolver) retire(inst *instance) {
	inst.manager.Stop()
	if err := inst.manager.Dispose(); err != nil {
		r.logger.Warn("Failed to dispose superseded host", "host_id", inst.config.ID, "error", err)
	}
}

// GetHostManager returns the specialized manager if one is published,
// otherwise initializes and returns whichever instance is now valid. Callers
// never wait for specialization here.
func (r *Resolver) GetHostManager(ctx context.Context, s settings.Settings) (*host.Manager, error) {
	if inst := r.active.Load(); inst != nil {
		return inst.manager, nil
	}

	if err := r.EnsureInitialized(ctx, s); err != nil {
		return nil, err
	}

	if inst := r.active.Load(); inst != nil {
		return inst.manager, nil
	}
	if inst := r.standby.Load(); inst != nil {
		return inst.manager, nil
	}
	return nil, fmt.Errorf("%w: no host instance available", errz.ErrHostNotReady)
}

// GetConfig returns the configuration of the currently valid instance, with
// the same active-or-standby policy as GetHostManager.
func (r *Resolver) GetConfig(ctx context.Context, s settings.Settings) (*host.Config, error) {
	if inst := r.active.Load(); inst != nil {
		return inst.config, nil
	}

	if err := r.EnsureInitialized(ctx, s); err != nil {
		return nil, err
	}

	if inst := r.active.Load(); inst != nil {
		return inst.config, nil
	}
	if inst := r.standby.Load(); inst != nil {
		return inst.config, nil
	}
	return nil, fmt.Errorf("%w: no host instance available", errz.ErrHostNotReady)
}

// LogHandler returns the current host's log sink when that host is ready,
// and otherwise a retaining fallback sink so no output is lost during
// startup.
func (r *Resolver) LogHandler(ctx context.Context, s settings.Settings) slog.Handler {
	mgr, err := r.GetHostManager(ctx, s)
	if err == nil && mgr.IsReady() {
		return mgr.LogHandler()
	}
	return r.fallback
}

// Dispose stops and disposes both instances and cancels the timer. The first
// call surfaces the first structural disposal failure; repeat calls are
// no-ops.
func (r *Resolver) Dispose() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.disposed {
		return nil
	}
	r.disposed = true

	if r.timer != nil {
		r.timer.stop()
		r.timer = nil
	}

	var disposeErr error
	for _, inst := range []*instance{r.active.Swap(nil), r.standby.Swap(nil)} {
		if inst == nil {
			continue
		}
		inst.manager.Stop()
		if err := inst.manager.Dispose(); err != nil {
			if disposeErr == nil {
				disposeErr = err
			} else {
				r.logger.Warn("Swallowing secondary disposal error",
					"host_id", inst.config.ID, "error", err)
			}
		}
	}

	return disposeErr
}

// String returns the name of this component.
func (r *Resolver) String() string {
	return "resolver.Resolver"
}
