package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/warmstand/warmstand/internal/errz"
	"github.com/warmstand/warmstand/internal/host/finitestate"
	"github.com/warmstand/warmstand/internal/logging"
)

// Manager wraps one running host instance: its configuration, function
// table, log sink, and readiness state. The lifecycle resolver is the only
// component that starts, stops, or disposes a Manager.
type Manager struct {
	config *Config
	fsm    finitestate.Machine
	table  *Table

	logger      *slog.Logger
	baseHandler slog.Handler
	hostHandler slog.Handler
	logCloser   io.Closer

	mutex       sync.Mutex
	disposeOnce sync.Once
}

// Option configures a Manager.
type Option func(*Manager) error

// WithLogHandler sets a custom slog handler for the Manager instance.
func WithLogHandler(handler slog.Handler) Option {
	return func(m *Manager) error {
		if handler != nil {
			m.baseHandler = handler
			m.logger = slog.New(handler).WithGroup("host.Manager")
		}
		return nil
	}
}

// NewManager creates a Manager for the given configuration. The instance is
// inert until Start is called.
func NewManager(config *Config, opts ...Option) (*Manager, error) {
	if config == nil {
		return nil, errors.New("host config cannot be nil")
	}

	m := &Manager{
		config:      config,
		table:       NewTable(),
		baseHandler: slog.Default().Handler(),
		logger:      slog.Default().WithGroup("host.Manager"),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	m.logger = m.logger.With("host_id", config.ID, "standby", config.Standby)

	machine, err := finitestate.New(m.logger.WithGroup("fsm").Handler())
	if err != nil {
		return nil, fmt.Errorf("failed to create FSM: %w", err)
	}
	m.fsm = machine

	return m, nil
}

// Start brings the host instance to readiness: it materializes the root
// directories, opens the host log sink, and compiles the function table.
// Any failure leaves the instance in the Error state and propagates.
func (m *Manager) Start(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := m.fsm.Transition(finitestate.StatusBooting); err != nil {
		return fmt.Errorf("%w: %w", errz.ErrHostStartFailed, err)
	}

	if err := m.start(); err != nil {
		if stateErr := m.fsm.SetState(finitestate.StatusError); stateErr != nil {
			m.logger.Error("Failed to set error state", "error", stateErr)
		}
		return fmt.Errorf("%w: %w", errz.ErrHostStartFailed, err)
	}

	if err := m.fsm.Transition(finitestate.StatusRunning); err != nil {
		return fmt.Errorf("%w: %w", errz.ErrHostStartFailed, err)
	}

	m.logger.Info("Host started", "functions", m.table.Len())
	return nil
}

// start performs the boot work. Called with the mutex held.
func (m *Manager) start() error {
	for _, dir := range []string{m.config.ScriptRoot, m.config.LogRoot, m.config.SecretsRoot} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create host directory: %w", err)
		}
	}

	hostHandler, closer, err := logging.OpenHostHandler(m.config.LogRoot)
	if err != nil {
		return err
	}

	functions, err := discoverFunctions(m.config.ScriptRoot, hostHandler)
	if err != nil {
		_ = closer.Close()
		return err
	}

	for _, fn := range functions {
		if err := m.table.Add(fn); err != nil {
			_ = closer.Close()
			return err
		}
	}

	m.hostHandler = hostHandler
	m.logCloser = closer
	return nil
}

// Stop takes a running host out of service. It is safe to call on a host
// that never reached Running.
func (m *Manager) Stop() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.stop()
}

// stop performs the shutdown transitions. Called with the mutex held.
func (m *Manager) stop() {
	if m.fsm.TransitionBool(finitestate.StatusStopping) {
		if err := m.fsm.Transition(finitestate.StatusStopped); err != nil {
			m.logger.Error("Failed to transition to stopped", "error", err)
		}
	}
}

// Dispose releases the host's resources. The first call performs the work
// and surfaces any structural failure; repeat calls are no-ops.
func (m *Manager) Dispose() error {
	var err error
	first := false
	m.disposeOnce.Do(func() {
		first = true
		err = m.dispose()
	})
	if !first {
		return nil
	}
	return err
}

func (m *Manager) dispose() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.stop()

	if m.logCloser != nil {
		if err := m.logCloser.Close(); err != nil {
			return fmt.Errorf("failed to close host log: %w", err)
		}
		m.logCloser = nil
	}

	m.logger.Debug("Host disposed")
	return nil
}

// IsReady reports whether the host reached Running and has not begun stopping.
func (m *Manager) IsReady() bool {
	return m.fsm.GetState() == finitestate.StatusRunning
}

// GetState returns the current lifecycle state of the host.
func (m *Manager) GetState() string {
	return m.fsm.GetState()
}

// GetStateChan returns a channel that emits state changes. The channel is
// closed when the provided context is canceled.
func (m *Manager) GetStateChan(ctx context.Context) <-chan string {
	return m.fsm.GetStateChan(ctx)
}

// WaitReady blocks until the host reports readiness, the host reaches a
// terminal state, or the context is done. It never holds the manager mutex
// while suspended and never busy-spins.
func (m *Manager) WaitReady(ctx context.Context) error {
	if m.IsReady() {
		return nil
	}

	stateCh := m.fsm.GetStateChan(ctx)

	// Re-check after subscribing so a transition between the fast-path check
	// and the subscription cannot be missed.
	if m.IsReady() {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", errz.ErrHostNotReady, ctx.Err())
		case state, ok := <-stateCh:
			if !ok {
				return fmt.Errorf("%w: %w", errz.ErrHostNotReady, ctx.Err())
			}
			switch state {
			case finitestate.StatusRunning:
				return nil
			case finitestate.StatusStopping, finitestate.StatusStopped:
				return fmt.Errorf("%w: %w", errz.ErrHostNotReady, errz.ErrHostDisposed)
			case finitestate.StatusError:
				return fmt.Errorf("%w: host failed to start", errz.ErrHostNotReady)
			}
		}
	}
}

// Function resolves a function descriptor by exact name.
func (m *Manager) Function(name string) (*Function, bool) {
	return m.table.Get(name)
}

// FunctionNames returns the names in the host's function table, sorted.
func (m *Manager) FunctionNames() []string {
	return m.table.Names()
}

// LogHandler returns the host's log sink. Before Start completes this is the
// base handler the Manager was constructed with.
func (m *Manager) LogHandler() slog.Handler {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.hostHandler != nil {
		return m.hostHandler
	}
	return m.baseHandler
}

// Config returns the immutable configuration for this host.
func (m *Manager) Config() *Config {
	return m.config
}

// ID returns the deterministic host identifier.
func (m *Manager) ID() string {
	return m.config.ID
}

// String returns the name of this component.
func (m *Manager) String() string {
	return fmt.Sprintf("host.Manager[%s]", m.config.ID)
}
