package dispatch

import (
	"context"

	"github.com/warmstand/warmstand/internal/host"
)

// ExecutionHandle binds a ready host manager to a resolved function so the
// downstream execution engine can run it without touching resolver state.
type ExecutionHandle struct {
	Manager  *host.Manager
	Function *host.Function
}

type handleContextKey struct{}

// WithExecutionHandle attaches an execution handle to the request context.
func WithExecutionHandle(ctx context.Context, h *ExecutionHandle) context.Context {
	return context.WithValue(ctx, handleContextKey{}, h)
}

// HandleFromContext retrieves the execution handle attached by Dispatch.
func HandleFromContext(ctx context.Context) (*ExecutionHandle, bool) {
	h, ok := ctx.Value(handleContextKey{}).(*ExecutionHandle)
	return h, ok
}
