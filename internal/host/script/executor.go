// Package script compiles and evaluates function scripts using go-polyscript.
// It is the concrete execution collaborator consumed through dispatch handles.
package script

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/robbyt/go-polyscript/engines/risor"
	"github.com/robbyt/go-polyscript/platform"
	"github.com/robbyt/go-polyscript/platform/constants"
	"github.com/robbyt/go-polyscript/platform/data"
	"github.com/robbyt/go-polyscript/platform/script/loader"
)

// DefaultTimeout bounds a single function evaluation when the manifest does
// not set one.
const DefaultTimeout = 1 * time.Minute

// Executor wraps one compiled function script.
type Executor struct {
	name      string
	evaluator platform.Evaluator
	timeout   time.Duration
	logger    *slog.Logger
}

// Compile loads and compiles the Risor source at scriptFile. Compilation
// errors are returned to the caller; an Executor is only produced for a
// script that compiled cleanly.
func Compile(
	name, scriptFile string,
	timeout time.Duration,
	handler slog.Handler,
) (*Executor, error) {
	if handler == nil {
		handler = slog.Default().Handler()
	}

	path := scriptFile
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve script path %q: %w", path, err)
		}
		path = absPath
	}

	scriptLoader, err := loader.NewFromDisk(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load script %q: %w", path, err)
	}

	evaluator, err := risor.FromRisorLoader(handler, scriptLoader)
	if err != nil {
		return nil, fmt.Errorf("compilation failed for function %q: %w", name, err)
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Executor{
		name:      name,
		evaluator: evaluator,
		timeout:   timeout,
		logger:    slog.New(handler).With("function", name),
	}, nil
}

// Timeout returns the evaluation deadline for this function.
func (e *Executor) Timeout() time.Duration {
	return e.timeout
}

// Execute evaluates the compiled script for one HTTP request and writes the
// result to the response writer.
func (e *Executor) Execute(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	scriptData := map[string]any{
		"function": e.name,
		"request":  r,
	}

	contextProvider := data.NewContextProvider(constants.EvalData)
	enrichedCtx, err := contextProvider.AddDataToContext(timeoutCtx, scriptData)
	if err != nil {
		e.logger.Error("Failed to add runtime data", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return err
	}

	start := time.Now()
	result, err := e.evaluator.Eval(enrichedCtx)
	duration := time.Since(start)

	if err != nil {
		e.logger.Error("Script execution failed", "error", err, "duration", duration)

		if timeoutCtx.Err() == context.DeadlineExceeded {
			http.Error(w, "Script Execution Timeout", http.StatusGatewayTimeout)
			return err
		}

		http.Error(w, "Script Execution Error", http.StatusInternalServerError)
		return err
	}

	e.logger.Debug("Script executed successfully", "duration", duration)

	if err := writeResult(w, result); err != nil {
		e.logger.Error("Failed to write script result", "error", err)
		return err
	}

	return nil
}

// writeResult renders the evaluation result based on its dynamic type.
func writeResult(w http.ResponseWriter, result platform.EvaluatorResponse) error {
	value := result.Interface()

	switch v := value.(type) {
	case map[string]any:
		w.Header().Set("Content-Type", "application/json")
		return json.NewEncoder(w).Encode(v)

	case string:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, err := w.Write([]byte(v))
		return err

	case []byte:
		w.Header().Set("Content-Type", "application/octet-stream")
		_, err := w.Write(v)
		return err

	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, err := fmt.Fprintf(w, "%v", v)
		return err
	}
}
