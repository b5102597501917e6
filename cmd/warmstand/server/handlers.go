package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/robbyt/go-supervisor/runnables/httpserver"

	"github.com/warmstand/warmstand/internal/dispatch"
	"github.com/warmstand/warmstand/internal/errz"
	"github.com/warmstand/warmstand/internal/host/resolver"
	"github.com/warmstand/warmstand/internal/settings"
)

// apiPrefix is the URL prefix for function invocation.
const apiPrefix = "/api/"

// buildRoutes assembles the listener routes for the function API and the
// health endpoint.
func buildRoutes(
	res *resolver.Resolver,
	disp *dispatch.Dispatcher,
	s settings.Settings,
	logger *slog.Logger,
) ([]httpserver.Route, error) {
	api, err := httpserver.NewRouteFromHandlerFunc("api", apiPrefix, apiHandler(disp, logger))
	if err != nil {
		return nil, err
	}

	health, err := httpserver.NewRouteFromHandlerFunc("health", "/healthz", healthHandler(res, s))
	if err != nil {
		return nil, err
	}

	return []httpserver.Route{*api, *health}, nil
}

// apiHandler resolves the function name from the URL, dispatches, and runs
// the execution handle.
func apiHandler(disp *dispatch.Dispatcher, logger *slog.Logger) http.HandlerFunc {
	logger = logger.WithGroup("api")

	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.Trim(strings.TrimPrefix(r.URL.Path, apiPrefix), "/")
		if name == "" {
			http.NotFound(w, r)
			return
		}

		ctx, handle, err := disp.Dispatch(r.Context(), name)
		if err != nil {
			switch {
			case errors.Is(err, errz.ErrFunctionNotFound):
				http.NotFound(w, r)
			case errors.Is(err, errz.ErrHostNotReady):
				http.Error(w, "Host Not Ready", http.StatusServiceUnavailable)
			default:
				logger.Error("Dispatch failed", "function", name, "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
			return
		}

		if err := handle.Function.Executor.Execute(ctx, w, r.WithContext(ctx)); err != nil {
			logger.Error("Function execution failed", "function", name, "error", err)
		}
	}
}

// healthHandler reports the current host's identity and lifecycle state.
func healthHandler(res *resolver.Resolver, s settings.Settings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mgr, err := res.GetHostManager(r.Context(), s)
		if err != nil {
			http.Error(w, "Host Unavailable", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"host_id": mgr.ID(),
			"state":   mgr.GetState(),
			"standby": mgr.Config().Standby,
		})
	}
}
