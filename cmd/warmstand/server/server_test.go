package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warmstand/warmstand/internal/dispatch"
	"github.com/warmstand/warmstand/internal/host/resolver"
	"github.com/warmstand/warmstand/internal/settings"
)

// newTestResolver returns a resolver that specializes against a temp script
// root holding the named functions, plus the matching settings.
func newTestResolver(t *testing.T, functions ...string) (*resolver.Resolver, settings.Settings) {
	t.Helper()

	root := t.TempDir()
	s := settings.Settings{
		ScriptPath:  filepath.Join(root, "wwwroot"),
		LogPath:     filepath.Join(root, "logs"),
		SecretsPath: filepath.Join(root, "secrets"),
	}

	for _, name := range functions {
		fnDir := filepath.Join(s.ScriptPath, name)
		require.NoError(t, os.MkdirAll(fnDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(fnDir, "function.toml"), nil, 0o644))
		require.NoError(t, os.WriteFile(
			filepath.Join(fnDir, "function.risor"),
			[]byte(`"ok"`),
			0o644,
		))
	}

	r, err := resolver.New(
		func() bool { return false },
		resolver.WithBootstrap(func(*slog.Logger) {}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Dispose() })

	return r, s
}

func newTestDispatcher(t *testing.T, r *resolver.Resolver, s settings.Settings) *dispatch.Dispatcher {
	t.Helper()
	d, err := dispatch.New(r, s, dispatch.WithReadyTimeout(5*time.Second))
	require.NoError(t, err)
	return d
}

func TestBuildRoutes(t *testing.T) {
	t.Parallel()

	r, s := newTestResolver(t)
	d := newTestDispatcher(t, r, s)

	routes, err := buildRoutes(r, d, s, slog.Default())
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, apiPrefix, routes[0].Path)
	assert.Equal(t, "/healthz", routes[1].Path)
}

func TestAPIHandler(t *testing.T) {
	t.Parallel()

	t.Run("executes function", func(t *testing.T) {
		t.Parallel()
		r, s := newTestResolver(t, "echo")
		handler := apiHandler(newTestDispatcher(t, r, s), slog.Default())

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/api/echo", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", rec.Body.String())
	})

	t.Run("unknown function", func(t *testing.T) {
		t.Parallel()
		r, s := newTestResolver(t, "echo")
		handler := apiHandler(newTestDispatcher(t, r, s), slog.Default())

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/api/missing", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("empty function name", func(t *testing.T) {
		t.Parallel()
		r, s := newTestResolver(t)
		handler := apiHandler(newTestDispatcher(t, r, s), slog.Default())

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/api/", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("host start failure maps to 500", func(t *testing.T) {
		t.Parallel()
		r, s := newTestResolver(t)
		// A regular file where the script root should be makes host start fail.
		require.NoError(t, os.WriteFile(s.ScriptPath, nil, 0o644))
		handler := apiHandler(newTestDispatcher(t, r, s), slog.Default())

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/api/echo", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	t.Run("reports host state", func(t *testing.T) {
		t.Parallel()
		r, s := newTestResolver(t)
		require.NoError(t, r.EnsureInitialized(context.Background(), s))

		rec := httptest.NewRecorder()
		healthHandler(r, s)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotEmpty(t, body["host_id"])
		assert.Equal(t, false, body["standby"])
	})

	t.Run("host unavailable", func(t *testing.T) {
		t.Parallel()
		r, s := newTestResolver(t)
		require.NoError(t, os.WriteFile(s.ScriptPath, nil, 0o644))

		rec := httptest.NewRecorder()
		healthHandler(r, s)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestLifecycleRunner(t *testing.T) {
	t.Parallel()

	t.Run("runs until cancelled", func(t *testing.T) {
		t.Parallel()
		r, s := newTestResolver(t, "echo")
		runner := newLifecycleRunner(r, s, slog.Default())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- runner.Run(ctx) }()

		// The warm-up inside Run publishes a host before Run returns.
		assert.Eventually(t, func() bool {
			mgr, err := r.GetHostManager(context.Background(), s)
			return err == nil && mgr.IsReady()
		}, 2*time.Second, 10*time.Millisecond)

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not return after cancel")
		}

		runner.Stop()
	})

	t.Run("run fails when warm-up fails", func(t *testing.T) {
		t.Parallel()
		r, s := newTestResolver(t)
		require.NoError(t, os.WriteFile(s.ScriptPath, nil, 0o644))
		runner := newLifecycleRunner(r, s, slog.Default())

		err := runner.Run(context.Background())
		assert.Error(t, err)
	})

	t.Run("string", func(t *testing.T) {
		t.Parallel()
		r, s := newTestResolver(t)
		assert.Equal(t, "server.lifecycleRunner", newLifecycleRunner(r, s, slog.Default()).String())
	})
}
