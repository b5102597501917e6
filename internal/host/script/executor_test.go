package script

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript drops a Risor source file into a temp dir.
func writeScript(t *testing.T, code string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "function.risor")
	require.NoError(t, os.WriteFile(path, []byte(code), 0o644))
	return path
}

func TestCompile(t *testing.T) {
	t.Parallel()

	t.Run("valid script", func(t *testing.T) {
		t.Parallel()
		exec, err := Compile("echo", writeScript(t, `"hello"`), 0, nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultTimeout, exec.Timeout())
	})

	t.Run("custom timeout", func(t *testing.T) {
		t.Parallel()
		exec, err := Compile("echo", writeScript(t, `"hello"`), 5*time.Second, nil)
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, exec.Timeout())
	})

	t.Run("missing script file", func(t *testing.T) {
		t.Parallel()
		_, err := Compile("ghost", filepath.Join(t.TempDir(), "missing.risor"), 0, nil)
		assert.Error(t, err)
	})
}

func TestExecutor_Execute(t *testing.T) {
	t.Parallel()

	t.Run("string result", func(t *testing.T) {
		t.Parallel()
		exec, err := Compile("echo", writeScript(t, `"hello"`), 0, nil)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/echo", nil)

		require.NoError(t, exec.Execute(context.Background(), w, r))
		assert.Equal(t, 200, w.Code)
		assert.Equal(t, "hello", w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	})

	t.Run("map result renders as json", func(t *testing.T) {
		t.Parallel()
		exec, err := Compile("status", writeScript(t, `{"status": "ok"}`), 0, nil)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/status", nil)

		require.NoError(t, exec.Execute(context.Background(), w, r))
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
	})
}
