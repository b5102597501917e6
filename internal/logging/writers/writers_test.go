package writers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWriter(t *testing.T) {
	t.Parallel()

	t.Run("empty defaults to stderr", func(t *testing.T) {
		t.Parallel()
		w, err := CreateWriter("")
		require.NoError(t, err)
		assert.Equal(t, os.Stderr, w)
	})

	t.Run("stderr", func(t *testing.T) {
		t.Parallel()
		w, err := CreateWriter("stderr")
		require.NoError(t, err)
		assert.Equal(t, os.Stderr, w)
	})

	t.Run("stdout", func(t *testing.T) {
		t.Parallel()
		w, err := CreateWriter("stdout")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, w)
	})

	t.Run("file path creates directories", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "nested", "server.log")

		w, err := CreateWriter(path)
		require.NoError(t, err)

		_, err = w.Write([]byte("hello\n"))
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "hello\n", string(data))
	})

	t.Run("file url scheme", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "server.log")

		w, err := CreateWriter("file://" + path)
		require.NoError(t, err)

		_, err = w.Write([]byte("hello\n"))
		require.NoError(t, err)
		assert.FileExists(t, path)
	})

	t.Run("file path appends", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "server.log")

		for _, line := range []string{"one\n", "two\n"} {
			w, err := CreateWriter(path)
			require.NoError(t, err)
			_, err = w.Write([]byte(line))
			require.NoError(t, err)
		}

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "one\ntwo\n", string(data))
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		t.Parallel()
		_, err := CreateWriter("syslog://localhost")
		assert.Error(t, err)
	})

	t.Run("bare word rejected", func(t *testing.T) {
		t.Parallel()
		_, err := CreateWriter("somewhere")
		assert.Error(t, err)
	})
}
