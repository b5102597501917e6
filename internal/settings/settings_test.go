package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warmstand/warmstand/internal/errz"
)

func TestSettings_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		settings Settings
		wantErrs []error
	}{
		{
			name: "valid settings",
			settings: Settings{
				ScriptPath:  "/app/wwwroot",
				LogPath:     "/app/logs",
				SecretsPath: "/app/secrets",
			},
		},
		{
			name: "missing script path",
			settings: Settings{
				LogPath:     "/app/logs",
				SecretsPath: "/app/secrets",
			},
			wantErrs: []error{errz.ErrEmptyScriptPath},
		},
		{
			name:     "all paths missing",
			settings: Settings{SelfHosted: true},
			wantErrs: []error{
				errz.ErrEmptyScriptPath,
				errz.ErrEmptyLogPath,
				errz.ErrEmptySecretsPath,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.settings.Validate()
			if len(tt.wantErrs) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, wantErr := range tt.wantErrs {
				assert.ErrorIs(t, err, wantErr)
			}
		})
	}
}

func TestFromFile(t *testing.T) {
	t.Parallel()

	t.Run("valid file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "warmstand.toml")
		content := `
script_path = "/app/wwwroot"
log_path = "/app/logs"
secrets_path = "/app/secrets"
self_hosted = true
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		s, err := FromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "/app/wwwroot", s.ScriptPath)
		assert.Equal(t, "/app/logs", s.LogPath)
		assert.Equal(t, "/app/secrets", s.SecretsPath)
		assert.True(t, s.SelfHosted)
	})

	t.Run("unset env var without default", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "warmstand.toml")
		content := `
script_path = "${WARMSTAND_TEST_UNSET_VAR}/wwwroot"
log_path = "/app/logs"
secrets_path = "/app/secrets"
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		_, err := FromFile(path)
		assert.ErrorIs(t, err, errz.ErrFailedToLoadSettings)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := FromFile(filepath.Join(t.TempDir(), "nope.toml"))
		assert.ErrorIs(t, err, errz.ErrFailedToLoadSettings)
	})

	t.Run("malformed toml", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte("script_path = ["), 0o644))

		_, err := FromFile(path)
		assert.ErrorIs(t, err, errz.ErrFailedToLoadSettings)
	})

	t.Run("valid toml failing validation", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "incomplete.toml")
		require.NoError(t, os.WriteFile(path, []byte(`script_path = "/app"`), 0o644))

		_, err := FromFile(path)
		assert.ErrorIs(t, err, errz.ErrEmptyLogPath)
	})
}

func TestFromFile_EnvInterpolation(t *testing.T) {
	t.Setenv("WARMSTAND_TEST_DATA_ROOT", "/srv/site")
	path := filepath.Join(t.TempDir(), "warmstand.toml")
	content := `
script_path = "${WARMSTAND_TEST_DATA_ROOT}/wwwroot"
log_path = "${WARMSTAND_TEST_DATA_ROOT}/logs"
secrets_path = "${WARMSTAND_TEST_SECRETS:/srv/secrets}"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/site/wwwroot", s.ScriptPath)
	assert.Equal(t, "/srv/site/logs", s.LogPath)
	assert.Equal(t, "/srv/secrets", s.SecretsPath)
}
