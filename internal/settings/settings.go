// Package settings holds the immutable host settings values and the standby
// derivation used when the process boots before a workload is assigned.
package settings

import (
	"errors"
	"fmt"
	"os"

	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/warmstand/warmstand/internal/errz"
	"github.com/warmstand/warmstand/internal/interpolation"
)

// Settings describes where one host instance reads scripts, writes logs, and
// stores secrets. Values are treated as immutable after construction.
type Settings struct {
	// ScriptPath is the root directory containing one subdirectory per function.
	ScriptPath string `toml:"script_path"`

	// LogPath is the root directory for host log output.
	LogPath string `toml:"log_path"`

	// SecretsPath is the directory holding host and function secrets.
	SecretsPath string `toml:"secrets_path"`

	// SelfHosted indicates the process runs outside a managed hosting environment.
	SelfHosted bool `toml:"self_hosted"`
}

// Validate checks that all required paths are present.
func (s Settings) Validate() error {
	var errs []error

	if s.ScriptPath == "" {
		errs = append(errs, errz.ErrEmptyScriptPath)
	}
	if s.LogPath == "" {
		errs = append(errs, errz.ErrEmptyLogPath)
	}
	if s.SecretsPath == "" {
		errs = append(errs, errz.ErrEmptySecretsPath)
	}

	return errors.Join(errs...)
}

// expandEnvVars interpolates ${VAR} references in the path fields.
func (s *Settings) expandEnvVars() error {
	var errs []error
	for _, field := range []*string{&s.ScriptPath, &s.LogPath, &s.SecretsPath} {
		expanded, err := interpolation.ExpandEnvVars(*field)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*field = expanded
	}
	return errors.Join(errs...)
}

// String returns a compact representation for logging.
func (s Settings) String() string {
	return fmt.Sprintf(
		"Settings(script=%s, log=%s, secrets=%s, selfHosted=%t)",
		s.ScriptPath, s.LogPath, s.SecretsPath, s.SelfHosted,
	)
}

// FromFile loads and validates settings from a TOML file.
func FromFile(path string) (Settings, error) {
	var s Settings

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("%w: %w", errz.ErrFailedToLoadSettings, err)
	}

	if err := gotoml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("%w: %w", errz.ErrFailedToLoadSettings, err)
	}

	if err := s.expandEnvVars(); err != nil {
		return s, fmt.Errorf("%w: %w", errz.ErrFailedToLoadSettings, err)
	}

	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("%w: %w", errz.ErrFailedToLoadSettings, err)
	}

	return s, nil
}
