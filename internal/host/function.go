package host

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/warmstand/warmstand/internal/errz"
	"github.com/warmstand/warmstand/internal/host/script"
)

// manifestFileName is the per-function manifest warmstand looks for when
// scanning the script root. Directories without one are not functions.
const manifestFileName = "function.toml"

// defaultScriptFile is used when the manifest does not name a script.
const defaultScriptFile = "function.risor"

// Function describes one invokable unit of the workload, looked up by name
// during dispatch.
type Function struct {
	// Name is the dispatch key. Matching is exact and case-sensitive.
	Name string

	// Dir is the function's directory under the script root.
	Dir string

	// ScriptFile is the absolute path to the function's Risor source.
	ScriptFile string

	// Executor is the compiled script, ready for evaluation.
	Executor *script.Executor
}

// manifest is the on-disk shape of function.toml.
type manifest struct {
	Name     string `toml:"name"`
	Script   string `toml:"script"`
	Disabled bool   `toml:"disabled"`
	Timeout  string `toml:"timeout"`
}

// loadManifest parses and validates one function.toml.
func loadManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errz.ErrInvalidManifest, err)
	}

	var m manifest
	if err := gotoml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", errz.ErrInvalidManifest, err)
	}

	return &m, nil
}

// timeout returns the parsed manifest timeout, or zero when unset.
func (m *manifest) timeout() (time.Duration, error) {
	if m.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(m.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: bad timeout %q: %w", errz.ErrInvalidManifest, m.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: negative timeout %q", errz.ErrInvalidManifest, m.Timeout)
	}
	return d, nil
}

// discoverFunctions scans scriptRoot for function directories and returns a
// descriptor per enabled function. Scripts are compiled here, so a returned
// descriptor always carries an executable script.
func discoverFunctions(scriptRoot string, handler slog.Handler) ([]*Function, error) {
	entries, err := os.ReadDir(scriptRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read script root %q: %w", scriptRoot, err)
	}

	var functions []*Function
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dir := filepath.Join(scriptRoot, entry.Name())
		manifestPath := filepath.Join(dir, manifestFileName)
		if _, err := os.Stat(manifestPath); errors.Is(err, os.ErrNotExist) {
			continue
		}

		m, err := loadManifest(manifestPath)
		if err != nil {
			return nil, fmt.Errorf("function %q: %w", entry.Name(), err)
		}
		if m.Disabled {
			continue
		}

		name := m.Name
		if name == "" {
			name = entry.Name()
		}

		scriptFile := m.Script
		if scriptFile == "" {
			scriptFile = defaultScriptFile
		}
		scriptPath := filepath.Join(dir, scriptFile)

		timeout, err := m.timeout()
		if err != nil {
			return nil, fmt.Errorf("function %q: %w", name, err)
		}

		executor, err := script.Compile(name, scriptPath, timeout, handler)
		if err != nil {
			return nil, fmt.Errorf("function %q: %w", name, err)
		}

		functions = append(functions, &Function{
			Name:       name,
			Dir:        dir,
			ScriptFile: scriptPath,
			Executor:   executor,
		})
	}

	return functions, nil
}
