// Package host owns the runtime representation of one running host instance:
// its configuration, its function table, and its readiness lifecycle.
package host

import (
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/warmstand/warmstand/internal/settings"
)

// Config is the fully derived configuration for one host instance. Exactly
// one Config is associated with exactly one Manager, and it is immutable
// after construction.
type Config struct {
	// ID is a deterministic identifier derived from the script root, so the
	// same workload always produces the same host identity.
	ID string

	// ScriptRoot contains one subdirectory per function.
	ScriptRoot string

	// LogRoot receives host log output.
	LogRoot string

	// SecretsRoot holds host and function secrets.
	SecretsRoot string

	// SelfHosted indicates the process runs outside a managed hosting environment.
	SelfHosted bool

	// Standby marks this as a pre-warmed instance not yet bound to a workload.
	Standby bool
}

// NewConfig derives a host configuration from settings. The standby flag
// records which lifecycle mode this configuration was built for.
func NewConfig(s settings.Settings, standby bool) *Config {
	return &Config{
		ID:          hostID(s.ScriptPath),
		ScriptRoot:  s.ScriptPath,
		LogRoot:     s.LogPath,
		SecretsRoot: s.SecretsPath,
		SelfHosted:  s.SelfHosted,
		Standby:     standby,
	}
}

// String returns a compact representation for logging.
func (c *Config) String() string {
	mode := "specialized"
	if c.Standby {
		mode = "standby"
	}
	return fmt.Sprintf("host.Config[%s, %s, script=%s]", c.ID, mode, c.ScriptRoot)
}

// hostID produces a stable identifier for a script root using a v5 UUID.
func hostID(scriptRoot string) string {
	id := uuid.NewV5(uuid.NamespaceURL, "warmstand://"+scriptRoot)
	return id.String()
}
