package settings

import "path/filepath"

// standbyDirName is the subdirectory under the temp root that isolates all
// standby host state from caller-provided paths.
const standbyDirName = "warmstand-standby"

// NewStandby derives isolated settings for a standby host. The three paths
// are rooted under tmpRoot so a standby instance can never read or write the
// caller's script, log, or secrets directories. Only SelfHosted carries over.
//
// The derivation is deterministic for a given tmpRoot.
func NewStandby(s Settings, tmpRoot string) Settings {
	root := filepath.Join(tmpRoot, standbyDirName)
	return Settings{
		ScriptPath:  filepath.Join(root, "wwwroot"),
		LogPath:     filepath.Join(root, "logs"),
		SecretsPath: filepath.Join(root, "secrets"),
		SelfHosted:  s.SelfHosted,
	}
}
