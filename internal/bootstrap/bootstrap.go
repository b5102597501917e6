// Package bootstrap prepares a managed-hosting environment for a freshly
// initialized host: it clears the platform's default landing page, creates
// the site tools directory, and puts that directory on the executable search
// path. All of it is best-effort; failures are reported but never propagate
// into the lifecycle transition that triggered them.
package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	// EnvInstanceID marks a managed-hosting environment when non-empty.
	EnvInstanceID = "WARMSTAND_INSTANCE_ID"

	// EnvHome is the managed-hosting home directory for the site content.
	EnvHome = "WARMSTAND_HOME"

	// defaultPageName is the platform landing page removed once a host is
	// serving real content.
	defaultPageName = "hostingstart.html"
)

// IsManagedHosting reports whether the process runs under managed hosting.
func IsManagedHosting() bool {
	return os.Getenv(EnvInstanceID) != ""
}

// Apply runs the environment preparation when the managed-hosting signal is
// present. Safe to invoke repeatedly in the same process.
func Apply(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.WithGroup("bootstrap")

	if !IsManagedHosting() {
		logger.Debug("Not a managed hosting environment, skipping bootstrap")
		return
	}

	home := os.Getenv(EnvHome)
	if home == "" {
		logger.Warn("Managed hosting signal present but home path is unset")
		return
	}

	if err := apply(home); err != nil {
		logger.Warn("Environment bootstrap incomplete", "error", err)
		return
	}
	logger.Debug("Environment bootstrap complete", "home", home)
}

// apply performs the three idempotent preparation steps rooted at home.
func apply(home string) error {
	var errs []error

	if err := removeDefaultPage(filepath.Join(home, "site", "wwwroot")); err != nil {
		errs = append(errs, err)
	}

	toolsDir := filepath.Join(home, "site", "tools")
	if err := os.MkdirAll(toolsDir, 0o755); err != nil {
		errs = append(errs, fmt.Errorf("failed to create tools directory: %w", err))
	} else if err := prependPath(toolsDir); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// removeDefaultPage deletes the platform landing page if it exists.
func removeDefaultPage(siteRoot string) error {
	page := filepath.Join(siteRoot, defaultPageName)
	if err := os.Remove(page); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove default page: %w", err)
	}
	return nil
}

// prependPath puts dir at the front of PATH unless it is already present.
func prependPath(dir string) error {
	current := os.Getenv("PATH")
	for _, segment := range strings.Split(current, string(os.PathListSeparator)) {
		if segment == dir {
			return nil
		}
	}

	updated := dir + string(os.PathListSeparator) + current
	if err := os.Setenv("PATH", updated); err != nil {
		return fmt.Errorf("failed to update PATH: %w", err)
	}
	return nil
}
