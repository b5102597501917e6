// Package logging builds slog handlers for the CLI and for per-host log roots.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// SetupHandlerText configures a text slog handler with the provided writer and log level
func SetupHandlerText(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stderr
	}

	reportCaller := false
	reportTimestamp := false
	lvl := log.InfoLevel
	switch strings.ToLower(logLevel) {
	case "trace":
		reportCaller = true
		reportTimestamp = true
		lvl = log.DebugLevel
	case "debug":
		reportTimestamp = true
		lvl = log.DebugLevel
	case "info":
		lvl = log.InfoLevel
	case "warn", "warning":
		lvl = log.WarnLevel
	case "error":
		lvl = log.ErrorLevel
	}

	return log.NewWithOptions(writer, log.Options{
		ReportTimestamp: reportTimestamp,
		ReportCaller:    reportCaller,
		Level:           lvl,
	})
}

// SetupHandlerJSON configures a JSON slog handler with the provided writer and log level
func SetupHandlerJSON(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stdout
	}

	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "trace", "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})
}

// OpenHostHandler creates a JSON handler appending to host.log under logRoot.
// The log root is created if missing. The returned closer owns the file.
func OpenHostHandler(logRoot string) (slog.Handler, io.Closer, error) {
	if logRoot == "" {
		return nil, nil, fmt.Errorf("log root is empty")
	}
	if err := os.MkdirAll(logRoot, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log root: %w", err)
	}

	f, err := os.OpenFile(
		filepath.Join(logRoot, "host.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0o644,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open host log: %w", err)
	}

	return SetupHandlerJSON("info", f), f, nil
}
