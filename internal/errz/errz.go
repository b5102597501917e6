// Package errz provides shared error definitions for warmstand packages.
package errz

import "errors"

// Settings errors
var (
	ErrFailedToLoadSettings = errors.New("failed to load settings")
	ErrEmptyScriptPath      = errors.New("empty script path")
	ErrEmptyLogPath         = errors.New("empty log path")
	ErrEmptySecretsPath     = errors.New("empty secrets path")
)

// Host lifecycle errors
var (
	ErrHostStartFailed  = errors.New("host start failed")
	ErrHostNotReady     = errors.New("host not ready")
	ErrHostDisposed     = errors.New("host disposed")
	ErrResolverDisposed = errors.New("resolver disposed")
)

// Function table errors
var (
	ErrFunctionNotFound = errors.New("function not found")
	ErrInvalidManifest  = errors.New("invalid function manifest")
	ErrDuplicateName    = errors.New("duplicate function name")
)
