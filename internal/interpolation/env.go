// Package interpolation expands ${VAR} and ${VAR:default} references in
// settings values, so path fields can be written against the deployment
// environment instead of hardcoded.
package interpolation

import (
	"errors"
	"fmt"
	"os"
	"regexp"
)

// Captures the colon explicitly so an empty default can be told apart from
// no default at all.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:)?([^}]*)\}`)

// ExpandEnvVars replaces ${VAR_NAME} and ${VAR_NAME:default} references in
// input with values from the environment. A missing variable falls back to
// its default when one is given; a missing variable without a default is an
// error, collected across all references in the input.
func ExpandEnvVars(input string) (string, error) {
	if input == "" {
		return "", nil
	}

	var missing []error
	result := envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		submatches := envVarPattern.FindStringSubmatch(match)
		varName := submatches[1]
		hasDefault := submatches[2] == ":"
		defaultValue := submatches[3]

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		if hasDefault {
			return defaultValue
		}

		missing = append(missing, fmt.Errorf("environment variable %s not set", varName))
		return match
	})

	if len(missing) > 0 {
		return "", errors.Join(missing...)
	}
	return result, nil
}
