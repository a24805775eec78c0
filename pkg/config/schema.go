// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"slices"
	"time"
)

// ScopeConstraints defines per-scope validation rules for a configuration key
type ScopeConstraints struct {
	Forbidden  bool     // If true, this key cannot be set in this scope
	EnumValues []string // Valid enum values for this scope (overrides global EnumValues if set)
	Pattern    string   // Regex pattern for this scope (overrides global Pattern if set)
}

// ConfigKeyDefinition defines metadata for a configuration key
type ConfigKeyDefinition struct {
	Key         string      // Configuration key (dot notation)
	Type        string      // "string", "bool", "enum", "int", "duration", "url"
	Default     interface{} // Default value
	Description string      // Help text

	// Global constraints (apply unless overridden by scope-specific constraints)
	EnumValues []string // Valid values for enum type (if Type="enum")
	Pattern    string   // Regex pattern for validation (if Type="string")

	// Per-scope constraints (optional - if nil, key is allowed in scope with global constraints)
	UserConstraints *ScopeConstraints // Constraints when setting in user config
	RepoConstraints *ScopeConstraints // Constraints when setting in repo config
}

// ConfigRegistry holds all known configuration keys with per-scope constraints.
//
// Constraint System:
//   - No constraints: Key can be set in any scope with same validation rules
//   - Forbidden constraint: Key cannot be set in the specified scope
//   - Scope-specific EnumValues: Different allowed values per scope
//   - Scope-specific Pattern: Different regex validation per scope
var ConfigRegistry = map[string]ConfigKeyDefinition{
	"use-tui": {
		Key:         "use-tui",
		Type:        "bool",
		Default:     true,
		Description: "Use TUI for interactive prompts and pull progress",
	},

	"log-level": {
		Key:         "log-level",
		Type:        "enum",
		Default:     "debug",
		Description: "Log verbosity level",
		EnumValues:  []string{"disabled", "debug", "info", "warn", "error"},
	},

	"index.url": {
		Key:         "index.url",
		Type:        "url",
		Default:     DefaultIndexURL,
		Description: "URL of the remote distribution index",
	},

	"index.token": {
		Key:         "index.token",
		Type:        "string",
		Default:     "",
		Description: "Bearer token sent to the index and download hosts",
		RepoConstraints: &ScopeConstraints{
			Forbidden: true,
		},
	},

	"distribution.type": {
		Key:         "distribution.type",
		Type:        "string",
		Default:     DefaultDistributionType,
		Description: "Product label prefixed to local distribution directories",
		Pattern:     "^[a-z][a-z0-9]*$",
	},

	"list.marking": {
		Key:         "list.marking",
		Type:        "enum",
		Default:     "legacy",
		Description: "How remote entries are composed when marking the active distribution",
		EnumValues:  []string{"legacy", "identifier"},
	},

	"http.timeout": {
		Key:         "http.timeout",
		Type:        "duration",
		Default:     DefaultHTTPTimeout.String(),
		Description: "Timeout for requests to the distribution index",
	},

	"verify.signatures": {
		Key:         "verify.signatures",
		Type:        "bool",
		Default:     false,
		Description: "Require a valid PGP signature on SHA256SUMS when pulling",
	},

	"verify.public-key": {
		Key:         "verify.public-key",
		Type:        "string",
		Default:     "",
		Description: "Path to the armored public key used to verify SHA256SUMS.asc",
	},
}

// GetKeyDefinition returns the definition for a key, or nil if not found
func GetKeyDefinition(key string) *ConfigKeyDefinition {
	if def, ok := ConfigRegistry[key]; ok {
		return &def
	}
	return nil
}

// scopeConstraints returns the constraints of def for scope, or nil
func scopeConstraints(def *ConfigKeyDefinition, scope ConfigScope) *ScopeConstraints {
	if scope == ScopeUser {
		return def.UserConstraints
	}
	return def.RepoConstraints
}

// ValidateKeyScope checks if a key can be set in the given scope
// Returns an error if the key is forbidden in the specified scope
func ValidateKeyScope(key string, scope ConfigScope) error {
	def := GetKeyDefinition(key)
	if def == nil {
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	constraints := scopeConstraints(def, scope)
	if constraints == nil || !constraints.Forbidden {
		return nil
	}

	if scope == ScopeUser {
		return fmt.Errorf(
			"key '%s' cannot be set in user config\n\n"+
				"Hint: Remove --global flag:\n"+
				"  dist config set %s <value>\n\n"+
				"This key must be set in repo config: ./dist.yaml",
			key,
			key,
		)
	}
	return fmt.Errorf(
		"key '%s' cannot be set in repo config (sensitive setting)\n\n"+
			"Hint: Use --global flag:\n"+
			"  dist config set --global %s <value>\n\n"+
			"User config: ~/.config/dist/config.yaml\n"+
			"This setting must NOT be committed to version control.",
		key,
		key,
	)
}

// ValidateValue checks if a value is valid for the given key in the specified scope.
// Scope constraints override the key's own pattern and enum values.
func ValidateValue(key string, value interface{}, scope ConfigScope) error {
	def := GetKeyDefinition(key)
	if def == nil {
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	if def.Type == "bool" {
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("key '%s' must be a boolean", key)
		}
		return nil
	}
	if def.Type == "int" {
		if _, ok := value.(int); !ok {
			return fmt.Errorf("key '%s' must be an integer", key)
		}
		return nil
	}

	str, ok := value.(string)
	if !ok {
		return fmt.Errorf("key '%s' must be a string", key)
	}

	var err error
	switch def.Type {
	case "duration":
		err = validateDuration(str)
	case "url":
		err = validateURL(str)
	case "string":
		err = validatePattern(def, scope, str)
	case "enum":
		err = validateEnum(def, scope, str)
	}
	if err != nil {
		return fmt.Errorf("key '%s': %w", key, err)
	}

	if key == "verify.public-key" {
		if err := validateKeyFilePath(str); err != nil {
			return fmt.Errorf("key '%s': %w", key, err)
		}
	}

	return nil
}

func validateDuration(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("must be a duration such as 30s or 2m: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("must be a positive duration")
	}
	return nil
}

func validateURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("must be an absolute http(s) URL (got '%s')", s)
	}
	return nil
}

func validatePattern(def *ConfigKeyDefinition, scope ConfigScope, s string) error {
	pattern := def.Pattern
	if c := scopeConstraints(def, scope); c != nil && c.Pattern != "" {
		pattern = c.Pattern
	}
	if pattern == "" {
		return nil
	}

	matched, err := regexp.MatchString(pattern, s)
	if err != nil {
		return fmt.Errorf("pattern validation error: %w", err)
	}
	if !matched {
		return fmt.Errorf("value '%s' does not match required format for %s scope", s, getScopeName(scope))
	}
	return nil
}

func validateEnum(def *ConfigKeyDefinition, scope ConfigScope, s string) error {
	values := def.EnumValues
	if c := scopeConstraints(def, scope); c != nil && c.EnumValues != nil {
		values = c.EnumValues
	}
	if !slices.Contains(values, s) {
		return fmt.Errorf("must be one of %v in %s scope (got '%s')", values, getScopeName(scope), s)
	}
	return nil
}

// validateKeyFilePath validates a public key path
// - Empty disables the key (verification then fails closed)
// - Otherwise must point to an existing regular file
func validateKeyFilePath(path string) error {
	if path == "" {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", path)
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("path points to a directory; must be a file")
	}

	return nil
}
