// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// ConfigScope indicates whether to operate on repo or user config
type ConfigScope int

const (
	ScopeRepo ConfigScope = iota // Repo config (./dist.yaml) - committed to git
	ScopeUser                    // User config (~/.config/dist/config.yaml) - personal preferences
)

// ConfigValue represents a configuration key-value pair with its source
type ConfigValue struct {
	Key    string
	Value  interface{}
	Source string
}

// getConfigPath returns the config file path based on scope
func getConfigPath(scope ConfigScope) string {
	if scope == ScopeUser {
		return filepath.Join(GlobalPaths.ConfigDir, ConfigFileName+DefaultConfigExt)
	}
	return filepath.Join(".", LocalConfigFile+DefaultConfigExt)
}

// getScopeName returns a human-readable scope name
func getScopeName(scope ConfigScope) string {
	if scope == ScopeUser {
		return "user"
	}
	return "repo"
}

// SetConfigValue sets a configuration value in the specified scope
func SetConfigValue(key, valueStr string, scope ConfigScope) error {
	if err := ValidateKeyScope(key, scope); err != nil {
		return err
	}

	value := parseValue(key, valueStr)
	if err := ValidateValue(key, value, scope); err != nil {
		return err
	}

	configPath := getConfigPath(scope)

	// Isolated instance so only this scope's file is rewritten
	v := viper.New()
	v.SetConfigType(ConfigType)
	v.SetConfigFile(configPath)
	_ = v.ReadInConfig() // Missing file is fine, it is created below

	v.Set(key, value)

	if err := v.SafeWriteConfigAs(configPath); err != nil {
		if _, ok := err.(viper.ConfigFileAlreadyExistsError); !ok {
			return fmt.Errorf("failed to create config: %w", err)
		}
		if err := v.WriteConfigAs(configPath); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	return nil
}

// GetConfigValue retrieves a configuration value and its source
func GetConfigValue(key string) (*ConfigValue, error) {
	if !viper.IsSet(key) {
		return nil, fmt.Errorf("configuration key not found: %s", key)
	}

	return &ConfigValue{
		Key:    key,
		Value:  viper.Get(key),
		Source: getConfigSource(key),
	}, nil
}

// UnsetConfigValue removes a configuration key from the specified scope
func UnsetConfigValue(key string, scope ConfigScope) error {
	configPath := getConfigPath(scope)
	scopeName := getScopeName(scope)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("%s config file does not exist: %s", scopeName, configPath)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType(ConfigType)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if !v.IsSet(key) {
		return fmt.Errorf("key '%s' not found in %s config", key, scopeName)
	}

	settings := v.AllSettings()
	if err := deleteNestedKey(settings, key); err != nil {
		return err
	}

	// Viper cannot delete keys, so write the remaining settings into a fresh instance
	out := viper.New()
	out.SetConfigFile(configPath)
	out.SetConfigType(ConfigType)
	for k, val := range settings {
		out.Set(k, val)
	}

	if err := out.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// ListConfigValues returns all configuration values with their sources, sorted by key
func ListConfigValues() ([]ConfigValue, error) {
	keys := flattenKeys(viper.AllSettings(), "")
	sort.Strings(keys)

	values := make([]ConfigValue, 0, len(keys))
	for _, key := range keys {
		values = append(values, ConfigValue{
			Key:    key,
			Value:  viper.Get(key),
			Source: getConfigSource(key),
		})
	}

	return values, nil
}

// parseValue converts a command-line string into the type the key expects.
// Unknown keys fall back to best-effort detection.
func parseValue(key, valueStr string) interface{} {
	if def := GetKeyDefinition(key); def != nil {
		switch def.Type {
		case "string", "enum", "duration", "url":
			return valueStr
		}
	}

	switch strings.ToLower(valueStr) {
	case "true", "yes", "on", "enable", "enabled":
		return true
	case "false", "no", "off", "disable", "disabled":
		return false
	}

	if i, err := strconv.Atoi(valueStr); err == nil {
		return i
	}

	if f, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return f
	}

	return valueStr
}

// keyToEnvVar converts a config key to its environment variable name
func keyToEnvVar(key string) string {
	replacer := strings.NewReplacer("-", "_", ".", "_")
	return strings.ToUpper(EnvPrefix + "_" + replacer.Replace(key))
}

// getConfigSource determines where a config value comes from
func getConfigSource(key string) string {
	envKey := keyToEnvVar(key)
	if os.Getenv(envKey) != "" {
		return fmt.Sprintf("from ENV: %s", envKey)
	}

	configFile := viper.ConfigFileUsed()
	switch {
	case configFile == "" || !viper.InConfig(key):
		return "default"
	case strings.Contains(configFile, LocalConfigFile+DefaultConfigExt) && !strings.Contains(configFile, GlobalPaths.ConfigDir):
		return fmt.Sprintf("from ./%s%s", LocalConfigFile, DefaultConfigExt)
	case strings.Contains(configFile, GlobalPaths.ConfigDir):
		return fmt.Sprintf("from ~/.config/dist/%s%s", ConfigFileName, DefaultConfigExt)
	default:
		return fmt.Sprintf("from %s", configFile)
	}
}

// deleteNestedKey removes a key from a nested map using dot notation
func deleteNestedKey(m map[string]interface{}, key string) error {
	parts := strings.Split(key, ".")

	current := m
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part]
		if !ok {
			return fmt.Errorf("key not found: %s", key)
		}
		nextMap, ok := next.(map[string]interface{})
		if !ok {
			return fmt.Errorf("cannot traverse through non-map value at %s", part)
		}
		current = nextMap
	}

	last := parts[len(parts)-1]
	if _, exists := current[last]; !exists {
		return fmt.Errorf("key not found: %s", key)
	}
	delete(current, last)

	return nil
}

// flattenKeys recursively flattens nested map keys with dot notation
func flattenKeys(m map[string]interface{}, prefix string) []string {
	var keys []string

	for k, v := range m {
		fullKey := k
		if prefix != "" {
			fullKey = prefix + "." + k
		}

		if nested, ok := v.(map[string]interface{}); ok {
			keys = append(keys, flattenKeys(nested, fullKey)...)
		} else {
			keys = append(keys, fullKey)
		}
	}

	return keys
}
