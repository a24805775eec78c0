// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// InitViper initializes Viper configuration with defaults and search paths
// Precedence order: ENV > dir-conf > user-conf > defaults
func InitViper() {
	viper.SetConfigType(ConfigType)

	// Defaults come from the key registry so `config schema` and runtime agree
	for key, def := range ConfigRegistry {
		viper.SetDefault(key, def.Default)
	}

	// Enable environment variable support (highest precedence)
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

// LoadConfig reads config files in precedence order
// Precedence: ENV > ./dist.yaml > ~/.config/dist/config.yaml > defaults
func LoadConfig() error {
	viper.SetConfigName(ConfigFileName)
	viper.AddConfigPath(GlobalPaths.ConfigDir)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read user config file: %w", err)
		}
	} else {
		if err := validateConfigFile(GlobalPaths.ConfigDir, ScopeUser); err != nil {
			return err
		}
		warnMisplacedKeys(GlobalPaths.ConfigDir, ScopeUser)
	}

	// Local directory config overrides user config
	viper.SetConfigName(LocalConfigFile)
	viper.AddConfigPath(".")

	if err := viper.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read local config file: %w", err)
		}
	} else {
		if err := validateConfigFile(".", ScopeRepo); err != nil {
			return err
		}
		warnMisplacedKeys(".", ScopeRepo)
	}

	return nil
}

// GetUseTUI returns the use-tui configuration value
func GetUseTUI() bool {
	return viper.GetBool("use-tui")
}

// GetLogLevel returns the log-level configuration value
func GetLogLevel() string {
	return viper.GetString("log-level")
}

// readScopeFile loads a single config file into an isolated Viper instance.
// Returns nil when the file does not exist.
func readScopeFile(configDir string, scope ConfigScope) (*viper.Viper, string, error) {
	configPath := filepath.Join(".", LocalConfigFile+DefaultConfigExt)
	if scope == ScopeUser {
		configPath = filepath.Join(configDir, ConfigFileName+DefaultConfigExt)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, configPath, nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType(ConfigType)
	if err := v.ReadInConfig(); err != nil {
		return nil, configPath, err
	}
	return v, configPath, nil
}

// validateConfigFile validates that a config file contains only known keys,
// allowed in the given scope, with valid values
func validateConfigFile(configDir string, scope ConfigScope) error {
	v, configPath, err := readScopeFile(configDir, scope)
	if err != nil {
		return fmt.Errorf("failed to read config file for validation: %w", err)
	}
	if v == nil {
		return nil
	}

	for _, key := range flattenKeys(v.AllSettings(), "") {
		if err := ValidateKeyScope(key, scope); err != nil {
			return fmt.Errorf("invalid key in config file %s: %w", configPath, err)
		}
		if err := ValidateValue(key, v.Get(key), scope); err != nil {
			return fmt.Errorf("invalid value in config file %s: %w", configPath, err)
		}
	}

	return nil
}

// warnMisplacedKeys logs keys that are conventionally set in the other scope.
// All keys are allowed in any scope unless forbidden; this only informs.
func warnMisplacedKeys(configDir string, scope ConfigScope) {
	v, _, err := readScopeFile(configDir, scope)
	if err != nil || v == nil {
		return
	}

	for _, key := range flattenKeys(v.AllSettings(), "") {
		def := GetKeyDefinition(key)
		if def == nil {
			continue
		}

		var recommended ConfigScope
		switch {
		case def.RepoConstraints != nil && def.RepoConstraints.Forbidden:
			recommended = ScopeUser
		case def.UserConstraints != nil && def.UserConstraints.Forbidden:
			recommended = ScopeRepo
		default:
			continue
		}

		if recommended != scope {
			log.Debug("Config key in unconventional scope",
				"key", key,
				"scope", getScopeName(scope),
				"typical", getConfigPath(recommended))
		}
	}
}

// BindFlags binds all relevant cobra flags to Viper
func BindFlags(flags *pflag.FlagSet) error {
	flagsToBind := []string{
		"use-tui",
		"log-level",
	}

	for _, flagName := range flagsToBind {
		if err := viper.BindPFlag(flagName, flags.Lookup(flagName)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flagName, err)
		}
	}

	return nil
}
