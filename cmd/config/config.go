// SPDX-License-Identifier: Apache-2.0
package config

import (
	"github.com/spf13/cobra"

	"github.com/Work-Fort/Dist/pkg/config"
)

// NewConfigCmd creates the config command and its subcommands
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage dist configuration",
		Long: `Manage dist configuration settings.

Configuration precedence (highest to lowest):
  1. Environment variables (DIST_*)
  2. Local config (./dist.yaml)
  3. User config (~/.config/dist/config.yaml)
  4. Defaults

By default, config commands operate on local config (./dist.yaml).
Use --global to operate on user config instead.`,
		Example: `  # Set local config (project-specific)
  dist config set use-tui false
  dist config set list.marking identifier

  # Set global config (user preferences)
  dist config set --global index.token s3cr3t
  dist config set --global http.timeout 10s

  # Get configuration value
  dist config get use-tui

  # Remove configuration value
  dist config unset list.marking
  dist config unset --global index.token

  # List all configuration
  dist config list`,
	}

	// Add subcommands
	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newUnsetCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newSchemaCmd())

	return cmd
}

// scopeFlag selects the config file a write goes to
type scopeFlag struct {
	global bool
}

func (f *scopeFlag) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.global, "global", false, "Operate on user config instead of local config")
}

func (f *scopeFlag) scope() config.ConfigScope {
	if f.global {
		return config.ScopeUser
	}
	return config.ScopeRepo
}

// describe returns the scope label and the file it maps to, for messages
func (f *scopeFlag) describe() (string, string) {
	if f.global {
		return "global", "~/.config/dist/" + config.ConfigFileName + config.DefaultConfigExt
	}
	return "local", "./" + config.LocalConfigFile + config.DefaultConfigExt
}
