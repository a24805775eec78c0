// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"

	"github.com/Work-Fort/Dist/pkg/config"
	"github.com/spf13/cobra"
)

func newSetCmd() *cobra.Command {
	var scope scopeFlag

	cmd := &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Set configuration value",
		Long: `Set a configuration key to a value.

Keys use dot notation for nested values (e.g., index.url).

Boolean values support natural language:
  - true:  true, yes, on, enable, enabled
  - false: false, no, off, disable, disabled

Values are validated against the key type; durations use Go syntax (e.g., 30s).`,
		Args: cobra.ExactArgs(2),
		Example: `  # Set boolean values (multiple formats supported)
  dist config set use-tui true
  dist config set use-tui enable
  dist config set use-tui yes

  # Set string values
  dist config set log-level debug
  dist config set distribution.type nballerina

  # Set nested values with dot notation
  dist config set index.url https://dist.example.com/index.json

  # Set in user config instead of local
  dist config set --global index.token s3cr3t`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			if err := config.SetConfigValue(key, value, scope.scope()); err != nil {
				return err
			}

			scopeName, configFile := scope.describe()
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s (%s: %s)\n", key, value, scopeName, configFile)

			return nil
		},
	}

	scope.register(cmd)
	return cmd
}
