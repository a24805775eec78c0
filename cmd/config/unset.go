// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"

	"github.com/Work-Fort/Dist/pkg/config"
	"github.com/spf13/cobra"
)

func newUnsetCmd() *cobra.Command {
	var scope scopeFlag

	cmd := &cobra.Command{
		Use:   "unset [key]",
		Short: "Remove configuration value",
		Long: `Remove a configuration key from a config file.

Keys use dot notation for nested values (e.g., index.url).

**Note:**
  - Removing a parent key removes all nested values (e.g., unsetting 'index' removes 'index.url' and all other children)
  - Environment variables and defaults will still apply after removal`,
		Args: cobra.ExactArgs(1),
		Example: `  # Remove from local config
  dist config unset use-tui
  dist config unset list.marking

  # Remove from user config
  dist config unset --global index.token

  # Remove nested value
  dist config unset index.url

  # Remove parent (removes all children)
  dist config unset index`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			if err := config.UnsetConfigValue(key, scope.scope()); err != nil {
				return err
			}

			scopeName, configFile := scope.describe()
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s config (%s)\n", key, scopeName, configFile)

			return nil
		},
	}

	scope.register(cmd)
	return cmd
}
