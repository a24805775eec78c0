// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"

	"github.com/Work-Fort/Dist/pkg/config"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all configuration values",
		Long: `List all configuration values with their sources.

Shows all configuration keys currently set, along with their values
and where they come from (ENV, local config, user config, or default).

Output format: key = value (source)`,
		Example: `  # List all configuration
  dist config list

  # Example output:
  # list.marking = identifier (from ./dist.yaml)
  # http.timeout = 30s (default)
  # distribution.type = nballerina (from ~/.config/dist/config.yaml)
  # index.token = s3cr3t (from ~/.config/dist/config.yaml)
  # log-level = debug (default)
  # use-tui = false (from ENV: DIST_USE_TUI)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := config.ListConfigValues()
			if err != nil {
				return err
			}

			if len(values) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No configuration set")
				return nil
			}

			// Display each key with its source
			for _, cv := range values {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %v (%s)\n", cv.Key, cv.Value, cv.Source)
			}

			// Show configuration precedence info
			fmt.Fprintln(cmd.OutOrStdout(), "\n" + config.CurrentTheme.SubtleStyle().Render("Configuration precedence: ENV > local config > user config > defaults"))

			return nil
		},
	}

	return cmd
}
