// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Work-Fort/Dist/pkg/config"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Show a configuration value and where it came from",
		Long: `Show the effective value of a dist setting.

The value is resolved from DIST_* environment variables, then ./dist.yaml,
then ~/.config/dist/config.yaml, then the built-in default. The source of
the winning value is printed after it.

Known keys:
` + keyTable(),
		Args: cobra.ExactArgs(1),
		Example: `  # Which index does pull talk to?
  dist config get index.url

  # Is list marking the legacy or the identifier form?
  dist config get list.marking
  # list.marking = legacy (default)

  DIST_HTTP_TIMEOUT=5s dist config get http.timeout
  # http.timeout = 5s (from ENV: DIST_HTTP_TIMEOUT)`,
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return knownKeys(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if config.GetKeyDefinition(key) == nil {
				return fmt.Errorf("unknown configuration key %q (known: %s)", key, strings.Join(knownKeys(), ", "))
			}

			v, err := config.GetConfigValue(key)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v (%s)\n", v.Key, v.Value, v.Source)
			return nil
		},
	}
}

func knownKeys() []string {
	return slices.Sorted(maps.Keys(config.ConfigRegistry))
}

// keyTable renders the registry as an indented key/description list
func keyTable() string {
	keys := knownKeys()
	width := 0
	for _, k := range keys {
		width = max(width, len(k))
	}
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "  %-*s  %s\n", width, k, config.ConfigRegistry[k].Description)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
