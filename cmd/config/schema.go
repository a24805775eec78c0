// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Work-Fort/Dist/pkg/config"
)

func newSchemaCmd() *cobra.Command {
	var (
		outputFile string
		scopeName  string
	)

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for dist config files",
		Long: `Print a JSON Schema (Draft 2020-12) describing dist.yaml and
~/.config/dist/config.yaml.

With --scope repo, keys that may not be committed to a project file
(index.token) are left out. With --scope user every key is included.`,
		Example: `  dist config schema --scope repo -o dist.schema.json

  # Point a YAML language server at it (.vscode/settings.json)
  { "yaml.schemas": { "./dist.schema.json": "dist.yaml" } }`,
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := parseSchemaScope(scopeName)
			if err != nil {
				return err
			}

			schema, err := config.GenerateJSONSchemaForScope(scope)
			if err != nil {
				return fmt.Errorf("failed to generate schema: %w", err)
			}

			if outputFile == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(schema))
				return nil
			}
			if err := os.WriteFile(outputFile, schema, 0644); err != nil {
				return fmt.Errorf("failed to write schema: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema written to %s\n", outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the schema to a file")
	cmd.Flags().StringVar(&scopeName, "scope", "", "Limit to keys valid in: user or repo")
	_ = cmd.RegisterFlagCompletionFunc("scope", cobra.FixedCompletions([]string{"user", "repo"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// parseSchemaScope maps the --scope value; empty means every key
func parseSchemaScope(name string) (*config.ConfigScope, error) {
	var s config.ConfigScope
	switch name {
	case "":
		return nil, nil
	case "user":
		s = config.ScopeUser
	case "repo":
		s = config.ScopeRepo
	default:
		return nil, fmt.Errorf("invalid scope %q (want user or repo)", name)
	}
	return &s, nil
}
