// SPDX-License-Identifier: Apache-2.0
package list

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Work-Fort/Dist/cmd/cmdutil"
	"github.com/Work-Fort/Dist/pkg/dist"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var (
		localOnly bool
		output    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List local and remote distributions",
		Long: `List the distributions installed locally and those offered by the
remote index. The active distribution is marked with '*'.

If the active version, the local store or the index cannot be read, a
single 'update service unavailable' line is printed instead.`,
		Example: `  # List local and remote distributions
  dist list

  # Only installed distributions
  dist list --local

  # Machine readable report
  dist list --output json`,
		Args:              cobra.ArbitraryArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := dist.ParseListArgs(args, localOnly, false)
			if err != nil {
				return err
			}
			if parsed.Help {
				return cmd.Help()
			}

			lister, err := cmdutil.NewLister(cmdutil.NewManager())
			if err != nil {
				return err
			}

			return run(cmd.Context(), cmd.OutOrStdout(), lister, parsed, output)
		},
	}

	cmd.Flags().BoolVar(&localOnly, "local", false, "Only list locally installed distributions")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format: text, json, or yaml")
	_ = cmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{outputText, outputJSON, outputYAML}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func run(ctx context.Context, out io.Writer, lister *dist.Lister, args dist.ListArgs, output string) error {
	switch output {
	case outputText:
		return lister.List(ctx, out, args.LocalOnly)
	case outputJSON, outputYAML:
	default:
		return &dist.UsageError{Msg: fmt.Sprintf("invalid output format: %s (must be text, json, or yaml)", output)}
	}

	// Structured output has no diagnostic line to fall back on
	report, err := lister.Collect(ctx, args.LocalOnly)
	if err != nil {
		return err
	}

	if output == outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}
