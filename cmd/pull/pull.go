// SPDX-License-Identifier: Apache-2.0
package pull

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Work-Fort/Dist/cmd/cmdutil"
	"github.com/Work-Fort/Dist/pkg/dist"
	"github.com/Work-Fort/Dist/pkg/manager"
)

// NewPullCmd creates the pull command
func NewPullCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull <distribution>",
		Short: "Download and install a distribution",
		Long: `Download a distribution from the remote index and install it.

The name may be a full identifier (jballerina-1.2.0), a bare version
(1.2.0 or v1.2.0) of the configured distribution type, or 'latest'.
An existing installation of the same distribution is replaced. The first
distribution installed becomes the active one.`,
		Example: `  # Install a specific version
  dist pull jballerina-1.2.0

  # Bare versions use the configured distribution type
  dist pull 1.2.0

  # Newest version in the index
  dist pull latest`,
		Args:              cobra.ArbitraryArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := dist.ParsePullArgs(args, false)
			if err != nil {
				return err
			}
			if parsed.Help {
				return cmd.Help()
			}

			title := fmt.Sprintf("Pulling %s", parsed.Name)
			return cmdutil.RunWithProgress(cmd.Context(), cmd.OutOrStdout(), title,
				func(ctx context.Context, m *manager.Manager, out io.Writer) error {
					return dist.Pull(ctx, out, m, parsed)
				})
		},
	}

	return cmd
}
