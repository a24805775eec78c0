// SPDX-License-Identifier: Apache-2.0
package current

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Work-Fort/Dist/cmd/cmdutil"
)

// NewCurrentCmd creates the current command
func NewCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the active distribution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := cmdutil.NewManager().Current()
			if err != nil {
				return err
			}
			if name == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No active distribution")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
}
