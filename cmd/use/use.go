// SPDX-License-Identifier: Apache-2.0
package use

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Work-Fort/Dist/cmd/cmdutil"
	"github.com/Work-Fort/Dist/pkg/config"
)

// NewUseCmd creates the use command
func NewUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <distribution>",
		Short: "Set the active distribution",
		Long: `Point the current selection at an installed distribution.

The name may be a full identifier or a bare version of the configured
distribution type.`,
		Example: `  dist use jballerina-1.2.0
  dist use 1.2.0`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return cmdutil.CompleteInstalled(args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			m := cmdutil.NewManager()

			id, err := m.Use(args[0])
			if err != nil {
				return err
			}
			log.Debug("Switched active distribution", "id", id)

			fmt.Fprintln(cmd.OutOrStdout(), config.CurrentTheme.SuccessMessage(fmt.Sprintf("%s is now active", id)))
			return nil
		},
	}
}
