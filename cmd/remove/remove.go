// SPDX-License-Identifier: Apache-2.0
package remove

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Work-Fort/Dist/cmd/cmdutil"
	"github.com/Work-Fort/Dist/pkg/config"
	"github.com/Work-Fort/Dist/pkg/ui"
)

// NewRemoveCmd creates the remove command
func NewRemoveCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "remove <distribution>",
		Aliases: []string{"rm"},
		Short:   "Remove an installed distribution",
		Long: `Delete an installed distribution. If it is the active one, the
current selection is cleared as well.

A confirmation prompt is shown in interactive mode unless --yes is given.
Removing the active distribution requires typing its identifier.`,
		Example: `  dist remove jballerina-1.1.0
  dist remove 1.1.0 --yes`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return cmdutil.CompleteInstalled(args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			theme := config.CurrentTheme
			m := cmdutil.NewManager()

			id, err := m.Resolve(args[0])
			if err != nil {
				return err
			}

			if !yes && cmdutil.IsInteractive() {
				current, err := m.Current()
				if err != nil {
					return err
				}

				var confirmed bool
				if id == current {
					confirmed, err = ui.TypedConfirm(theme.WarningIndicator()+"  "+id+" is the active distribution. Type its name to remove it:", id)
				} else {
					confirmed, err = ui.Confirm(fmt.Sprintf("%s  Remove %s?", theme.WarningIndicator(), id), "")
				}
				if err != nil {
					return err
				}
				if !confirmed {
					return ui.ErrCancelled
				}
			}

			if _, err := m.Remove(id); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), theme.SuccessMessage(fmt.Sprintf("Removed %s", id)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
