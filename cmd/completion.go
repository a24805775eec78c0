// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// shellCompletion describes one supported shell. PowerShell is left out.
type shellCompletion struct {
	name    string
	install string
	gen     func(root *cobra.Command, w io.Writer, descriptions bool) error
}

var shells = []shellCompletion{
	{
		name: "bash",
		install: `Requires the 'bash-completion' package.

	source <(%[1]s completion bash)
	%[1]s completion bash > /etc/bash_completion.d/%[1]s`,
		gen: func(root *cobra.Command, w io.Writer, descriptions bool) error {
			return root.GenBashCompletionV2(w, descriptions)
		},
	},
	{
		name: "zsh",
		install: `Enable completion once with: echo "autoload -U compinit; compinit" >> ~/.zshrc

	source <(%[1]s completion zsh)
	%[1]s completion zsh > "${fpath[1]}/_%[1]s"`,
		gen: func(root *cobra.Command, w io.Writer, descriptions bool) error {
			if !descriptions {
				return root.GenZshCompletionNoDesc(w)
			}
			return root.GenZshCompletion(w)
		},
	},
	{
		name: "fish",
		install: `	%[1]s completion fish | source
	%[1]s completion fish > ~/.config/fish/completions/%[1]s.fish`,
		gen: func(root *cobra.Command, w io.Writer, descriptions bool) error {
			return root.GenFishCompletion(w, descriptions)
		},
	},
}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "completion",
		Short:             "Generate the autocompletion script for the specified shell",
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
	}

	for _, sh := range shells {
		var noDesc bool
		sub := &cobra.Command{
			Use:   sh.name,
			Short: fmt.Sprintf("Generate the autocompletion script for %s", sh.name),
			Long: fmt.Sprintf("Generate the autocompletion script for the %s shell.\n\n", sh.name) +
				fmt.Sprintf(sh.install, rootCmd.Name()) +
				"\n\nStart a new shell for the setup to take effect.",
			Args:                  cobra.NoArgs,
			DisableFlagsInUseLine: true,
			ValidArgsFunction:     cobra.NoFileCompletions,
			RunE: func(cmd *cobra.Command, args []string) error {
				return sh.gen(cmd.Root(), os.Stdout, !noDesc)
			},
		}
		sub.Flags().BoolVar(&noDesc, "no-descriptions", false, "disable completion descriptions")
		cmd.AddCommand(sub)
	}

	return cmd
}
