// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func styledHelpFunc(cmd *cobra.Command, args []string) {
	renderMarkdown(GenerateHelpMarkdown(cmd))
}

func styledUsageFunc(cmd *cobra.Command) error {
	var md strings.Builder
	md.WriteString("## Usage\n\n")
	writeCommandSections(&md, cmd, "###")
	renderMarkdown(md.String())
	return nil
}

// GenerateHelpMarkdown creates markdown for the help output (exported for man page generation)
func GenerateHelpMarkdown(cmd *cobra.Command) string {
	var md strings.Builder

	fmt.Fprintf(&md, "# %s\n\n", cmd.Name())
	if desc := cmd.Long; desc != "" {
		fmt.Fprintf(&md, "%s\n\n", desc)
	} else if cmd.Short != "" {
		fmt.Fprintf(&md, "%s\n\n", cmd.Short)
	}

	if cmd.Runnable() {
		md.WriteString("## Usage\n\n")
	}
	writeCommandSections(&md, cmd, "##")

	if cmd.Example != "" {
		fmt.Fprintf(&md, "## Examples\n\n```\n%s\n```\n\n", cmd.Example)
	}

	fmt.Fprintf(&md, "Use `%s [command] --help` for more information about a command.\n", cmd.CommandPath())
	return md.String()
}

// writeCommandSections writes usage, aliases, subcommands and flags.
// heading is the markdown prefix for section titles.
func writeCommandSections(md *strings.Builder, cmd *cobra.Command, heading string) {
	if cmd.Runnable() {
		fmt.Fprintf(md, "```\n%s\n```\n\n", cmd.UseLine())
	}

	if len(cmd.Aliases) > 0 {
		fmt.Fprintf(md, "%s Aliases\n\n`%s`\n\n", heading, strings.Join(cmd.Aliases, "`, `"))
	}

	var subs []string
	for _, sub := range cmd.Commands() {
		if sub.IsAvailableCommand() && !sub.IsAdditionalHelpTopicCommand() {
			subs = append(subs, fmt.Sprintf("- **%s** - %s", sub.Name(), sub.Short))
		}
	}
	if len(subs) > 0 {
		fmt.Fprintf(md, "%s Available Commands\n\n%s\n\n", heading, strings.Join(subs, "\n"))
	}

	if cmd.HasAvailableLocalFlags() {
		fmt.Fprintf(md, "%s Flags\n\n```\n%s\n```\n\n", heading, cmd.LocalFlags().FlagUsages())
	}
	if cmd.HasAvailableInheritedFlags() {
		fmt.Fprintf(md, "%s Global Flags\n\n```\n%s\n```\n\n", heading, cmd.InheritedFlags().FlagUsages())
	}
}

// renderMarkdown prints markdown through glamour, falling back to plain text
func renderMarkdown(markdown string) {
	width := 100
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			width = w
		}
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		fmt.Println(markdown)
		return
	}

	rendered, err := r.Render(markdown)
	if err != nil {
		fmt.Println(markdown)
		return
	}

	fmt.Println(strings.TrimRight(rendered, " \n"))
}
