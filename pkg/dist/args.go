// SPDX-License-Identifier: Apache-2.0
package dist

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// HelpArg is the legacy positional spelling of --help
const HelpArg = "?"

// UsageError reports invalid command-line usage. Callers print it along
// with the command's usage text.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

// IsUsageError reports whether err is, or wraps, a UsageError
func IsUsageError(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}

// ListArgs is the validated input of the list command
type ListArgs struct {
	LocalOnly bool
	Help      bool
}

// ParseListArgs validates list's positional arguments.
// list takes none; "?" anywhere asks for help.
func ParseListArgs(args []string, localOnly, help bool) (ListArgs, error) {
	parsed := ListArgs{LocalOnly: localOnly, Help: help || hasHelpArg(args)}
	if parsed.Help {
		return parsed, nil
	}

	switch {
	case len(args) > 1:
		return parsed, &UsageError{Msg: "too many arguments given"}
	case len(args) == 1:
		return parsed, &UsageError{Msg: fmt.Sprintf("unknown command %s", args[0])}
	}
	return parsed, nil
}

// PullArgs is the validated input of the pull command
type PullArgs struct {
	Name string
	Help bool
}

// ParsePullArgs validates pull's positional arguments; exactly one name is required
func ParsePullArgs(args []string, help bool) (PullArgs, error) {
	parsed := PullArgs{Help: help || hasHelpArg(args)}
	if parsed.Help {
		return parsed, nil
	}

	switch len(args) {
	case 0:
		return parsed, &UsageError{Msg: "distribution is not provided"}
	case 1:
		parsed.Name = args[0]
		return parsed, nil
	default:
		return parsed, &UsageError{Msg: "too many arguments given"}
	}
}

// Pull hands a validated name to the installer exactly once, always
// allowing an existing installation to be replaced
func Pull(ctx context.Context, out io.Writer, installer Installer, args PullArgs) error {
	if args.Name == "" {
		return &UsageError{Msg: "distribution is not provided"}
	}
	return installer.Install(ctx, out, args.Name, true)
}

func hasHelpArg(args []string) bool {
	for _, a := range args {
		if a == HelpArg {
			return true
		}
	}
	return false
}
