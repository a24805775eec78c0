// SPDX-License-Identifier: Apache-2.0
package cmdutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Work-Fort/Dist/pkg/config"
	"github.com/Work-Fort/Dist/pkg/dist"
	"github.com/Work-Fort/Dist/pkg/manager"
	"github.com/Work-Fort/Dist/pkg/ui"
)

// IsInteractive checks if stdin is connected to a terminal AND the user wants TUI mode
func IsInteractive() bool {
	// Check both terminal capability and user preference
	return term.IsTerminal(int(os.Stdin.Fd())) && config.GetUseTUI()
}

// NewManager builds a manager from the loaded configuration
func NewManager() *manager.Manager {
	return manager.New(manager.OptionsFromConfig())
}

// NewLister builds the lister for the configured type and marking rule
func NewLister(repo dist.Repository) (*dist.Lister, error) {
	rule, err := dist.ParseMarkingRule(config.GetMarkingRule())
	if err != nil {
		return nil, err
	}
	return &dist.Lister{
		Repo: repo,
		Type: config.GetDistributionType(),
		Rule: rule,
	}, nil
}

// CompleteInstalled offers installed distribution names for the first argument
func CompleteInstalled(args []string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	names, err := NewManager().ListLocal(context.Background())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// InstallTask is work that needs a manager wired to progress reporting
type InstallTask func(ctx context.Context, m *manager.Manager, out io.Writer) error

// RunWithProgress runs task with download progress shown on stderr.
// In TUI mode the task's output is held back until the progress view
// exits; otherwise a plain progress bar is drawn when stderr is a terminal.
func RunWithProgress(ctx context.Context, out io.Writer, title string, task InstallTask) error {
	if IsInteractive() {
		var buf bytes.Buffer
		err := ui.RunProgress(ctx, title, func(ctx context.Context, progress func(float64), status func(string)) error {
			opts := manager.OptionsFromConfig()
			opts.Progress = progress
			opts.Status = status
			return task(ctx, manager.New(opts), &buf)
		})
		if _, werr := io.Copy(out, &buf); werr != nil && err == nil {
			err = werr
		}
		return err
	}

	opts := manager.OptionsFromConfig()
	if term.IsTerminal(int(os.Stderr.Fd())) {
		bar := newProgressBar(title)
		opts.Progress = func(p float64) {
			_ = bar.Set(int(p * 100))
		}
		opts.Status = func(s string) {
			bar.Describe(s)
		}
		defer func() {
			_ = bar.Finish()
			fmt.Fprintln(os.Stderr)
		}()
	} else {
		opts.Status = func(s string) {
			log.Info(s)
		}
	}

	return task(ctx, manager.New(opts), out)
}

func newProgressBar(title string) *progressbar.ProgressBar {
	return progressbar.NewOptions(100,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(title),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
}
