// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Work-Fort/Dist/cmd/clean"
	configCmd "github.com/Work-Fort/Dist/cmd/config"
	"github.com/Work-Fort/Dist/cmd/current"
	"github.com/Work-Fort/Dist/cmd/list"
	"github.com/Work-Fort/Dist/cmd/pull"
	"github.com/Work-Fort/Dist/cmd/remove"
	"github.com/Work-Fort/Dist/cmd/use"
	"github.com/Work-Fort/Dist/cmd/version"
	"github.com/Work-Fort/Dist/pkg/config"
	"github.com/Work-Fort/Dist/pkg/dist"
	"github.com/Work-Fort/Dist/pkg/ui"
)

var (
	// Version is set at build time via ldflags
	// -ldflags "-X github.com/Work-Fort/Dist/cmd.Version=x.y.z"
	Version string

	logLevel string
	useTUI   bool
)

var rootCmd = &cobra.Command{
	Use:   "dist",
	Short: "Runtime distribution manager",
	Long: `dist - runtime distribution manager

List, download, and switch between runtime distributions published in a
remote index. Files are stored following the XDG Base Directory
specification.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.InitDirs(); err != nil {
			return err
		}

		// Config files can only be read once the directories exist
		if err := config.LoadConfig(); err != nil {
			return err
		}

		useTUI = config.GetUseTUI()
		logLevel = config.GetLogLevel()

		return setupLogging(logLevel, filepath.Join(config.GlobalPaths.DataDir, "debug.log"))
	},
}

// setupLogging points the default logger at a JSON log file
func setupLogging(levelName, logFile string) error {
	if levelName == "disabled" {
		log.SetOutput(io.Discard)
		return nil
	}

	level, err := log.ParseLevel(levelName)
	if err != nil {
		level = log.DebugLevel
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	log.SetDefault(log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02T15:04:05.000Z07:00",
		Level:           level,
		ReportCaller:    true,
		Formatter:       log.JSONFormatter,
	}))
	return nil
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	cmd, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	if errors.Is(err, ui.ErrCancelled) {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	theme := config.CurrentTheme
	fmt.Fprintf(os.Stderr, "%s %s\n", theme.ErrorStyle().Render("Error:"), err.Error())

	if dist.IsUsageError(err) {
		fmt.Fprintf(os.Stderr, "\nUsage:\n  %s\n\nRun '%s --help' for details.\n", cmd.UseLine(), cmd.CommandPath())
	}
	os.Exit(1)
}

func init() {
	// Replaced by the file logger in PersistentPreRunE
	log.SetReportTimestamp(false)
	log.SetLevel(log.InfoLevel)

	config.InitViper()

	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "debug", "Log level: disabled, debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&useTUI, "use-tui", true, "Enable terminal UI mode")
	config.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		list.NewListCmd(),
		pull.NewPullCmd(),
		use.NewUseCmd(),
		current.NewCurrentCmd(),
		remove.NewRemoveCmd(),
		clean.NewCleanCmd(),
		configCmd.NewConfigCmd(),
		version.NewVersionCmd(Version),
	)

	rootCmd.SetHelpFunc(styledHelpFunc)
	rootCmd.SetUsageFunc(styledUsageFunc)
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(newCompletionCmd())
}

// GetRootCommand returns the root command for external use (e.g., man page generation)
func GetRootCommand() *cobra.Command {
	return rootCmd
}
