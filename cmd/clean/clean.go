// SPDX-License-Identifier: Apache-2.0
package clean

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Work-Fort/Dist/cmd/cmdutil"
	"github.com/Work-Fort/Dist/pkg/config"
	"github.com/Work-Fort/Dist/pkg/local"
	"github.com/Work-Fort/Dist/pkg/ui"
)

// NewCleanCmd creates the clean command
func NewCleanCmd() *cobra.Command {
	var (
		cache          bool
		removeInactive bool
		force          bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean dist data",
		Long: `Clean the download cache and optionally remove inactive distributions.

Without flags only the cache is emptied.`,
		Example: `  # Empty the download cache
  dist clean

  # Remove every distribution except the active one, then empty the cache
  dist clean --remove-inactive --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if removeInactive {
				if !force && cmdutil.IsInteractive() {
					theme := config.CurrentTheme
					confirmed, err := ui.Confirm(theme.WarningIndicator()+"  Remove all inactive distributions?", "The active distribution and its selection are kept.")
					if err != nil {
						return err
					}
					if !confirmed {
						return ui.ErrCancelled
					}
				}

				if err := cleanInactive(out, cmdutil.NewManager().Store()); err != nil {
					return err
				}
				cache = true
			}

			if cache || !removeInactive {
				return cleanCache(out, config.GlobalPaths.CacheDir)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&cache, "cache", "c", false, "Empty the download cache")
	cmd.Flags().BoolVarP(&removeInactive, "remove-inactive", "i", false, "Remove all distributions except the active one")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func cleanCache(out io.Writer, cacheDir string) error {
	log.Debug("Cleaning cache directory", "dir", cacheDir)

	theme := config.CurrentTheme
	subtleStyle := theme.SubtleStyle()
	itemStyle := theme.ErrorStyle()

	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(out, theme.InfoMessage("Cache directory doesn't exist"))
			return nil
		}
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	var removedItems []string
	for _, entry := range entries {
		path := filepath.Join(cacheDir, entry.Name())
		log.Debugf("Removing %s", entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removedItems = append(removedItems, entry.Name())
	}

	if len(removedItems) == 0 {
		fmt.Fprintln(out, theme.SuccessMessage("Cache empty"))
		return nil
	}

	fmt.Fprintln(out, theme.SuccessMessage("Cache cleaned"))
	fmt.Fprintln(out)
	for _, item := range removedItems {
		fmt.Fprintln(out, subtleStyle.Render("  • ")+itemStyle.Render(item))
	}
	return nil
}

func cleanInactive(out io.Writer, store *local.Store) error {
	theme := config.CurrentTheme
	subtleStyle := theme.SubtleStyle()
	itemStyle := theme.ErrorStyle()

	current, err := store.Current()
	if err != nil {
		return err
	}
	names, err := store.List()
	if err != nil {
		return err
	}

	var (
		removedItems []string
		freed        int64
	)
	for _, name := range names {
		if name == current {
			continue
		}
		size, err := store.Size(name)
		if err != nil {
			log.Debug("Failed to size distribution", "name", name, "err", err)
		}
		if err := store.Remove(name); err != nil {
			return err
		}
		freed += size
		removedItems = append(removedItems, fmt.Sprintf("%s (%s)", name, humanize.IBytes(uint64(size))))
	}

	if len(removedItems) == 0 {
		fmt.Fprintln(out, theme.InfoMessage("No inactive distributions to remove"))
		fmt.Fprintln(out)
		return nil
	}

	fmt.Fprintln(out, theme.SuccessMessage(fmt.Sprintf("Removed %d inactive distribution(s), %s freed", len(removedItems), humanize.IBytes(uint64(freed)))))
	fmt.Fprintln(out)
	for _, item := range removedItems {
		fmt.Fprintln(out, subtleStyle.Render("  • ")+itemStyle.Render(item))
	}
	fmt.Fprintln(out)
	return nil
}
