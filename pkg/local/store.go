// SPDX-License-Identifier: Apache-2.0

// Package local manages the installed distributions directory and the
// symlink selecting the active one.
package local

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrNotInstalled is returned when a named distribution has no directory
var ErrNotInstalled = errors.New("distribution not installed")

// Store is a directory holding one subdirectory per installed distribution
type Store struct {
	root        string
	currentLink string
}

// NewStore returns a store rooted at root whose active selection is the
// symlink at currentLink
func NewStore(root, currentLink string) *Store {
	return &Store{root: root, currentLink: currentLink}
}

// Root returns the distributions directory
func (s *Store) Root() string {
	return s.root
}

// List returns the installed distribution names in directory order.
// Plain files and hidden entries (staging directories) are skipped; a
// missing root is an empty store.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read distributions directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Path returns the directory a distribution is installed into
func (s *Store) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid distribution name %q", name)
	}
	return filepath.Join(s.root, name), nil
}

// IsInstalled reports whether name has a directory in the store
func (s *Store) IsInstalled(name string) bool {
	path, err := s.Path(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Current returns the name of the active distribution, or "" when the
// link is absent or points outside the store
func (s *Store) Current() (string, error) {
	target, err := os.Readlink(s.currentLink)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read current link: %w", err)
	}

	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(s.currentLink), target)
	}
	if filepath.Dir(filepath.Clean(target)) != filepath.Clean(s.root) {
		log.Debug("Current link points outside distributions dir", "target", target)
		return "", nil
	}
	return filepath.Base(target), nil
}

// SetCurrent points the active link at name, replacing any previous link
func (s *Store) SetCurrent(name string) error {
	if !s.IsInstalled(name) {
		return fmt.Errorf("%w: %s", ErrNotInstalled, name)
	}
	path, _ := s.Path(name)

	if err := os.MkdirAll(filepath.Dir(s.currentLink), 0755); err != nil {
		return fmt.Errorf("failed to create link directory: %w", err)
	}

	// Build the new link beside the old one and rename over it
	tmp := s.currentLink + ".tmp"
	_ = os.Remove(tmp)
	if err := os.Symlink(path, tmp); err != nil {
		return fmt.Errorf("failed to create current link: %w", err)
	}
	if err := os.Rename(tmp, s.currentLink); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to update current link: %w", err)
	}

	log.Debug("Active distribution changed", "name", name)
	return nil
}

// ClearCurrent removes the active link if present
func (s *Store) ClearCurrent() error {
	if err := os.Remove(s.currentLink); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove current link: %w", err)
	}
	return nil
}

// Remove deletes an installed distribution, clearing the active link when
// it pointed at it
func (s *Store) Remove(name string) error {
	if !s.IsInstalled(name) {
		return fmt.Errorf("%w: %s", ErrNotInstalled, name)
	}
	path, _ := s.Path(name)

	current, err := s.Current()
	if err != nil {
		return err
	}
	if current == name {
		if err := s.ClearCurrent(); err != nil {
			return err
		}
	}

	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

// Size returns the total size in bytes of an installed distribution
func (s *Store) Size(name string) (int64, error) {
	path, err := s.Path(name)
	if err != nil {
		return 0, err
	}

	var total int64
	err = filepath.WalkDir(path, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
		}
		return nil
	})
	return total, err
}
