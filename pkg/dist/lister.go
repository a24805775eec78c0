// SPDX-License-Identifier: Apache-2.0
package dist

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// ErrServiceUnavailable is reported in place of a listing when any
// collaborator fails
var ErrServiceUnavailable = errors.New("update service unavailable")

const (
	localHeader  = "Distributions available locally:"
	remoteHeader = "Distributions available remotely:"
)

// Installer installs a named distribution
type Installer interface {
	Install(ctx context.Context, out io.Writer, name string, overwrite bool) error
}

// Repository is everything list and pull need from the outside world
type Repository interface {
	// CurrentVersion returns the active version, or "" when none is active
	CurrentVersion(ctx context.Context) (string, error)
	// ListLocal returns the names of the installed distribution directories
	ListLocal(ctx context.Context) ([]string, error)
	// ListRemote returns the distributions offered by the remote index
	ListRemote(ctx context.Context) ([]Distribution, error)
	Installer
}

// Entry is one marked line of a listing
type Entry struct {
	Name    string `json:"name" yaml:"name"`
	Current bool   `json:"current" yaml:"current"`
}

// String renders the entry with its marker
func (e Entry) String() string {
	return marker(e.Current) + e.Name
}

// Report is a fully collected listing
type Report struct {
	Active    string  `json:"active" yaml:"active"`
	LocalOnly bool    `json:"-" yaml:"-"`
	Local     []Entry `json:"local" yaml:"local"`
	Remote    []Entry `json:"remote,omitempty" yaml:"remote,omitempty"`
}

// Lines returns the text rendering of the report
func (r *Report) Lines() []string {
	lines := []string{localHeader, ""}
	for _, e := range r.Local {
		lines = append(lines, e.String())
	}
	lines = append(lines, "")

	if r.LocalOnly {
		return lines
	}

	lines = append(lines, remoteHeader, "")
	for _, e := range r.Remote {
		lines = append(lines, e.String())
	}
	return append(lines, "")
}

// Lister produces the combined local and remote report
type Lister struct {
	Repo Repository
	Type string
	Rule MarkingRule
}

// Collect gathers the whole report before anything is written, so a
// failing collaborator never leaves a partial listing behind.
// Errors wrap ErrServiceUnavailable.
func (l *Lister) Collect(ctx context.Context, localOnly bool) (*Report, error) {
	current, err := l.Repo.CurrentVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve active version: %v", ErrServiceUnavailable, err)
	}

	report := &Report{LocalOnly: localOnly}
	if current != "" {
		report.Active = Compose(l.Type, current)
	}
	used := ActiveIdentifier(l.Type, current)

	names, err := l.Repo.ListLocal(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list local: %v", ErrServiceUnavailable, err)
	}
	report.Local = make([]Entry, 0, len(names))
	for _, name := range names {
		candidate := LocalCandidate(name)
		report.Local = append(report.Local, Entry{Name: candidate, Current: IsCurrent(used, candidate)})
	}

	if localOnly {
		return report, nil
	}

	remote, err := l.Repo.ListRemote(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: query index: %v", ErrServiceUnavailable, err)
	}
	report.Remote = make([]Entry, 0, len(remote))
	for _, d := range remote {
		candidate := l.Rule.RemoteCandidate(l.Type, d)
		report.Remote = append(report.Remote, Entry{Name: candidate, Current: IsCurrent(used, candidate)})
	}

	return report, nil
}

// List writes the text listing to out. Collaborator failures are reported
// as a single ErrServiceUnavailable line and do not produce an error;
// only write failures are returned.
func (l *Lister) List(ctx context.Context, out io.Writer, localOnly bool) error {
	report, err := l.Collect(ctx, localOnly)
	if err != nil {
		log.Debug("Listing failed", "err", err)
		_, werr := fmt.Fprintln(out, ErrServiceUnavailable.Error())
		return werr
	}

	for _, line := range report.Lines() {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}
