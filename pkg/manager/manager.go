// SPDX-License-Identifier: Apache-2.0

// Package manager wires the local store, the remote index and the
// installer into the repository the commands work against
package manager

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Work-Fort/Dist/pkg/config"
	"github.com/Work-Fort/Dist/pkg/dist"
	"github.com/Work-Fort/Dist/pkg/index"
	"github.com/Work-Fort/Dist/pkg/install"
	"github.com/Work-Fort/Dist/pkg/local"
)

// Options configures a Manager
type Options struct {
	Paths        *config.Paths
	Type         string
	IndexURL     string
	Token        string
	IndexTimeout time.Duration
	HTTPClient   *http.Client

	Progress func(float64)
	Status   func(string)

	VerifySignatures bool
	PublicKeyPath    string
}

// OptionsFromConfig builds Options from the loaded configuration
func OptionsFromConfig() Options {
	return Options{
		Paths:            config.GlobalPaths,
		Type:             config.GetDistributionType(),
		IndexURL:         config.GetIndexURL(),
		Token:            config.GetIndexToken(),
		IndexTimeout:     config.GetHTTPTimeout(),
		VerifySignatures: config.GetVerifySignatures(),
		PublicKeyPath:    config.GetVerifyPublicKey(),
	}
}

// Manager implements dist.Repository
type Manager struct {
	typ       string
	timeout   time.Duration
	store     *local.Store
	index     *index.Client
	installer *install.Installer
}

var _ dist.Repository = (*Manager)(nil)

// New creates a Manager
func New(opts Options) *Manager {
	if opts.Type == "" {
		opts.Type = config.DefaultDistributionType
	}
	if opts.IndexTimeout <= 0 {
		opts.IndexTimeout = config.DefaultHTTPTimeout
	}

	store := local.NewStore(opts.Paths.DistributionsDir, opts.Paths.CurrentLink)

	clientOpts := []index.Option{index.WithToken(opts.Token)}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, index.WithHTTPClient(opts.HTTPClient))
	}
	idx := index.NewClient(opts.IndexURL, clientOpts...)

	m := &Manager{
		typ:     opts.Type,
		timeout: opts.IndexTimeout,
		store:   store,
		index:   idx,
	}

	m.installer = install.New(timeoutResolver{m}, store, install.Options{
		CacheDir:         opts.Paths.CacheDir,
		Type:             opts.Type,
		Headers:          idx.AuthHeaders(),
		Client:           opts.HTTPClient,
		Progress:         opts.Progress,
		Status:           opts.Status,
		VerifySignatures: opts.VerifySignatures,
		PublicKeyPath:    opts.PublicKeyPath,
	})

	return m
}

// Type returns the configured distribution type
func (m *Manager) Type() string {
	return m.typ
}

// Store exposes the local store for maintenance commands
func (m *Manager) Store() *local.Store {
	return m.store
}

// CurrentVersion returns the version of the active distribution, or "" when
// none is active or the active one belongs to another type
func (m *Manager) CurrentVersion(ctx context.Context) (string, error) {
	name, err := m.store.Current()
	if err != nil {
		return "", err
	}
	return dist.VersionOf(m.typ, name), nil
}

// Current returns the directory name of the active distribution
func (m *Manager) Current() (string, error) {
	return m.store.Current()
}

// ListLocal returns installed distribution directory names
func (m *Manager) ListLocal(ctx context.Context) ([]string, error) {
	return m.store.List()
}

// ListRemote returns the distributions offered by the index. Only the
// index request is bounded by the configured timeout.
func (m *Manager) ListRemote(ctx context.Context) ([]dist.Distribution, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.index.Distributions(ctx)
}

// Install implements dist.Installer
func (m *Manager) Install(ctx context.Context, out io.Writer, name string, overwrite bool) error {
	return m.installer.Install(ctx, out, name, overwrite)
}

// Use makes an installed distribution active. name may be a bare version.
func (m *Manager) Use(name string) (string, error) {
	id, err := m.Resolve(name)
	if err != nil {
		return "", err
	}
	if err := m.store.SetCurrent(id); err != nil {
		return "", err
	}
	return id, nil
}

// Remove deletes an installed distribution. name may be a bare version.
func (m *Manager) Remove(name string) (string, error) {
	id, err := m.Resolve(name)
	if err != nil {
		return "", err
	}
	if err := m.store.Remove(id); err != nil {
		return "", err
	}
	log.Debug("Removed distribution", "id", id)
	return id, nil
}

// Resolve maps a user supplied name onto an installed directory name
func (m *Manager) Resolve(name string) (string, error) {
	if m.store.IsInstalled(name) {
		return name, nil
	}

	typ, ver, err := dist.ParseIdentifier(m.typ, name)
	if err != nil {
		return "", err
	}
	id := dist.Compose(typ, ver)
	if !m.store.IsInstalled(id) {
		return "", fmt.Errorf("%w: %s", local.ErrNotInstalled, id)
	}
	return id, nil
}

// timeoutResolver bounds the installer's index lookups without limiting
// the archive download that follows
type timeoutResolver struct {
	m *Manager
}

func (r timeoutResolver) Find(ctx context.Context, typ, ver string) (*dist.Distribution, error) {
	ctx, cancel := context.WithTimeout(ctx, r.m.timeout)
	defer cancel()
	return r.m.index.Find(ctx, typ, ver)
}

func (r timeoutResolver) Latest(ctx context.Context, typ string) (*dist.Distribution, error) {
	ctx, cancel := context.WithTimeout(ctx, r.m.timeout)
	defer cancel()
	return r.m.index.Latest(ctx, typ)
}
