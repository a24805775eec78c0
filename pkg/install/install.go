// SPDX-License-Identifier: Apache-2.0

// Package install downloads, verifies and unpacks distributions into the
// local store
package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/Work-Fort/Dist/pkg/config"
	"github.com/Work-Fort/Dist/pkg/dist"
	"github.com/Work-Fort/Dist/pkg/download"
	"github.com/Work-Fort/Dist/pkg/local"
	"github.com/Work-Fort/Dist/pkg/signing"
	"github.com/Work-Fort/Dist/pkg/util"
)

// LatestAlias resolves to the newest distribution of the configured type
const LatestAlias = "latest"

// ErrNoChecksums is returned when signature verification is required but
// the index entry publishes no SHA256SUMS file
var ErrNoChecksums = errors.New("distribution publishes no SHA256SUMS")

// Resolver looks distributions up in the remote index
type Resolver interface {
	Find(ctx context.Context, typ, ver string) (*dist.Distribution, error)
	Latest(ctx context.Context, typ string) (*dist.Distribution, error)
}

// Options configures an Installer
type Options struct {
	CacheDir string
	// Type is used for bare version names
	Type    string
	Headers map[string]string
	Client  *http.Client

	// Progress receives download progress in [0,1]
	Progress download.ProgressCallback
	// Status receives a short description of each phase
	Status func(string)

	VerifySignatures bool
	PublicKeyPath    string
}

// Installer implements dist.Installer on top of an index and a local store
type Installer struct {
	index Resolver
	store *local.Store
	opts  Options
}

// New creates an Installer
func New(index Resolver, store *local.Store, opts Options) *Installer {
	if opts.Type == "" {
		opts.Type = config.DefaultDistributionType
	}
	return &Installer{index: index, store: store, opts: opts}
}

// Install fetches name and installs it as <type>-<version>. An existing
// installation is kept unless overwrite is set. The first distribution
// installed becomes the active one.
func (i *Installer) Install(ctx context.Context, out io.Writer, name string, overwrite bool) error {
	theme := config.CurrentTheme

	d, err := i.resolve(ctx, name)
	if err != nil {
		return err
	}
	id := d.Identifier()
	log.Debug("Resolved distribution", "name", name, "id", id, "url", d.URL)

	if i.store.IsInstalled(id) && !overwrite {
		fmt.Fprintln(out, theme.InfoMessage(fmt.Sprintf("%s is already installed", id)))
		return nil
	}

	archive, format, err := i.fetch(ctx, d)
	if err != nil {
		return err
	}

	if err := i.unpack(archive, format, id); err != nil {
		return err
	}

	fmt.Fprintln(out, theme.SuccessMessage(fmt.Sprintf("%s %s installed", dist.DisplayName(d.Type), d.Version)))

	current, err := i.store.Current()
	if err != nil {
		return err
	}
	if current == "" {
		if err := i.store.SetCurrent(id); err != nil {
			return err
		}
		fmt.Fprintln(out, theme.SuccessMessage(fmt.Sprintf("%s is now active", id)))
	}

	return nil
}

func (i *Installer) resolve(ctx context.Context, name string) (*dist.Distribution, error) {
	if name == LatestAlias {
		i.status("Resolving latest distribution")
		return i.index.Latest(ctx, i.opts.Type)
	}

	typ, ver, err := dist.ParseIdentifier(i.opts.Type, name)
	if err != nil {
		return nil, err
	}

	i.status(fmt.Sprintf("Resolving %s", dist.Compose(typ, ver)))
	return i.index.Find(ctx, typ, ver)
}

// fetch downloads the archive into the cache and verifies it. A cached
// archive whose published digest still matches is reused.
func (i *Installer) fetch(ctx context.Context, d *dist.Distribution) (string, util.ArchiveFormat, error) {
	if d.URL == "" {
		return "", "", fmt.Errorf("index entry for %s has no download URL", d.Identifier())
	}

	u, err := url.Parse(d.URL)
	if err != nil {
		return "", "", fmt.Errorf("invalid download URL %q: %w", d.URL, err)
	}
	format, err := util.DetectFormat(u.Path)
	if err != nil {
		return "", "", err
	}

	if err := os.MkdirAll(i.opts.CacheDir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create cache directory: %w", err)
	}
	archive := filepath.Join(i.opts.CacheDir, path.Base(u.Path))

	cached := d.SHA256 != "" && util.VerifySHA256(archive, d.SHA256) == nil
	if cached {
		log.Debug("Using cached archive", "path", archive)
	} else {
		i.status(fmt.Sprintf("Downloading %s", d.Identifier()))
		err := download.FileWithOptions(ctx, d.URL, archive, &download.Options{
			ProgressCallback: i.opts.Progress,
			Headers:          i.opts.Headers,
			Client:           i.opts.Client,
		})
		if err != nil {
			return "", "", fmt.Errorf("failed to download %s: %w", d.Identifier(), err)
		}
	}

	i.status("Verifying checksum")
	if d.SHA256 != "" {
		if err := util.VerifySHA256(archive, d.SHA256); err != nil {
			os.Remove(archive)
			return "", "", err
		}
	}

	if i.opts.VerifySignatures {
		if err := i.verifySignature(ctx, d, archive); err != nil {
			os.Remove(archive)
			return "", "", err
		}
	} else if d.SHA256 == "" {
		log.Warn("No checksum published, archive is unverified", "id", d.Identifier())
	}

	return archive, format, nil
}

// verifySignature checks SHA256SUMS against its detached signature and the
// archive against SHA256SUMS
func (i *Installer) verifySignature(ctx context.Context, d *dist.Distribution, archive string) error {
	if d.Checksums == "" {
		return fmt.Errorf("%w: %s", ErrNoChecksums, d.Identifier())
	}

	i.status("Verifying signature")
	sums := filepath.Join(i.opts.CacheDir, d.Identifier()+".SHA256SUMS")
	sig := sums + ".asc"
	defer os.Remove(sums)
	defer os.Remove(sig)

	opts := &download.Options{Headers: i.opts.Headers, Client: i.opts.Client}
	if err := download.FileWithOptions(ctx, d.Checksums, sums, opts); err != nil {
		return fmt.Errorf("failed to download SHA256SUMS: %w", err)
	}
	if err := download.FileWithOptions(ctx, d.Checksums+".asc", sig, opts); err != nil {
		return fmt.Errorf("failed to download SHA256SUMS.asc: %w", err)
	}

	if err := signing.VerifyFile(sums, sig, i.opts.PublicKeyPath); err != nil {
		return err
	}
	return util.VerifySHA256File(archive, sums)
}

// unpack extracts into a hidden staging directory inside the store and
// renames the result into place
func (i *Installer) unpack(archive string, format util.ArchiveFormat, id string) error {
	dest, err := i.store.Path(id)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(i.store.Root(), 0755); err != nil {
		return fmt.Errorf("failed to create distributions directory: %w", err)
	}

	staging, err := os.MkdirTemp(i.store.Root(), ".staging-"+id+"-")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	i.status(fmt.Sprintf("Extracting %s", id))
	if err := util.Extract(format, archive, staging, nil); err != nil {
		return fmt.Errorf("failed to extract %s: %w", id, err)
	}

	root, err := unwrapSingleDir(staging)
	if err != nil {
		return err
	}

	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("failed to replace existing %s: %w", id, err)
	}
	if err := os.Rename(root, dest); err != nil {
		return fmt.Errorf("failed to install %s: %w", id, err)
	}

	log.Debug("Installed distribution", "id", id, "path", dest)
	return nil
}

// unwrapSingleDir returns the only entry of dir when it is a directory,
// otherwise dir itself
func unwrapSingleDir(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read staging directory: %w", err)
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(dir, entries[0].Name()), nil
	}
	return dir, nil
}

func (i *Installer) status(msg string) {
	if i.opts.Status != nil {
		i.opts.Status(msg)
	}
	log.Debug(msg)
}
