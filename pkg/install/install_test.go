// SPDX-License-Identifier: Apache-2.0
package install

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Work-Fort/Dist/pkg/dist"
	"github.com/Work-Fort/Dist/pkg/index"
	"github.com/Work-Fort/Dist/pkg/local"
)

func buildArchive(t *testing.T, version string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	top := "jballerina-" + version + "/"
	files := map[string]string{
		top + "bin/bal": "#!/bin/sh\n",
		top + "VERSION": version + "\n",
	}
	if err := tw.WriteHeader(&tar.Header{Name: top, Typeflag: tar.TypeDir, Mode: 0755}); err != nil {
		t.Fatal(err)
	}
	for name, body := range files {
		hdr := &tar.Header{Name: name, Typeflag: tar.TypeReg, Mode: 0755, Size: int64(len(body))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

type testEnv struct {
	srv       *httptest.Server
	store     *local.Store
	cacheDir  string
	downloads atomic.Int32
}

// newTestEnv serves an index with 1.1.0 and 1.2.0; sha256 for 1.2.0 can be overridden
func newTestEnv(t *testing.T, badDigest bool) *testEnv {
	t.Helper()
	env := &testEnv{}

	archives := map[string][]byte{
		"1.1.0": buildArchive(t, "1.1.0"),
		"1.2.0": buildArchive(t, "1.2.0"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		env.downloads.Add(1)
		ver := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(r.URL.Path), "jballerina-"), ".tar.gz")
		data, ok := archives[ver]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	})
	mux.HandleFunc("/index", func(w http.ResponseWriter, r *http.Request) {
		var entries []string
		for _, ver := range []string{"1.1.0", "1.2.0"} {
			sum := sha256.Sum256(archives[ver])
			digest := hex.EncodeToString(sum[:])
			if badDigest && ver == "1.2.0" {
				digest = strings.Repeat("0", 64)
			}
			entries = append(entries, fmt.Sprintf(
				`{"version": %q, "type": "jballerina", "url": "%s/files/jballerina-%s.tar.gz", "sha256": %q}`,
				ver, env.srv.URL, ver, digest))
		}
		fmt.Fprintf(w, `{"list": [%s]}`, strings.Join(entries, ","))
	})

	env.srv = httptest.NewServer(mux)
	t.Cleanup(env.srv.Close)

	dataDir := t.TempDir()
	env.store = local.NewStore(filepath.Join(dataDir, "distributions"), filepath.Join(dataDir, "current"))
	env.cacheDir = filepath.Join(dataDir, "cache")
	return env
}

func (e *testEnv) installer(opts Options) *Installer {
	opts.CacheDir = e.cacheDir
	opts.Type = "jballerina"
	return New(index.NewClient(e.srv.URL+"/index"), e.store, opts)
}

func TestInstall_FirstBecomesCurrent(t *testing.T) {
	env := newTestEnv(t, false)
	var phases []string
	inst := env.installer(Options{Status: func(s string) { phases = append(phases, s) }})

	var out bytes.Buffer
	if err := inst.Install(context.Background(), &out, "jballerina-1.2.0", true); err != nil {
		t.Fatalf("Install: %v", err)
	}

	version, err := os.ReadFile(filepath.Join(env.store.Root(), "jballerina-1.2.0", "VERSION"))
	if err != nil {
		t.Fatalf("installed tree missing: %v", err)
	}
	if string(version) != "1.2.0\n" {
		t.Errorf("VERSION = %q", version)
	}

	current, err := env.store.Current()
	if err != nil || current != "jballerina-1.2.0" {
		t.Errorf("Current = %q, %v", current, err)
	}
	if !strings.Contains(out.String(), "is now active") {
		t.Errorf("output should announce activation:\n%s", out.String())
	}
	if len(phases) == 0 || !strings.HasPrefix(phases[0], "Resolving") {
		t.Errorf("status phases = %v", phases)
	}

	names, _ := env.store.List()
	if len(names) != 1 {
		t.Errorf("staging directory left behind: %v", names)
	}
}

func TestInstall_SecondKeepsCurrent(t *testing.T) {
	env := newTestEnv(t, false)
	inst := env.installer(Options{})

	var out bytes.Buffer
	if err := inst.Install(context.Background(), &out, "1.1.0", true); err != nil {
		t.Fatal(err)
	}
	if err := inst.Install(context.Background(), &out, "v1.2.0", true); err != nil {
		t.Fatal(err)
	}

	current, _ := env.store.Current()
	if current != "jballerina-1.1.0" {
		t.Errorf("Current = %q, want jballerina-1.1.0", current)
	}
	if !env.store.IsInstalled("jballerina-1.2.0") {
		t.Error("second distribution not installed")
	}
}

func TestInstall_OverwriteFlag(t *testing.T) {
	env := newTestEnv(t, false)
	inst := env.installer(Options{})
	ctx := context.Background()

	var out bytes.Buffer
	if err := inst.Install(ctx, &out, "1.2.0", true); err != nil {
		t.Fatal(err)
	}
	marker := filepath.Join(env.store.Root(), "jballerina-1.2.0", "marker")
	if err := os.WriteFile(marker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := inst.Install(ctx, &out, "1.2.0", false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "already installed") {
		t.Errorf("output = %q", out.String())
	}
	if _, err := os.Stat(marker); err != nil {
		t.Error("install without overwrite must keep the existing tree")
	}

	if err := inst.Install(ctx, &out, "1.2.0", true); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Error("install with overwrite must replace the existing tree")
	}
}

func TestInstall_ReusesCachedArchive(t *testing.T) {
	env := newTestEnv(t, false)
	inst := env.installer(Options{})
	ctx := context.Background()

	var out bytes.Buffer
	for i := 0; i < 2; i++ {
		if err := inst.Install(ctx, &out, "1.2.0", true); err != nil {
			t.Fatal(err)
		}
	}
	if got := env.downloads.Load(); got != 1 {
		t.Errorf("archive downloaded %d times, want 1", got)
	}
}

func TestInstall_ChecksumMismatch(t *testing.T) {
	env := newTestEnv(t, true)
	inst := env.installer(Options{})

	var out bytes.Buffer
	err := inst.Install(context.Background(), &out, "1.2.0", true)
	if err == nil || !strings.Contains(err.Error(), "checksum mismatch") {
		t.Fatalf("error = %v, want checksum mismatch", err)
	}
	if env.store.IsInstalled("jballerina-1.2.0") {
		t.Error("corrupt archive must not be installed")
	}
	if _, err := os.Stat(filepath.Join(env.cacheDir, "jballerina-1.2.0.tar.gz")); !os.IsNotExist(err) {
		t.Error("corrupt archive should be evicted from the cache")
	}
}

func TestInstall_Latest(t *testing.T) {
	env := newTestEnv(t, false)
	inst := env.installer(Options{})

	var out bytes.Buffer
	if err := inst.Install(context.Background(), &out, LatestAlias, true); err != nil {
		t.Fatal(err)
	}
	if !env.store.IsInstalled("jballerina-1.2.0") {
		t.Error("latest should resolve to 1.2.0")
	}
}

func TestInstall_Errors(t *testing.T) {
	env := newTestEnv(t, false)
	inst := env.installer(Options{})
	ctx := context.Background()
	var out bytes.Buffer

	if err := inst.Install(ctx, &out, "jballerina-9.9.9", true); !errors.Is(err, index.ErrNotFound) {
		t.Errorf("unknown version error = %v, want ErrNotFound", err)
	}
	if err := inst.Install(ctx, &out, "not a version", true); !errors.Is(err, dist.ErrInvalidName) {
		t.Errorf("bad name error = %v, want ErrInvalidName", err)
	}
}

func TestInstall_SignatureRequiresChecksums(t *testing.T) {
	env := newTestEnv(t, false)
	inst := env.installer(Options{VerifySignatures: true})

	var out bytes.Buffer
	err := inst.Install(context.Background(), &out, "1.2.0", true)
	if !errors.Is(err, ErrNoChecksums) {
		t.Fatalf("error = %v, want ErrNoChecksums", err)
	}
	if env.store.IsInstalled("jballerina-1.2.0") {
		t.Error("unverified archive must not be installed")
	}
}
