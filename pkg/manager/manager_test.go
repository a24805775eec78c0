// SPDX-License-Identifier: Apache-2.0
package manager

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Work-Fort/Dist/pkg/config"
	"github.com/Work-Fort/Dist/pkg/dist"
	"github.com/Work-Fort/Dist/pkg/local"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	dataDir := t.TempDir()
	return &config.Paths{
		DataDir:          dataDir,
		CacheDir:         filepath.Join(dataDir, "cache"),
		DistributionsDir: filepath.Join(dataDir, "distributions"),
		CurrentLink:      filepath.Join(dataDir, "current"),
	}
}

func installDirs(t *testing.T, paths *config.Paths, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.MkdirAll(filepath.Join(paths.DistributionsDir, name), 0755); err != nil {
			t.Fatal(err)
		}
	}
}

func TestManager_ListsThroughLister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"list": [{"version": "1.2.0", "type": "jballerina"}, {"version": "1.3.0", "type": "jballerina"}]}`))
	}))
	defer srv.Close()

	paths := testPaths(t)
	installDirs(t, paths, "jballerina-1.1.0", "jballerina-1.2.0")

	m := New(Options{Paths: paths, Type: "jballerina", IndexURL: srv.URL})
	if _, err := m.Use("1.2.0"); err != nil {
		t.Fatalf("Use: %v", err)
	}

	lister := &dist.Lister{Repo: m, Type: m.Type(), Rule: dist.MarkIdentifier}
	var out bytes.Buffer
	if err := lister.List(context.Background(), &out, false); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"  jballerina-1.1.0", "* jballerina-1.2.0", "  jballerina-1.3.0"} {
		if !strings.Contains(out.String(), want+"\n") {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestManager_IndexTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	m := New(Options{Paths: testPaths(t), IndexURL: srv.URL, IndexTimeout: 50 * time.Millisecond})

	lister := &dist.Lister{Repo: m, Type: m.Type(), Rule: dist.MarkLegacy}
	var out bytes.Buffer
	if err := lister.List(context.Background(), &out, false); err != nil {
		t.Fatal(err)
	}
	if out.String() != "update service unavailable\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestManager_CurrentVersion(t *testing.T) {
	paths := testPaths(t)
	installDirs(t, paths, "jballerina-1.2.0", "nballerina-0.1.0")
	m := New(Options{Paths: paths, Type: "jballerina"})
	ctx := context.Background()

	if v, err := m.CurrentVersion(ctx); err != nil || v != "" {
		t.Errorf("CurrentVersion before use = %q, %v", v, err)
	}

	if _, err := m.Use("jballerina-1.2.0"); err != nil {
		t.Fatal(err)
	}
	if v, _ := m.CurrentVersion(ctx); v != "1.2.0" {
		t.Errorf("CurrentVersion = %q, want 1.2.0", v)
	}

	if _, err := m.Use("nballerina-0.1.0"); err != nil {
		t.Fatal(err)
	}
	if v, _ := m.CurrentVersion(ctx); v != "" {
		t.Errorf("foreign type should not report a version, got %q", v)
	}
}

func TestManager_UseAndRemove(t *testing.T) {
	paths := testPaths(t)
	installDirs(t, paths, "jballerina-1.2.0")
	m := New(Options{Paths: paths})

	if _, err := m.Use("1.9.0"); !errors.Is(err, local.ErrNotInstalled) {
		t.Errorf("Use missing = %v, want ErrNotInstalled", err)
	}

	id, err := m.Remove("v1.2.0")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if id != "jballerina-1.2.0" {
		t.Errorf("Remove id = %q", id)
	}
	if m.Store().IsInstalled(id) {
		t.Error("distribution still installed")
	}
}
