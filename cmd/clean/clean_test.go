// SPDX-License-Identifier: Apache-2.0
package clean

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Work-Fort/Dist/pkg/local"
)

func TestCleanCache(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "jballerina-1.2.0.tar.gz"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := cleanCache(&out, dir); err != nil {
		t.Fatalf("cleanCache: %v", err)
	}
	if !strings.Contains(out.String(), "jballerina-1.2.0.tar.gz") {
		t.Errorf("output should list removed file:\n%s", out.String())
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("cache not emptied: %v", entries)
	}

	out.Reset()
	if err := cleanCache(&out, filepath.Join(dir, "missing")); err != nil {
		t.Fatalf("missing cache dir: %v", err)
	}
}

func TestCleanInactive(t *testing.T) {
	root := t.TempDir()
	store := local.NewStore(filepath.Join(root, "distributions"), filepath.Join(root, "current"))
	for _, name := range []string{"jballerina-1.1.0", "jballerina-1.2.0"} {
		dir := filepath.Join(store.Root(), name)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "VERSION"), []byte(name), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.SetCurrent("jballerina-1.2.0"); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := cleanInactive(&out, store); err != nil {
		t.Fatalf("cleanInactive: %v", err)
	}

	if store.IsInstalled("jballerina-1.1.0") {
		t.Error("inactive distribution should be removed")
	}
	if !store.IsInstalled("jballerina-1.2.0") {
		t.Error("active distribution must be kept")
	}
	if !strings.Contains(out.String(), "Removed 1 inactive distribution(s), 16 B freed") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}
