// SPDX-License-Identifier: Apache-2.0
package local

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dataDir := t.TempDir()
	return NewStore(filepath.Join(dataDir, "distributions"), filepath.Join(dataDir, "current"))
}

func mkdirs(t *testing.T, s *Store, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.MkdirAll(filepath.Join(s.Root(), name, "bin"), 0755); err != nil {
			t.Fatal(err)
		}
	}
}

func TestStore_ListMissingRoot(t *testing.T) {
	s := newTestStore(t)

	names, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("List = %v, want empty", names)
	}
}

func TestStore_ListSkipsFilesAndHidden(t *testing.T) {
	s := newTestStore(t)
	mkdirs(t, s, "jballerina-1.2.0", "jballerina-1.1.0", ".staging-123")
	if err := os.WriteFile(filepath.Join(s.Root(), "README"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	names, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"jballerina-1.1.0", "jballerina-1.2.0"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("List = %v, want %v", names, want)
	}
}

func TestStore_Path(t *testing.T) {
	s := newTestStore(t)

	for _, bad := range []string{"", ".", "..", "../etc", "a/b", ".hidden"} {
		if _, err := s.Path(bad); err == nil {
			t.Errorf("Path(%q) should fail", bad)
		}
	}

	path, err := s.Path("jballerina-1.2.0")
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(s.Root(), "jballerina-1.2.0") {
		t.Errorf("Path = %q", path)
	}
}

func TestStore_CurrentLifecycle(t *testing.T) {
	s := newTestStore(t)
	mkdirs(t, s, "jballerina-1.1.0", "jballerina-1.2.0")

	current, err := s.Current()
	if err != nil || current != "" {
		t.Fatalf("Current before selection = %q, %v", current, err)
	}

	if err := s.SetCurrent("jballerina-1.1.0"); err != nil {
		t.Fatalf("SetCurrent: %v", err)
	}
	if err := s.SetCurrent("jballerina-1.2.0"); err != nil {
		t.Fatalf("SetCurrent again: %v", err)
	}

	current, err = s.Current()
	if err != nil {
		t.Fatal(err)
	}
	if current != "jballerina-1.2.0" {
		t.Errorf("Current = %q, want jballerina-1.2.0", current)
	}

	if err := s.SetCurrent("jballerina-9.9.9"); !errors.Is(err, ErrNotInstalled) {
		t.Errorf("SetCurrent on missing dist = %v, want ErrNotInstalled", err)
	}
}

func TestStore_RemoveClearsCurrent(t *testing.T) {
	s := newTestStore(t)
	mkdirs(t, s, "jballerina-1.2.0")

	if err := s.SetCurrent("jballerina-1.2.0"); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove("jballerina-1.2.0"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if s.IsInstalled("jballerina-1.2.0") {
		t.Error("distribution still installed after Remove")
	}
	current, err := s.Current()
	if err != nil || current != "" {
		t.Errorf("Current after Remove = %q, %v", current, err)
	}

	if err := s.Remove("jballerina-1.2.0"); !errors.Is(err, ErrNotInstalled) {
		t.Errorf("second Remove = %v, want ErrNotInstalled", err)
	}
}

func TestStore_CurrentOutsideStore(t *testing.T) {
	s := newTestStore(t)
	elsewhere := t.TempDir()
	if err := os.MkdirAll(filepath.Dir(s.currentLink), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(elsewhere, s.currentLink); err != nil {
		t.Fatal(err)
	}

	current, err := s.Current()
	if err != nil || current != "" {
		t.Errorf("Current = %q, %v; want empty", current, err)
	}
}

func TestStore_Size(t *testing.T) {
	s := newTestStore(t)
	mkdirs(t, s, "jballerina-1.2.0")
	if err := os.WriteFile(filepath.Join(s.Root(), "jballerina-1.2.0", "bin", "bal"), make([]byte, 1024), 0755); err != nil {
		t.Fatal(err)
	}

	size, err := s.Size("jballerina-1.2.0")
	if err != nil {
		t.Fatal(err)
	}
	if size != 1024 {
		t.Errorf("Size = %d, want 1024", size)
	}
}
