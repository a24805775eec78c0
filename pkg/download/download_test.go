// SPDX-License-Identifier: Apache-2.0
package download

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestFileWithOptions(t *testing.T) {
	payload := bytes.Repeat([]byte("dist"), 64*1024)
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "archive.tar.gz")
	var last float64
	calls := 0
	err := FileWithOptions(context.Background(), srv.URL, dest, &Options{
		Headers: map[string]string{"Authorization": "Bearer abc"},
		ProgressCallback: func(p float64) {
			if p < last {
				t.Errorf("progress went backwards: %f -> %f", last, p)
			}
			last = p
			calls++
		},
	})
	if err != nil {
		t.Fatalf("FileWithOptions: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, payload) {
		t.Error("downloaded content differs from served content")
	}
	if gotAuth != "Bearer abc" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if calls == 0 || last != 1 {
		t.Errorf("progress calls = %d, last = %f; want final 1.0", calls, last)
	}
	if _, err := os.Stat(dest + ".part"); !os.IsNotExist(err) {
		t.Error("partial file left behind")
	}
}

func TestFileWithOptions_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "missing.tar.gz")
	if err := File(context.Background(), srv.URL, dest, nil); err == nil {
		t.Fatal("404 should fail")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("no file should be created on failure")
	}
}
