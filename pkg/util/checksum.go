// SPDX-License-Identifier: Apache-2.0
package util

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// FileSHA256 returns the hex encoded SHA-256 digest of a file
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", filepath.Base(path), err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifySHA256 checks a file against a single expected hex digest
func VerifySHA256(path, expected string) error {
	got, err := FileSHA256(path)
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	if !strings.EqualFold(got, strings.TrimSpace(expected)) {
		return fmt.Errorf("checksum mismatch for %s: expected %s, got %s", name, expected, got)
	}

	log.Debug("Checksum verified", "file", name)
	return nil
}

// VerifySHA256File checks a file against its entry in a SHA256SUMS file
func VerifySHA256File(path, sumsPath string) error {
	f, err := os.Open(sumsPath)
	if err != nil {
		return fmt.Errorf("failed to open checksums file: %w", err)
	}
	defer f.Close()

	sums, err := ParseSums(f)
	if err != nil {
		return fmt.Errorf("failed to read checksums file: %w", err)
	}

	name := filepath.Base(path)
	expected, ok := sums[name]
	if !ok {
		return fmt.Errorf("file %s not found in checksums", name)
	}
	return VerifySHA256(path, expected)
}

// ParseSums reads coreutils style "<digest>  <name>" lines. A '*' before
// the name marks binary mode and is dropped; blank and '#' lines are skipped.
func ParseSums(r io.Reader) (map[string]string, error) {
	sums := make(map[string]string)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		sums[strings.TrimPrefix(fields[1], "*")] = fields[0]
	}

	return sums, scanner.Err()
}
