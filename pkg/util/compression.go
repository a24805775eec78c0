// SPDX-License-Identifier: Apache-2.0
package util

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// ArchiveFormat identifies how a distribution archive is packed
type ArchiveFormat string

const (
	FormatTarGz  ArchiveFormat = "tar.gz"
	FormatTarXz  ArchiveFormat = "tar.xz"
	FormatTarZst ArchiveFormat = "tar.zst"
	FormatZip    ArchiveFormat = "zip"
)

// DetectFormat picks the archive format from a file name or URL path
func DetectFormat(name string) (ArchiveFormat, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return FormatTarGz, nil
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		return FormatTarXz, nil
	case strings.HasSuffix(lower, ".tar.zst"), strings.HasSuffix(lower, ".tzst"):
		return FormatTarZst, nil
	case strings.HasSuffix(lower, ".zip"):
		return FormatZip, nil
	}
	return "", fmt.Errorf("unsupported archive format: %s", filepath.Base(name))
}

// Extract unpacks src into dstDir using the given format
func Extract(format ArchiveFormat, src, dstDir string, progressCallback func(float64)) error {
	switch format {
	case FormatTarGz:
		return ExtractTarGz(src, dstDir, progressCallback)
	case FormatTarXz:
		return ExtractTarXz(src, dstDir, progressCallback)
	case FormatTarZst:
		return ExtractTarZst(src, dstDir, progressCallback)
	case FormatZip:
		return ExtractZip(src, dstDir, progressCallback)
	}
	return fmt.Errorf("unsupported archive format: %s", format)
}

// progressReader wraps a reader to track bytes read
type progressReader struct {
	reader   io.Reader
	total    int64
	read     int64
	callback func(float64)
	lastPct  float64
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.read += int64(n)

	if pr.callback != nil && pr.total > 0 {
		pct := float64(pr.read) / float64(pr.total)
		if pct > 1.0 {
			pct = 1.0
		}
		// Report every 1% for smoother progress updates
		if pct-pr.lastPct >= 0.01 || pct >= 0.99 {
			pr.callback(pct)
			pr.lastPct = pct
		}
	}

	return n, err
}

// openWithProgress opens src and wraps it so compressed bytes read drive progressCallback
func openWithProgress(src string, progressCallback func(float64)) (io.Reader, io.Closer, error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open archive: %w", err)
	}

	if progressCallback == nil {
		return srcFile, srcFile, nil
	}

	srcInfo, err := srcFile.Stat()
	if err != nil {
		srcFile.Close()
		return nil, nil, fmt.Errorf("failed to get source file info: %w", err)
	}

	return &progressReader{
		reader:   srcFile,
		total:    srcInfo.Size(),
		callback: progressCallback,
		lastPct:  -1.0,
	}, srcFile, nil
}

// ExtractTarGz extracts a tar.gz archive to a destination directory
func ExtractTarGz(src, dstDir string, progressCallback func(float64)) error {
	log.Debugf("Extracting %s to %s", src, dstDir)

	reader, closer, err := openWithProgress(src, progressCallback)
	if err != nil {
		return err
	}
	defer closer.Close()

	gzReader, err := gzip.NewReader(reader)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzReader.Close()

	return finishTar(gzReader, dstDir, progressCallback)
}

// ExtractTarXz extracts a tar.xz archive to a destination directory
func ExtractTarXz(src, dstDir string, progressCallback func(float64)) error {
	log.Debugf("Extracting %s to %s", src, dstDir)

	reader, closer, err := openWithProgress(src, progressCallback)
	if err != nil {
		return err
	}
	defer closer.Close()

	xzReader, err := xz.NewReader(reader)
	if err != nil {
		return fmt.Errorf("failed to create xz reader: %w", err)
	}

	return finishTar(xzReader, dstDir, progressCallback)
}

// ExtractTarZst extracts a tar.zst archive to a destination directory
func ExtractTarZst(src, dstDir string, progressCallback func(float64)) error {
	log.Debugf("Extracting %s to %s", src, dstDir)

	reader, closer, err := openWithProgress(src, progressCallback)
	if err != nil {
		return err
	}
	defer closer.Close()

	zstdReader, err := zstd.NewReader(reader)
	if err != nil {
		return fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zstdReader.Close()

	return finishTar(zstdReader, dstDir, progressCallback)
}

func finishTar(r io.Reader, dstDir string, progressCallback func(float64)) error {
	if err := extractTar(r, dstDir); err != nil {
		return err
	}

	// Ensure 100% is reported
	if progressCallback != nil {
		progressCallback(1.0)
	}

	log.Debugf("Successfully extracted archive to %s", dstDir)
	return nil
}

// safeTarget joins name onto dstDir, rejecting paths that escape it
func safeTarget(dstDir, name string) (string, error) {
	target := filepath.Join(dstDir, name)

	cleanTarget := filepath.Clean(target)
	cleanDstDir := filepath.Clean(dstDir) + string(filepath.Separator)
	if !strings.HasPrefix(cleanTarget+string(filepath.Separator), cleanDstDir) && cleanTarget != filepath.Clean(dstDir) {
		return "", fmt.Errorf("invalid path in archive: %s", name)
	}
	return cleanTarget, nil
}

// safeLink rejects symlinks whose target resolves outside dstDir
func safeLink(dstDir, target, linkname string) error {
	if filepath.IsAbs(linkname) {
		return fmt.Errorf("absolute symlink in archive: %s -> %s", target, linkname)
	}
	resolved := filepath.Join(filepath.Dir(target), linkname)
	if _, err := safeTarget(dstDir, mustRel(dstDir, resolved)); err != nil {
		return fmt.Errorf("symlink escapes archive: %s -> %s", target, linkname)
	}
	return nil
}

// noSymlinkComponents fails when any existing component of target below
// dstDir is a symlink, so nothing is written through a link unpacked earlier
func noSymlinkComponents(dstDir, target string) error {
	rel, err := filepath.Rel(dstDir, target)
	if err != nil || rel == "." {
		return nil
	}

	path := dstDir
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		path = filepath.Join(path, part)
		info, err := os.Lstat(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to inspect %s: %w", path, err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("archive entry passes through symlink: %s", rel)
		}
	}
	return nil
}

// linkStaysInside checks where a freshly created symlink really points.
// Links whose target does not exist yet are left to the textual check.
func linkStaysInside(dstDir, link string) error {
	root, err := filepath.EvalSymlinks(dstDir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dstDir, err)
	}
	resolved, err := filepath.EvalSymlinks(link)
	if err != nil {
		return nil
	}
	if resolved != root && !strings.HasPrefix(resolved, root+string(filepath.Separator)) {
		return fmt.Errorf("symlink escapes archive: %s", link)
	}
	return nil
}

func mustRel(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return target
	}
	return rel
}

func extractTar(r io.Reader, dstDir string) error {
	tarReader := tar.NewReader(r)

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar header: %w", err)
		}

		target, err := safeTarget(dstDir, header.Name)
		if err != nil {
			return err
		}
		if err := noSymlinkComponents(dstDir, target); err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(header.Mode)|0700); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}

		case tar.TypeReg:
			if err := writeFile(target, tarReader, os.FileMode(header.Mode)); err != nil {
				return err
			}

		case tar.TypeSymlink:
			if err := safeLink(dstDir, target, header.Linkname); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("failed to create parent directory: %w", err)
			}
			if err := os.Symlink(header.Linkname, target); err != nil {
				return fmt.Errorf("failed to create symlink: %w", err)
			}
			if err := linkStaysInside(dstDir, target); err != nil {
				os.Remove(target)
				return err
			}

		default:
			log.Debugf("Skipping unsupported file type: %s (%c)", header.Name, header.Typeflag)
		}
	}
}

// ExtractZip extracts a zip archive to a destination directory
func ExtractZip(src, dstDir string, progressCallback func(float64)) error {
	log.Debugf("Extracting %s to %s", src, dstDir)

	zr, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer zr.Close()

	total := len(zr.File)
	for i, f := range zr.File {
		target, err := safeTarget(dstDir, f.Name)
		if err != nil {
			return err
		}
		if err := noSymlinkComponents(dstDir, target); err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
		} else {
			rc, err := f.Open()
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", f.Name, err)
			}
			mode := f.Mode().Perm()
			if mode == 0 {
				mode = 0644
			}
			err = writeFile(target, rc, mode)
			rc.Close()
			if err != nil {
				return err
			}
		}

		if progressCallback != nil && total > 0 {
			progressCallback(float64(i+1) / float64(total))
		}
	}

	log.Debugf("Successfully extracted archive to %s", dstDir)
	return nil
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(outFile, r); err != nil {
		outFile.Close()
		return fmt.Errorf("failed to extract file: %w", err)
	}
	return outFile.Close()
}
