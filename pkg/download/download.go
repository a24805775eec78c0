// SPDX-License-Identifier: Apache-2.0
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
)

// ProgressCallback is called periodically during download with current progress
// percent is a float between 0 and 1 representing completion percentage
type ProgressCallback func(percent float64)

// Options configures the download
type Options struct {
	ProgressCallback ProgressCallback
	Headers          map[string]string
	// Client defaults to http.DefaultClient
	Client *http.Client
}

// File downloads a file from URL to destination with optional progress callback
func File(ctx context.Context, url, dest string, progressCallback ProgressCallback) error {
	return FileWithOptions(ctx, url, dest, &Options{
		ProgressCallback: progressCallback,
	})
}

// FileWithOptions downloads url into dest. The body is streamed into
// dest+".part" and renamed on success, so dest never holds a partial file.
func FileWithOptions(ctx context.Context, url, dest string, opts *Options) error {
	log.Debugf("Downloading %s to %s", url, dest)

	if opts == nil {
		opts = &Options{}
	}
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	partial := dest + ".part"
	out, err := os.Create(partial)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	var body io.Reader = resp.Body
	if opts.ProgressCallback != nil && resp.ContentLength > 0 {
		body = &progressReader{r: resp.Body, total: resp.ContentLength, cb: opts.ProgressCallback}
	}

	if _, err := io.Copy(out, body); err != nil {
		out.Close()
		os.Remove(partial)
		return fmt.Errorf("failed to save: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(partial)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(partial, dest); err != nil {
		os.Remove(partial)
		return fmt.Errorf("failed to finalize download: %w", err)
	}

	log.Debugf("Download complete: %s", dest)
	return nil
}

// progressReader reports the fraction of total read so far
type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	cb    ProgressCallback
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.read += int64(n)
		p.cb(float64(p.read) / float64(p.total))
	}
	return n, err
}
