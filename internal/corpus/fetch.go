// Package corpus handles acquisition and sampling of the raw Hindi corpus.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// ErrRangeNotSupported is returned when a resume is requested but the server
// replies with a full-content response instead of honoring the Range header.
// Appending a full response to a partial file would corrupt it.
var ErrRangeNotSupported = errors.New("server does not support range requests")

// FetchOptions describe a single corpus fetch.
type FetchOptions struct {
	// URL of the remote corpus (plain UTF-8 text, one sentence per line).
	URL string
	// DestPath is the local file the corpus is appended to.
	DestPath string
	// MaxBytes caps the size of the local file. Reads stop at the cap even
	// mid-stream.
	MaxBytes int64
	// Client to use for the request. Defaults to http.DefaultClient.
	Client *http.Client
	// Progress, when non-nil, receives a byte progress bar.
	Progress io.Writer
}

// Fetch ensures DestPath holds up to MaxBytes bytes of the resource at URL
// and returns the final on-disk size.
//
// A pre-existing file is resumed with a Range request starting at its
// current size; bytes already on disk are never re-requested. When the file
// already holds MaxBytes or more, Fetch returns immediately without any
// network call. On failure the partial file is left in place so a later
// call can resume it. Fetch does not retry.
func Fetch(ctx context.Context, opts FetchOptions) (int64, error) {
	if opts.URL == "" {
		return 0, fmt.Errorf("corpus url is required")
	}
	if opts.DestPath == "" {
		return 0, fmt.Errorf("destination path is required")
	}
	if opts.MaxBytes <= 0 {
		return 0, fmt.Errorf("max bytes must be positive, got %d", opts.MaxBytes)
	}

	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	var start int64
	if fi, err := os.Stat(opts.DestPath); err == nil {
		if fi.IsDir() {
			return 0, fmt.Errorf("expected file at %s, found directory", opts.DestPath)
		}
		start = fi.Size()
	} else if !os.IsNotExist(err) {
		return 0, fmt.Errorf("stat destination: %w", err)
	}

	if start >= opts.MaxBytes {
		return start, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return start, fmt.Errorf("build request: %w", err)
	}
	if start > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", start))
	}

	resp, err := client.Do(req)
	if err != nil {
		return start, fmt.Errorf("corpus request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable:
		// Nothing remains beyond the local offset.
		return start, nil
	case start > 0 && resp.StatusCode == http.StatusOK:
		return start, ErrRangeNotSupported
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent:
		return start, fmt.Errorf("corpus download failed: %s", resp.Status)
	}

	fh, err := os.OpenFile(opts.DestPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return start, fmt.Errorf("open destination: %w", err)
	}

	remaining := opts.MaxBytes - start
	bar := newFetchBar(opts.Progress, resp.ContentLength, remaining)

	written, copyErr := copyChunks(fh, io.LimitReader(resp.Body, remaining), bar)
	if bar != nil {
		_ = bar.Finish()
	}

	if err := fh.Close(); err != nil {
		return start + written, fmt.Errorf("close destination: %w", err)
	}
	if copyErr != nil {
		// The partial file stays on disk for a future resume.
		return start + written, fmt.Errorf("corpus download interrupted: %w", copyErr)
	}

	return start + written, nil
}

// newFetchBar builds a byte progress bar for this run's transfer, or nil
// when no progress writer is configured. The expected total is the server's
// size hint clamped to the remaining byte budget; without a hint the bar
// renders as a spinner.
func newFetchBar(w io.Writer, contentLength, remaining int64) *progressbar.ProgressBar {
	if w == nil {
		return nil
	}

	total := int64(-1)
	if contentLength > 0 {
		total = contentLength
		if total > remaining {
			total = remaining
		}
	}

	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("fetching corpus"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionThrottle(200*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// copyChunks streams src into dst chunk by chunk, feeding the progress bar
// after every written chunk.
func copyChunks(dst io.Writer, src io.Reader, bar *progressbar.ProgressBar) (int64, error) {
	var written int64
	buf := make([]byte, 64*1024)

	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			wn, writeErr := dst.Write(buf[:n])
			written += int64(wn)
			if bar != nil {
				_ = bar.Add(wn)
			}
			if writeErr != nil {
				return written, fmt.Errorf("write destination: %w", writeErr)
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}
