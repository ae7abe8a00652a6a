package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ErrUnexpectedStatus is returned by DownloadFile for any non-2xx
// response. No destination file exists when this error is returned.
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// Client wraps the HTTP operations camsync performs against a camera.
//
// Client provides:
//   - A bounded connection/read timeout per request
//   - Streaming file download in fixed-size chunks
//   - Byte counting for transfer verification
//
// Example usage:
//
//	client := NewClient(60*time.Second, 128*1024)
//
//	written, expected, err := client.DownloadFile(ctx, uri, dest, nil)
//	if err == nil && written != expected {
//	    // truncated transfer
//	}
type Client struct {
	httpClient *http.Client
	userAgent  string
	chunkSize  int
}

// NewClient creates a new HTTP client with the given per-request
// timeout and copy chunk size. A chunkSize of 0 or less falls back to
// 128 KiB.
func NewClient(timeout time.Duration, chunkSize int) *Client {
	if chunkSize <= 0 {
		chunkSize = 128 * 1024
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: "camsync",
		chunkSize: chunkSize,
	}
}

// CountingWriter wraps a writer and counts the bytes written through
// it, optionally reporting progress after every chunk.
//
// Example:
//
//	cw := &CountingWriter{
//	    Writer: file,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(cw, response.Body)
type CountingWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	// Parameters are (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking the byte count and calling
// OnUpdate.
func (cw *CountingWriter) Write(p []byte) (int, error) {
	n, err := cw.Writer.Write(p)
	cw.Written += int64(n)
	if cw.OnUpdate != nil {
		cw.OnUpdate(cw.Written, cw.Total)
	}
	return n, err
}

// DownloadFile streams the resource at url to destPath, counting the
// bytes written.
//
// The response status is checked before the destination file is
// created, so a rejected request leaves no partial file behind. The
// body is copied in fixed-size chunks.
//
// Returns the number of bytes written and the response's declared
// Content-Length (-1 if the server did not declare one). The caller is
// responsible for comparing the two and for removing the destination
// file after a short write: a mid-stream failure can leave a partial
// file at destPath alongside a non-nil error.
//
// Parameters:
//   - ctx: Context for cancellation
//   - url: URL to download from
//   - destPath: Local file path to save to (parent dir must exist)
//   - onProgress: Optional callback called with (bytesWritten, totalBytes);
//     pass nil to disable progress tracking
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) (written, expected int64, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, 0, fmt.Errorf("%w: %s fetching %s", ErrUnexpectedStatus, resp.Status, url)
	}

	file, err := os.Create(destPath)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	cw := &CountingWriter{
		Writer:   file,
		Total:    resp.ContentLength,
		OnUpdate: onProgress,
	}

	buf := make([]byte, c.chunkSize)
	_, copyErr := io.CopyBuffer(cw, resp.Body, buf)
	return cw.Written, resp.ContentLength, copyErr
}
