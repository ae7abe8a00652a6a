package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDownloadFile(t *testing.T) {
	body := bytes.Repeat([]byte("x"), 1000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "IMG_0001.JPG")
	client := NewClient(5*time.Second, 128)

	written, expected, err := client.DownloadFile(context.Background(), srv.URL, dest, nil)
	if err != nil {
		t.Fatalf("DownloadFile() error: %v", err)
	}
	if written != 1000 || expected != 1000 {
		t.Errorf("written = %d, expected = %d, want 1000/1000", written, expected)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading destination: %v", err)
	}
	if !bytes.Equal(data, body) {
		t.Error("destination content differs from response body")
	}
}

func TestDownloadFile_ReportsProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("x"), 300))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "f")
	client := NewClient(5*time.Second, 100)

	var last int64
	var updates int
	_, _, err := client.DownloadFile(context.Background(), srv.URL, dest, func(written, total int64) {
		last = written
		updates++
	})
	if err != nil {
		t.Fatalf("DownloadFile() error: %v", err)
	}
	if last != 300 {
		t.Errorf("final progress = %d, want 300", last)
	}
	if updates < 3 {
		t.Errorf("progress updates = %d, want one per chunk", updates)
	}
}

func TestDownloadFile_NonSuccessLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "f")
	client := NewClient(5*time.Second, 0)

	_, _, err := client.DownloadFile(context.Background(), srv.URL, dest, nil)
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("DownloadFile() error = %v, want ErrUnexpectedStatus", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("destination file exists after a rejected request")
	}
}

func TestDownloadFile_TruncatedBody(t *testing.T) {
	// Declare more bytes than are sent; the client must report the
	// short count so the caller can discard the partial file.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		w.Write(bytes.Repeat([]byte("x"), 400))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "f")
	client := NewClient(5*time.Second, 128)

	written, expected, err := client.DownloadFile(context.Background(), srv.URL, dest, nil)
	if err == nil && written == expected {
		t.Fatalf("truncation not observable: written = %d, expected = %d, err = %v", written, expected, err)
	}
	if written > 400 {
		t.Errorf("written = %d, want at most the 400 bytes actually sent", written)
	}
}

func TestDownloadFile_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(5*time.Second, 0)
	_, _, err := client.DownloadFile(ctx, srv.URL, filepath.Join(t.TempDir(), "f"), nil)
	if err == nil {
		t.Error("DownloadFile() = nil error with cancelled context")
	}
}
