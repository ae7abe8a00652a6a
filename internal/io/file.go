// Package ioutils provides file system utilities for camsync.
//
// This package contains functions for:
//   - Directory creation
//   - Setting file timestamps to a photo's capture time
//   - Thumbnail image resizing
package ioutils

import (
	"os"
	"time"
)

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
//
// Example:
//
//	err := EnsureDir("/photos/2023/2023-06-15")
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// SetFileTimes sets both the access and modification time of the file
// to the given instant.
//
// camsync stamps downloaded photos with their capture time so that
// file managers and backup tools sort them by shot date rather than
// by download date.
func SetFileTimes(path string, when time.Time) error {
	return os.Chtimes(path, when, when)
}
