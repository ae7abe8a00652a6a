package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/handiism/camsync/internal/config"
	"github.com/handiism/camsync/internal/http"
	ioutils "github.com/handiism/camsync/internal/io"
	"github.com/handiism/camsync/internal/ledger"
	"github.com/handiism/camsync/internal/model"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a sync progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// conflictMarker is inserted before the extension of renamed retry
// targets: IMG_0001.JPG -> IMG_0001.sync-1.JPG.
const conflictMarker = ".sync-"

// Downloader retrieves one photo at a time, verifies the transfer, and
// records success in the sync ledger.
//
// Per-item problems (missing date, filename conflicts, HTTP errors,
// truncated transfers) are reported as warnings and leave the item
// unsynced so a future run retries it; only unrecoverable local I/O
// failures and ledger write failures surface as errors.
//
// Example:
//
//	dl := download.NewDownloader(settings, led, func(e download.ProgressEvent) {
//	    fmt.Println(e.Message)
//	})
//	err := walker.Walk(ctx, model.RootObjectID, func(item model.MediaItem) error {
//	    return dl.Process(ctx, item)
//	})
type Downloader struct {
	settings *config.Settings
	ledger   *ledger.Ledger
	client   *http.Client

	receivedBytes   int64
	downloadedFiles int32
	skippedFiles    int32
	failedFiles     int32

	onProgress func(ProgressEvent)
}

// NewDownloader creates a Downloader writing under settings.BasePath
// and recording into led.
func NewDownloader(settings *config.Settings, led *ledger.Ledger, onProgress func(ProgressEvent)) *Downloader {
	return &Downloader{
		settings:   settings,
		ledger:     led,
		client:     http.NewClient(time.Duration(settings.HTTPTimeoutSecs)*time.Second, settings.ChunkSize),
		onProgress: onProgress,
	}
}

// Progress returns the cumulative counters: bytes received, files
// downloaded, files skipped (already synced or undated), and files
// abandoned with a warning.
func (d *Downloader) Progress() (received int64, downloaded, skipped, failed int32) {
	return atomic.LoadInt64(&d.receivedBytes),
		atomic.LoadInt32(&d.downloadedFiles),
		atomic.LoadInt32(&d.skippedFiles),
		atomic.LoadInt32(&d.failedFiles)
}

// Process synchronizes a single leaf item.
//
// The item is skipped without any network or filesystem access when
// its relative path is already in the ledger. Otherwise the largest
// resource is streamed to a date-bucketed destination, verified
// against the declared content length, recorded in the ledger, and
// stamped with the capture time.
func (d *Downloader) Process(ctx context.Context, item model.MediaItem) error {
	date, err := item.CaptureTime()
	if err != nil {
		d.progress(ProgressEvent{Message: fmt.Sprintf("Skipping %s: no usable capture date (%q)", item.Title, item.Date), Level: LevelWarning})
		atomic.AddInt32(&d.skippedFiles, 1)
		return nil
	}

	rel, err := item.RelPath(d.settings.FlatDateDirs)
	if err != nil {
		d.progress(ProgressEvent{Message: fmt.Sprintf("Skipping %s: %v", item.Title, err), Level: LevelWarning})
		atomic.AddInt32(&d.skippedFiles, 1)
		return nil
	}

	if d.ledger.Contains(rel) {
		d.progress(ProgressEvent{Message: fmt.Sprintf("Already synced: %s", rel), Level: LevelVerbose})
		atomic.AddInt32(&d.skippedFiles, 1)
		return nil
	}

	resource, ok := item.BestResource()
	if !ok {
		d.progress(ProgressEvent{Message: fmt.Sprintf("Skipping %s: item has no resources", item.Title), Level: LevelWarning})
		atomic.AddInt32(&d.skippedFiles, 1)
		return nil
	}

	relTarget, synced, err := d.resolveConflicts(rel, resource)
	if err != nil {
		return err
	}
	if synced {
		d.progress(ProgressEvent{Message: fmt.Sprintf("Already synced: %s", relTarget), Level: LevelVerbose})
		atomic.AddInt32(&d.skippedFiles, 1)
		return nil
	}
	if relTarget == "" {
		// Every candidate collided; leave unsynced for a future run.
		d.progress(ProgressEvent{Message: fmt.Sprintf("Giving up on %s after %d renamed attempts", rel, d.settings.ConflictMaxAttempts), Level: LevelWarning})
		atomic.AddInt32(&d.failedFiles, 1)
		return nil
	}
	if d.ledger.Contains(relTarget) {
		d.progress(ProgressEvent{Message: fmt.Sprintf("Already synced: %s", relTarget), Level: LevelVerbose})
		atomic.AddInt32(&d.skippedFiles, 1)
		return nil
	}

	target := filepath.Join(d.settings.BasePath, relTarget)
	if err := ioutils.EnsureDir(filepath.Dir(target)); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
	}

	written, expected, err := d.client.DownloadFile(ctx, resource.URI, target, nil)
	if err != nil {
		if errors.Is(err, http.ErrUnexpectedStatus) {
			// Rejected before any file was created.
			d.progress(ProgressEvent{Message: fmt.Sprintf("Transfer of %s failed: %v", relTarget, err), Level: LevelWarning})
			atomic.AddInt32(&d.failedFiles, 1)
			return nil
		}
		os.Remove(target)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		d.progress(ProgressEvent{Message: fmt.Sprintf("Transfer of %s failed: %v", relTarget, err), Level: LevelWarning})
		atomic.AddInt32(&d.failedFiles, 1)
		return nil
	}

	if expected >= 0 && written != expected {
		os.Remove(target)
		d.progress(ProgressEvent{Message: fmt.Sprintf("Transfer of %s truncated: %d of %d bytes", relTarget, written, expected), Level: LevelWarning})
		atomic.AddInt32(&d.failedFiles, 1)
		return nil
	}

	// The transfer is verified; everything below must not undo it.
	if err := d.ledger.Append(relTarget); err != nil {
		return fmt.Errorf("recording %s: %w", relTarget, err)
	}

	if err := ioutils.SetFileTimes(target, date); err != nil {
		d.progress(ProgressEvent{Message: fmt.Sprintf("Could not set times on %s: %v", relTarget, err), Level: LevelWarning})
	}

	if d.settings.CreateThumbnails {
		if err := d.writeThumbnail(target); err != nil {
			d.progress(ProgressEvent{Message: fmt.Sprintf("Could not write thumbnail for %s: %v", relTarget, err), Level: LevelWarning})
		}
	}

	atomic.AddInt64(&d.receivedBytes, written)
	atomic.AddInt32(&d.downloadedFiles, 1)
	d.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", relTarget), Level: LevelVerbose})
	return nil
}

// resolveConflicts picks the relative path to download to: the primary
// path if it is free, else suffixed candidates, at most
// ConflictMaxAttempts of them. Existing files are never overwritten,
// matching-size ones included — those are re-verified by downloading
// under the next renamed candidate. A matching-size candidate already
// in the ledger is a completed re-verification, reported as synced so
// repeat runs stop here instead of stacking further copies. Returns ""
// when every candidate is taken by a file of the wrong size.
func (d *Downloader) resolveConflicts(rel string, resource model.Resource) (target string, synced bool, err error) {
	for attempt := 0; attempt <= d.settings.ConflictMaxAttempts; attempt++ {
		candidate := conflictCandidate(rel, attempt)

		info, err := os.Stat(filepath.Join(d.settings.BasePath, candidate))
		if os.IsNotExist(err) {
			// The expected case: a free slot.
			return candidate, false, nil
		}
		if err != nil {
			return "", false, fmt.Errorf("probing %s: %w", candidate, err)
		}

		if info.Size() == resource.Size {
			if d.ledger.Contains(candidate) {
				return candidate, true, nil
			}
			d.progress(ProgressEvent{Message: fmt.Sprintf("File %s already exists with matching size; re-verifying under a renamed name", candidate), Level: LevelVerbose})
		} else {
			d.progress(ProgressEvent{Message: fmt.Sprintf("File %s already exists with different size (%d, expected %d)", candidate, info.Size(), resource.Size), Level: LevelWarning})
		}
	}
	return "", false, nil
}

// conflictCandidate returns rel for attempt 0 and suffixed variants
// (name.sync-N.ext) for later attempts.
func conflictCandidate(rel string, attempt int) string {
	if attempt == 0 {
		return rel
	}
	ext := filepath.Ext(rel)
	return strings.TrimSuffix(rel, ext) + conflictMarker + fmt.Sprintf("%d", attempt) + ext
}

// writeThumbnail renders a bounded JPEG preview of the downloaded
// photo into the thumbnail directory next to it.
func (d *Downloader) writeThumbnail(target string) error {
	data, err := os.ReadFile(target)
	if err != nil {
		return err
	}

	thumb, err := ioutils.ResizeImage(data, d.settings.ThumbnailMaxSize, d.settings.ThumbnailMaxSize)
	if err != nil {
		return err
	}

	dir := filepath.Join(filepath.Dir(target), d.settings.ThumbnailDirName)
	if err := ioutils.EnsureDir(dir); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, filepath.Base(target)), thumb, 0644)
}

func (d *Downloader) progress(event ProgressEvent) {
	if d.onProgress != nil {
		d.onProgress(event)
	}
}
