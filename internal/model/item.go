package model

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// CaptureTimeLayout is the timestamp layout used by the camera's
// ContentDirectory for dc:date values.
const CaptureTimeLayout = "2006-01-02T15:04:05"

// RootObjectID is the well-known identifier of the content tree root.
const RootObjectID = "0"

// UPnP class prefixes used to tell downloadable images from browsable
// containers. Anything else (videoItem, audioItem, ...) is ignored.
const (
	classImagePrefix     = "object.item.imageItem"
	classContainerPrefix = "object.container"
)

// Resource is one retrievable representation of a media item.
//
// A camera typically advertises several resources per photo (full
// resolution, preview, thumbnail). The declared byte size is the only
// ranking criterion: the largest resource is assumed to be the
// highest-quality one.
type Resource struct {
	// URI is the plain-HTTP download location.
	URI string

	// Size is the declared byte size from the res@size attribute.
	// Zero if the device did not declare one.
	Size int64
}

// MediaItem represents one node of the remote content tree, either a
// container or a leaf item.
//
// Items are constructed fresh on every traversal and never persisted;
// the sync ledger stores only the relative destination paths derived
// from them.
//
// Example:
//
//	item := model.MediaItem{
//	    ID:        "1.1.3",
//	    Title:     "IMG_0001.JPG",
//	    Class:     "object.item.imageItem.photo",
//	    Date:      "2023-06-15T10:30:00",
//	    Resources: []model.Resource{{URI: u, Size: 5000000}},
//	}
//	rel, _ := item.RelPath(false) // "2023/2023-06-15/IMG_0001.JPG"
type MediaItem struct {
	// ID is the opaque ContentDirectory object identifier.
	ID string

	// Title is the item title (for photos, the on-card filename).
	Title string

	// Class is the upnp:class string, e.g. "object.item.imageItem.photo".
	Class string

	// Date is the raw dc:date value. Empty if the device sent none.
	Date string

	// Resources holds the retrievable representations of a leaf item.
	// Empty for containers.
	Resources []Resource
}

// IsImage reports whether the item is a downloadable image leaf.
func (it MediaItem) IsImage() bool {
	return strings.HasPrefix(it.Class, classImagePrefix)
}

// IsContainer reports whether the item is a browsable container.
func (it MediaItem) IsContainer() bool {
	return strings.HasPrefix(it.Class, classContainerPrefix)
}

// CaptureTime parses the item's dc:date value using CaptureTimeLayout.
//
// Returns an error for items without a date or with a date in any
// other layout; callers are expected to skip such items.
func (it MediaItem) CaptureTime() (time.Time, error) {
	return time.Parse(CaptureTimeLayout, it.Date)
}

// BestResource returns the resource with the largest declared size.
//
// Ties are broken by first occurrence. The second return value is
// false if the item has no resources at all.
func (it MediaItem) BestResource() (Resource, bool) {
	if len(it.Resources) == 0 {
		return Resource{}, false
	}
	best := it.Resources[0]
	for _, res := range it.Resources[1:] {
		if res.Size > best.Size {
			best = res
		}
	}
	return best, true
}

// RelPath computes the date-bucketed relative destination path for the
// item: "2006/2006-01-02/<title>", or "2006-01-02/<title>" when flat
// is true (the layout of earlier releases, kept for compatibility with
// existing trees and ledgers).
//
// The title is sanitized for cross-platform filesystem use. Returns an
// error when the capture time cannot be parsed.
func (it MediaItem) RelPath(flat bool) (string, error) {
	date, err := it.CaptureTime()
	if err != nil {
		return "", err
	}

	day := date.Format("2006-01-02")
	name := sanitizeFileName(it.Title)
	if flat {
		return filepath.Join(day, name), nil
	}
	return filepath.Join(date.Format("2006"), day, name), nil
}

// sanitizeFileName removes or replaces characters that are invalid in
// file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars) are replaced with underscore
//   - Trailing dots are removed (Windows limitation)
//   - Multiple whitespace is collapsed to single space
//   - Trailing whitespace is removed
//
// Example:
//
//	sanitizeFileName("IMG: 1/2.JPG") // Returns "IMG_ 1_2.JPG"
func sanitizeFileName(name string) string {
	// Replace invalid path/file characters
	invalidChars := regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	name = invalidChars.ReplaceAllString(name, "_")

	// Remove trailing dots
	name = regexp.MustCompile(`\.+$`).ReplaceAllString(name, "")

	// Replace multiple whitespace with single space
	name = regexp.MustCompile(`\s+`).ReplaceAllString(name, " ")

	// Remove trailing whitespace
	name = strings.TrimRight(name, " ")

	return name
}
