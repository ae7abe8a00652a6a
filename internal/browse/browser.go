package browse

import (
	"context"
	"errors"
	"fmt"

	"github.com/handiism/camsync/internal/model"
)

// Service is the capability a remote content directory must provide.
//
// Browse lists the direct children of a container, starting at the
// given offset. A requestedCount of 0 asks for "all remaining"; the
// server decides the actual page size. Implementations must pass every
// protocol parameter explicitly, default-valued ones included — some
// camera firmwares reject sparse argument sets.
type Service interface {
	Browse(ctx context.Context, objectID string, startingIndex, requestedCount uint32) (Page, error)
}

// Page is one fragment of a container listing.
type Page struct {
	// Items are the decoded child nodes of this fragment.
	Items []model.MediaItem

	// NumberReturned is the device-reported count for this fragment.
	NumberReturned uint32

	// TotalMatches is the device-reported total child count of the
	// container being listed.
	TotalMatches uint32
}

// WalkFunc receives one downloadable leaf item at a time. Returning an
// error stops the traversal and propagates out of Walk.
type WalkFunc func(item model.MediaItem) error

// ErrBrowseFailed wraps any listing failure. The whole traversal is
// abandoned on the first one: a partial listing cannot be told apart
// from a complete one, and continuing would make "synced" ambiguous.
var ErrBrowseFailed = errors.New("browse failed")

// Walker traverses a remote content tree depth-first, yielding image
// leaf items lazily.
//
// The traversal is restartable only by calling Walk again from the
// same root; there is no resumable cursor across process restarts (the
// sync ledger makes restarts cheap instead).
//
// Example:
//
//	w := browse.NewWalker(service)
//	err := w.Walk(ctx, model.RootObjectID, func(item model.MediaItem) error {
//	    fmt.Println(item.Title)
//	    return nil
//	})
type Walker struct {
	service Service
}

// NewWalker creates a Walker over the given browsing service.
func NewWalker(service Service) *Walker {
	return &Walker{service: service}
}

// frame is the traversal state of one container: the pagination
// cursor plus the decoded children not yet visited.
type frame struct {
	id         string
	fetched    uint32
	total      uint32
	totalKnown bool
	firstTotal uint32
	pages      int
	pending    []model.MediaItem
}

// maxPages bounds the number of listing requests for one container.
// The device's reported total can change mid-listing (new shots taken,
// card swapped); trusting it blindly risks an unbounded loop, so pages
// are capped at a generous multiple of the first reported total.
func (f *frame) maxPages() int {
	return int(f.firstTotal)*4 + 8
}

func (f *frame) done() bool {
	return f.totalKnown && f.fetched >= f.total
}

// Walk performs a depth-first traversal from rootID, calling fn for
// every image-class leaf item. Containers are descended into before
// their remaining siblings; nodes of any other class are ignored.
//
// The walk is iterative (explicit frame stack), so arbitrarily deep
// trees cannot exhaust the goroutine stack. Any listing failure —
// transport error, undecodable response, or a container that keeps
// paginating past its safety bound — aborts the whole traversal with
// an error wrapping ErrBrowseFailed.
func (w *Walker) Walk(ctx context.Context, rootID string, fn WalkFunc) error {
	stack := []*frame{{id: rootID}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		top := stack[len(stack)-1]

		if len(top.pending) > 0 {
			item := top.pending[0]
			top.pending = top.pending[1:]

			switch {
			case item.IsImage():
				if err := fn(item); err != nil {
					return err
				}
			case item.IsContainer():
				stack = append(stack, &frame{id: item.ID})
			}
			continue
		}

		if top.done() {
			stack = stack[:len(stack)-1]
			continue
		}

		if err := w.fetchPage(ctx, top); err != nil {
			return err
		}
	}

	return nil
}

// fetchPage issues one listing request for the frame's container and
// queues the decoded children.
func (w *Walker) fetchPage(ctx context.Context, f *frame) error {
	page, err := w.service.Browse(ctx, f.id, f.fetched, 0)
	if err != nil {
		return fmt.Errorf("%w: container %s at offset %d: %v", ErrBrowseFailed, f.id, f.fetched, err)
	}

	if !f.totalKnown {
		f.total = page.TotalMatches
		f.firstTotal = page.TotalMatches
		f.totalKnown = true
	} else {
		// Inventory changed mid-listing. Follow the newer figure; the
		// page bound below keeps a lying device from looping us forever.
		f.total = page.TotalMatches
	}

	f.pages++
	if f.pages > f.maxPages() {
		return fmt.Errorf("%w: container %s exceeded %d pages (first reported total %d)",
			ErrBrowseFailed, f.id, f.maxPages(), f.firstTotal)
	}

	if page.NumberReturned == 0 && f.fetched < f.total {
		return fmt.Errorf("%w: container %s returned no items at offset %d with %d expected",
			ErrBrowseFailed, f.id, f.fetched, f.total)
	}

	f.fetched += page.NumberReturned
	f.pending = append(f.pending, page.Items...)
	return nil
}
