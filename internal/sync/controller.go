package sync

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/handiism/camsync/internal/browse"
	"github.com/handiism/camsync/internal/download"
	"github.com/handiism/camsync/internal/model"
)

// Device is the capability a discovered network device must provide
// before the controller will sync from it.
type Device interface {
	// ModelDescription returns the device's self-reported model
	// description, matched verbatim against the configured camera
	// identifier.
	ModelDescription() string

	// ContentDirectory resolves the device's browsing service. Only
	// called after the model description matched.
	ContentDirectory() (browse.Service, error)
}

// Processor consumes one leaf item at a time. Implemented by
// download.Downloader; faked in tests.
type Processor interface {
	Process(ctx context.Context, item model.MediaItem) error
}

// State is the controller's lifecycle state.
type State int32

const (
	StateWaitingForDevice State = iota
	StateSyncing
	StateTerminated
)

// String returns a short human-readable state name for UIs.
func (s State) String() string {
	switch s {
	case StateWaitingForDevice:
		return "waiting for device"
	case StateSyncing:
		return "syncing"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Controller drives a sync session: it waits for the configured camera
// to appear, walks its content tree, and feeds every photo to the
// Processor.
//
//	WaitingForDevice -> Syncing -> Terminated        (one-shot)
//	WaitingForDevice -> Syncing -> WaitingForDevice  (daemon)
//
// Devices whose model description does not match are ignored, not
// errors. In daemon mode a failed traversal is contained: the
// controller logs it and returns to waiting instead of exiting, and a
// completed traversal likewise waits for the camera to reappear
// (power-cycled cameras re-announce themselves; the ledger keeps the
// repeat traversal cheap).
type Controller struct {
	cameraModel string
	daemon      bool
	proc        Processor

	state      int32
	onProgress func(download.ProgressEvent)
}

// NewController creates a Controller matching devices against
// cameraModel. With daemon false the controller terminates after the
// first complete traversal.
func NewController(cameraModel string, daemon bool, proc Processor, onProgress func(download.ProgressEvent)) *Controller {
	return &Controller{
		cameraModel: cameraModel,
		daemon:      daemon,
		proc:        proc,
		onProgress:  onProgress,
	}
}

// State returns the controller's current state. Safe to call from
// other goroutines (the TUI polls it).
func (c *Controller) State() State {
	return State(atomic.LoadInt32(&c.state))
}

func (c *Controller) setState(s State) {
	atomic.StoreInt32(&c.state, int32(s))
}

// Run consumes device events until the channel closes, the context is
// cancelled, or — in one-shot mode — a traversal finishes or fails.
//
// The loop is single-threaded by design: a running traversal blocks
// further device events, so a second announcement from the same camera
// cannot start a concurrent sync.
func (c *Controller) Run(ctx context.Context, events <-chan Device) error {
	c.setState(StateWaitingForDevice)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case dev, ok := <-events:
			if !ok {
				return nil
			}
			if dev.ModelDescription() != c.cameraModel {
				c.progress(download.ProgressEvent{
					Message: fmt.Sprintf("Ignoring device %q", dev.ModelDescription()),
					Level:   download.LevelVerbose,
				})
				continue
			}

			c.setState(StateSyncing)
			c.progress(download.ProgressEvent{
				Message: fmt.Sprintf("Camera found: %s", dev.ModelDescription()),
				Level:   download.LevelInfo,
			})

			err := c.syncOnce(ctx, dev)
			if ctx.Err() != nil {
				return ctx.Err()
			}

			switch {
			case err != nil && !c.daemon:
				return err
			case err != nil:
				c.progress(download.ProgressEvent{
					Message: fmt.Sprintf("Sync failed: %v; waiting for device", err),
					Level:   download.LevelError,
				})
				c.setState(StateWaitingForDevice)
			case !c.daemon:
				c.progress(download.ProgressEvent{Message: "Sync complete", Level: download.LevelSuccess})
				c.setState(StateTerminated)
				return nil
			default:
				c.progress(download.ProgressEvent{Message: "Sync complete; waiting for device", Level: download.LevelSuccess})
				c.setState(StateWaitingForDevice)
			}
		}
	}
}

// syncOnce runs one full traversal against the device's content
// directory. Any browse failure aborts the traversal and is returned.
func (c *Controller) syncOnce(ctx context.Context, dev Device) error {
	svc, err := dev.ContentDirectory()
	if err != nil {
		return fmt.Errorf("resolving content directory: %w", err)
	}

	walker := browse.NewWalker(svc)
	return walker.Walk(ctx, model.RootObjectID, func(item model.MediaItem) error {
		return c.proc.Process(ctx, item)
	})
}

func (c *Controller) progress(event download.ProgressEvent) {
	if c.onProgress != nil {
		c.onProgress(event)
	}
}
