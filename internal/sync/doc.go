// Package sync contains the controller that ties discovery, browsing,
// and downloading together.
//
// The Controller is a small state machine fed by a channel of
// discovered devices:
//
//	events := make(chan sync.Device, 4)
//	ctl := sync.NewController("Canon Digital Camera", daemon, downloader, onProgress)
//	err := ctl.Run(ctx, events)
//
// Everything runs on the controller's goroutine: traversal and
// transfers execute synchronously, so at most one sync session is
// active at a time and the ledger never sees concurrent writers.
package sync
