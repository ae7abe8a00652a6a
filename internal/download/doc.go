// Package download retrieves individual photos from the camera and
// records verified transfers in the sync ledger.
//
// # Downloader
//
// Downloader.Process handles one leaf item end to end:
//
//  1. Parse the capture date (undated items are skipped with a warning)
//  2. Compute the date-bucketed destination path
//  3. Short-circuit on a ledger hit — no network, no filesystem probe
//  4. Pick the largest advertised resource
//  5. Resolve filename conflicts with bounded renamed retries
//  6. Stream the transfer and verify it against Content-Length
//  7. Record the path in the ledger and stamp the capture time
//
// # Failure model
//
// Per-item problems are warnings: the item stays out of the ledger and
// is retried on the next run. Truncated transfers are deleted so no
// partial file survives. Only local I/O setup failures and ledger
// write failures return errors, which abort the traversal.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// Cumulative counters for the UI are available from Progress().
package download
