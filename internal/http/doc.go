// Package http provides the HTTP client used to retrieve photo
// resources from the camera.
//
// The camera serves photos over plain HTTP GET. Downloads are streamed
// to disk in fixed-size chunks with an exact byte count, so the caller
// can verify the transfer against the response's Content-Length and
// discard truncated files.
//
// Every request carries a bounded timeout; the discovery phase is the
// only unbounded wait in camsync.
package http
