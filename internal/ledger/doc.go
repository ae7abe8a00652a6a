// Package ledger implements the durable sync ledger.
//
// The ledger is the idempotency record of camsync: a plain-text file,
// one relative path per line, appended after each verified download
// and consulted before any network or filesystem work. Running a full
// sync twice against an unchanged camera performs zero transfers on
// the second pass because every path hits the ledger.
//
// Appends are flushed to durable storage before returning, so a crash
// between a completed download and the next item never loses the
// entry. Entries are never mutated or removed by camsync.
//
// The process owning the Ledger is assumed to be the file's sole
// writer; concurrent external writers are unsupported.
package ledger
