package ledger

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Ledger is an append-only, file-backed record of relative paths that
// have already been synchronized.
//
// The backing file holds one path per line. A path's presence means
// "do not re-download". The ledger itself never deduplicates: callers
// must check Contains before Append, or duplicate lines accumulate
// (harmless for membership, wasteful for storage).
//
// The file handle is held open for the Ledger's lifetime and must be
// released with Close on every exit path.
//
// Example:
//
//	led, err := ledger.Open(filepath.Join(base, ".sync-state"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer led.Close()
//
//	if !led.Contains(rel) {
//	    // ... download ...
//	    if err := led.Append(rel); err != nil {
//	        log.Fatal(err)
//	    }
//	}
type Ledger struct {
	file    *os.File
	entries []string
	seen    map[string]struct{}
}

// Open opens the ledger file for read+append, loading every line
// (stripped of its terminator) into memory. A missing file is created
// empty; any other I/O failure is returned.
func Open(path string) (*Ledger, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}

	led := &Ledger{
		file: file,
		seen: make(map[string]struct{}),
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		entry := strings.TrimRight(scanner.Text(), "\r")
		led.entries = append(led.entries, entry)
		led.seen[entry] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		file.Close()
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}

	return led, nil
}

// Contains reports whether the path has been recorded.
func (l *Ledger) Contains(rel string) bool {
	_, ok := l.seen[rel]
	return ok
}

// Append records the path in memory and writes it to the backing file,
// flushing to durable storage before returning so that a process
// restart immediately afterwards observes the entry.
func (l *Ledger) Append(rel string) error {
	if _, err := l.file.WriteString(rel + "\n"); err != nil {
		return fmt.Errorf("appending to ledger: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("flushing ledger: %w", err)
	}

	l.entries = append(l.entries, rel)
	l.seen[rel] = struct{}{}
	return nil
}

// Len returns the number of recorded entries, duplicates included.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Close releases the backing file handle.
func (l *Ledger) Close() error {
	return l.file.Close()
}
