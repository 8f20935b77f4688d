// Package scanner collects barcode scans. A Buffer accumulates codes
// from a keyboard-wedge style scan session; a Watcher feeds codes from
// files dropped into a spool directory.
package scanner

import (
	"strings"
	"sync"
)

// Buffer holds scanned codes between Start and Stop. Codes added while
// the buffer is inactive are dropped, matching the behavior of a scan
// session that has not been started.
type Buffer struct {
	mu     sync.Mutex
	active bool
	codes  []string
}

// NewBuffer returns an inactive, empty buffer.
func NewBuffer() *Buffer { return &Buffer{} }

// Start clears the buffer and begins accepting scans.
func (b *Buffer) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.codes = b.codes[:0]
	b.active = true
}

// Add appends a trimmed code if a session is active. Empty codes are
// ignored.
func (b *Buffer) Add(code string) {
	code = strings.TrimSpace(code)
	if code == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active {
		b.codes = append(b.codes, code)
	}
}

// Stop ends the session and returns the collected codes.
func (b *Buffer) Stop() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = false
	out := make([]string, len(b.codes))
	copy(out, b.codes)
	b.codes = b.codes[:0]
	return out
}

// Active reports whether a scan session is in progress.
func (b *Buffer) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// Len reports how many codes are buffered.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.codes)
}
