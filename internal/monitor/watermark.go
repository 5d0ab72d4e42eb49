package monitor

import (
	"strings"
	"sync"
)

// Watermark holds the id of the last processed item. It only moves forward
// and lives in memory only, so it resets on restart.
type Watermark struct {
	mu       sync.Mutex
	lastSeen string
}

// LastSeen returns the current watermark, or "" before the first processed item.
func (w *Watermark) LastSeen() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

// Advance moves the watermark to id when id is newer than the current value.
func (w *Watermark) Advance(id string) bool {
	if id == "" {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.lastSeen != "" && CompareIDs(id, w.lastSeen) <= 0 {
		return false
	}
	w.lastSeen = id
	return true
}

// CompareIDs orders item ids by recency. Numeric ids (snowflakes) compare by
// value; anything else falls back to lexical order.
func CompareIDs(a, b string) int {
	if isDigits(a) && isDigits(b) {
		a = strings.TrimLeft(a, "0")
		b = strings.TrimLeft(b, "0")
		if len(a) != len(b) {
			if len(a) < len(b) {
				return -1
			}
			return 1
		}
	}
	return strings.Compare(a, b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
