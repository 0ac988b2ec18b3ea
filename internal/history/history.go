// Package history records evaluated expressions and their results, keeping
// only the most recent entries.
package history

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// TimeLayout is the format of Entry.Timestamp: an ISO 8601 local date-time.
const TimeLayout = "2006-01-02T15:04:05"

// Entry is a single calculation.
type Entry struct {
	Expression string `json:"expression"`
	Result     string `json:"result"`
	Timestamp  string `json:"timestamp"`
}

// NewEntry creates an entry stamped with t.
func NewEntry(expr, result string, t time.Time) Entry {
	return Entry{Expression: expr, Result: result, Timestamp: t.Format(TimeLayout)}
}

// String formats the entry as "expr = result (15:04:05)".
func (e Entry) String() string {
	s := e.Expression + " = " + e.Result
	if len(e.Timestamp) >= len(TimeLayout) {
		s += " (" + e.Timestamp[11:19] + ")"
	}
	return s
}

// Store persists history entries in the order they were added.
type Store interface {
	// Load returns all stored entries, oldest first.
	Load() ([]Entry, error)
	// Append stores e and then discards the oldest entries so that at most
	// max remain. max <= 0 keeps everything.
	Append(e Entry, max int) error
	// Clear removes all entries.
	Clear() error
	// Close releases resources.
	Close() error
}

// History is a capped list of calculations backed by a Store. When the cap
// is exceeded, the oldest entries are dropped first. It is safe for
// concurrent use.
type History struct {
	mu      sync.Mutex
	store   Store
	entries []Entry
	max     int
	log     *slog.Logger
	now     func() time.Time
}

// New creates a History over store, loading what it already holds. If the
// store can't be read, the history starts empty and the error is logged.
// max <= 0 means no cap. A nil logger uses slog.Default.
func New(store Store, max int, log *slog.Logger) *History {
	if log == nil {
		log = slog.Default()
	}
	h := &History{store: store, max: max, log: log, now: time.Now}
	entries, err := store.Load()
	if err != nil {
		log.Warn("couldn't load history, starting empty", slog.Any("err", err))
		entries = nil
	}
	h.entries = entries
	h.trim()
	return h
}

// Open creates a History using the named backend, "json" or "sqlite",
// stored at path.
func Open(backend, path string, max int, log *slog.Logger) (*History, error) {
	var (
		s   Store
		err error
	)
	switch backend {
	case "json", "":
		s = NewJSONStore(path)
	case "sqlite":
		s, err = NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("history: unknown backend %q", backend)
	}
	return New(s, max, log), nil
}

// Add records a calculation. The entry is kept in memory even if saving it
// fails; the save error is returned.
func (h *History) Add(expr, result string) (Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e := NewEntry(expr, result, h.now())
	h.entries = append(h.entries, e)
	h.trim()
	if err := h.store.Append(e, h.max); err != nil {
		h.log.Warn("couldn't save history", slog.Any("err", err))
		return e, fmt.Errorf("history: couldn't save: %w", err)
	}
	return e, nil
}

// trim drops the oldest entries past the cap. h.mu must be held.
func (h *History) trim() {
	if h.max > 0 && len(h.entries) > h.max {
		n := copy(h.entries, h.entries[len(h.entries)-h.max:])
		h.entries = h.entries[:n]
	}
}

// All returns a copy of every entry, oldest first.
func (h *History) All() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Entry(nil), h.entries...)
}

// Recent returns a copy of the last n entries, oldest first.
func (h *History) Recent(n int) []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n <= 0 {
		return nil
	}
	start := len(h.entries) - n
	if start < 0 {
		start = 0
	}
	return append([]Entry(nil), h.entries[start:]...)
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// SetMax changes the cap. Shrinking it drops old entries from memory now
// and from the store on the next Add.
func (h *History) SetMax(max int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.max = max
	h.trim()
}

// Clear removes every entry.
func (h *History) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
	if err := h.store.Clear(); err != nil {
		return fmt.Errorf("history: couldn't clear: %w", err)
	}
	return nil
}

// Close closes the underlying store.
func (h *History) Close() error {
	return h.store.Close()
}
