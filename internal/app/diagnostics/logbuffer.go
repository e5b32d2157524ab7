package diagnostics

import (
	"sort"
	"sync"
	"time"
)

// LogBuffer keeps every captured line for the lifetime of the process.
// It only grows; nothing is evicted or rewritten.
type LogBuffer struct {
	mu   sync.RWMutex
	data []Entry
	last int64
	now  func() time.Time
}

// NewLogBuffer builds an empty buffer.
func NewLogBuffer() *LogBuffer {
	return &LogBuffer{now: time.Now}
}

// Record appends a line stamped with the current time. Timestamps are
// strictly increasing: a clock reading at or before the previous stamp is
// bumped to previous+1 tick.
func (b *LogBuffer) Record(level Level, message string) {
	if _, ok := levelNames[level]; !ok {
		level = LevelMessage
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	ts := b.now().UnixNano() / NanosPerTick
	if ts <= b.last {
		ts = b.last + 1
	}
	b.last = ts
	b.data = append(b.data, Entry{Timestamp: ts, Level: level, Message: message})
}

// QuerySince returns entries stamped strictly after cursor, oldest first.
// LevelAny disables level filtering. The result never aliases buffer memory.
func (b *LogBuffer) QuerySince(cursor int64, level Level) []Entry {
	b.mu.RLock()
	// Elements below len are never written again, so the prefix can be
	// scanned after the lock is released.
	snapshot := b.data[:len(b.data):len(b.data)]
	b.mu.RUnlock()

	start := sort.Search(len(snapshot), func(i int) bool {
		return snapshot[i].Timestamp > cursor
	})
	out := make([]Entry, 0, len(snapshot)-start)
	for _, entry := range snapshot[start:] {
		if level != LevelAny && entry.Level != level {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// Len reports how many entries have been recorded.
func (b *LogBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}
