package diagnostics

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func frozenBuffer(at time.Time) *LogBuffer {
	b := NewLogBuffer()
	b.now = func() time.Time { return at }
	return b
}

func TestRecordAssignsIncreasingTimestamps(t *testing.T) {
	b := frozenBuffer(time.Unix(1700000000, 0))

	b.Record(LevelMessage, "a")
	b.Record(LevelWarning, "b")
	b.Record(LevelError, "c")

	entries := b.QuerySince(0, LevelAny)
	require.Len(t, entries, 3)
	base := time.Unix(1700000000, 0).UnixNano() / NanosPerTick
	require.Equal(t, base, entries[0].Timestamp)
	require.Equal(t, base+1, entries[1].Timestamp)
	require.Equal(t, base+2, entries[2].Timestamp)
}

func TestRecordSurvivesClockGoingBackwards(t *testing.T) {
	b := NewLogBuffer()
	clock := time.Unix(1700000000, 0)
	b.now = func() time.Time { return clock }

	b.Record(LevelMessage, "first")
	clock = clock.Add(-time.Hour)
	b.Record(LevelMessage, "second")

	entries := b.QuerySince(0, LevelAny)
	require.Len(t, entries, 2)
	require.Greater(t, entries[1].Timestamp, entries[0].Timestamp)
}

func TestRecordNormalizesLevel(t *testing.T) {
	b := NewLogBuffer()
	b.Record(LevelAny, "")
	b.Record(Level(42), "odd")

	entries := b.QuerySince(0, LevelAny)
	require.Len(t, entries, 2)
	require.Equal(t, LevelMessage, entries[0].Level)
	require.Equal(t, "", entries[0].Message)
	require.Equal(t, LevelMessage, entries[1].Level)
}

func TestQuerySinceIsStrictlyAfterCursor(t *testing.T) {
	b := NewLogBuffer()
	for i := 0; i < 10; i++ {
		b.Record(LevelMessage, fmt.Sprintf("line %d", i))
	}
	all := b.QuerySince(0, LevelAny)
	require.Len(t, all, 10)

	cursor := all[4].Timestamp
	rest := b.QuerySince(cursor, LevelAny)
	require.Len(t, rest, 5)
	for _, entry := range rest {
		require.Greater(t, entry.Timestamp, cursor)
	}
	require.Equal(t, "line 5", rest[0].Message)

	require.Empty(t, b.QuerySince(all[9].Timestamp, LevelAny))
}

func TestAdvancingCursorNeverRedelivers(t *testing.T) {
	b := NewLogBuffer()
	seen := make(map[string]struct{})
	var cursor int64

	for round := 0; round < 5; round++ {
		for i := 0; i < 3; i++ {
			b.Record(LevelWarning, fmt.Sprintf("r%d-%d", round, i))
		}
		batch := b.QuerySince(cursor, LevelAny)
		require.Len(t, batch, 3)
		for _, entry := range batch {
			key := fmt.Sprintf("%d|%s", entry.Timestamp, entry.Message)
			_, dup := seen[key]
			require.False(t, dup, "redelivered %s", key)
			seen[key] = struct{}{}
			if entry.Timestamp > cursor {
				cursor = entry.Timestamp
			}
		}
		require.Empty(t, b.QuerySince(cursor, LevelAny))
	}
	require.Len(t, seen, 15)
}

func TestQuerySinceFiltersByLevel(t *testing.T) {
	b := NewLogBuffer()
	b.Record(LevelMessage, "m1")
	b.Record(LevelWarning, "w1")
	b.Record(LevelError, "e1")
	b.Record(LevelWarning, "w2")

	lower, ok := ParseLevel("warning")
	require.True(t, ok)
	upper, ok := ParseLevel("WARNING")
	require.True(t, ok)

	got := b.QuerySince(0, lower)
	require.Equal(t, got, b.QuerySince(0, upper))
	require.Len(t, got, 2)
	require.Equal(t, "w1", got[0].Message)
	require.Equal(t, "w2", got[1].Message)

	all := b.QuerySince(0, LevelAny)
	for _, entry := range got {
		require.Contains(t, all, entry)
	}
}

func TestQuerySinceResultIsDetached(t *testing.T) {
	b := NewLogBuffer()
	b.Record(LevelMessage, "keep")

	got := b.QuerySince(0, LevelAny)
	got[0].Message = "changed"

	require.Equal(t, "keep", b.QuerySince(0, LevelAny)[0].Message)
}

func TestConcurrentWritersPreserveOrder(t *testing.T) {
	b := NewLogBuffer()
	const writers, perWriter = 8, 500

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				b.Record(LevelMessage, fmt.Sprintf("%d:%d", w, i))
			}
		}(w)
	}

	stop := make(chan struct{})
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			select {
			case <-stop:
				return
			default:
			}
			for _, entry := range b.QuerySince(0, LevelAny) {
				if entry.Timestamp == 0 || entry.Level == LevelAny {
					t.Errorf("partially initialised entry %+v", entry)
					return
				}
			}
		}
	}()

	wg.Wait()
	close(stop)
	<-readerDone

	entries := b.QuerySince(0, LevelAny)
	require.Len(t, entries, writers*perWriter)
	next := make([]int, writers)
	for i, entry := range entries {
		if i > 0 {
			require.Greater(t, entry.Timestamp, entries[i-1].Timestamp)
		}
		var w, n int
		_, err := fmt.Sscanf(entry.Message, "%d:%d", &w, &n)
		require.NoError(t, err)
		require.Equal(t, next[w], n)
		next[w]++
	}
}

func TestEntryWireFormat(t *testing.T) {
	raw, err := json.Marshal([]Entry{{Timestamp: 17, Level: LevelError, Message: ""}})
	require.NoError(t, err)
	require.JSONEq(t, `[{"TimestampTicks":17,"Level":"Error","Message":""}]`, string(raw))

	raw, err = json.Marshal(NewLogBuffer().QuerySince(0, LevelAny))
	require.NoError(t, err)
	require.Equal(t, "[]", string(raw))
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"Message": LevelMessage,
		"info":    LevelMessage,
		" Warn ":  LevelWarning,
		"ERROR":   LevelError,
		"err":     LevelError,
	}
	for in, want := range cases {
		got, ok := ParseLevel(in)
		require.True(t, ok, in)
		require.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "debug", "fatal"} {
		got, ok := ParseLevel(in)
		require.False(t, ok, in)
		require.Equal(t, LevelAny, got)
	}
}
