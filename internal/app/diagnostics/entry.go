package diagnostics

import (
	"encoding/json"
	"strings"
)

// Tick conversions. Timestamps are 100ns ticks since the Unix epoch;
// clients divide by TicksPerMillisecond to get Unix milliseconds.
const (
	NanosPerTick        = 100
	TicksPerMillisecond = 10_000
)

// Level tags a captured line. The zero value matches every level in queries.
type Level uint8

const (
	LevelAny Level = iota
	LevelMessage
	LevelWarning
	LevelError
)

var levelNames = map[Level]string{
	LevelMessage: "Message",
	LevelWarning: "Warning",
	LevelError:   "Error",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return ""
}

// MarshalJSON writes the level name used by the polling client.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// ParseLevel matches a level name case-insensitively. Zap-style aliases
// (info, warn, err) are accepted too.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "message", "info":
		return LevelMessage, true
	case "warning", "warn":
		return LevelWarning, true
	case "error", "err":
		return LevelError, true
	default:
		return LevelAny, false
	}
}

// Entry is one captured log line. Entries are copied by value and never
// modified after the buffer stores them.
type Entry struct {
	Timestamp int64  `json:"TimestampTicks"`
	Level     Level  `json:"Level"`
	Message   string `json:"Message"`
}
