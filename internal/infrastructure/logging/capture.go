package logging

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/kidpech/logviewer/internal/app/diagnostics"
)

// Recorder receives one call per captured line.
type Recorder interface {
	Record(level diagnostics.Level, message string)
}

// CaptureOption tunes a CaptureCore.
type CaptureOption func(*CaptureCore)

// WithMinLevel changes the lowest zap level that gets captured.
func WithMinLevel(level zapcore.LevelEnabler) CaptureOption {
	return func(c *CaptureCore) { c.LevelEnabler = level }
}

// WithObserver registers a callback invoked after each line is recorded.
// Observers must not log through the capturing logger.
func WithObserver(fn func(level diagnostics.Level, message string)) CaptureOption {
	return func(c *CaptureCore) {
		if fn != nil {
			c.observers = append(c.observers, fn)
		}
	}
}

// CaptureCore is a zapcore.Core that forwards entries to a Recorder.
// It never writes through zap itself, so capturing cannot loop.
type CaptureCore struct {
	zapcore.LevelEnabler
	recorder  Recorder
	fields    []zapcore.Field
	observers []func(diagnostics.Level, string)
}

// NewCaptureCore builds a core capturing Info and above.
func NewCaptureCore(recorder Recorder, opts ...CaptureOption) *CaptureCore {
	c := &CaptureCore{LevelEnabler: zapcore.InfoLevel, recorder: recorder}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CaptureCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(c.fields[:len(c.fields):len(c.fields)], fields...)
	return &clone
}

func (c *CaptureCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// Write records the entry. It always returns nil: capture failures must not
// reach the code that logged.
func (c *CaptureCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	if c.recorder == nil {
		return nil
	}
	level := MapLevel(ent.Level)
	message := render(ent, c.fields, fields)
	c.recorder.Record(level, message)
	for _, fn := range c.observers {
		notify(fn, level, message)
	}
	return nil
}

// notify isolates observers: a panic is swallowed so it never surfaces at
// the log call site, and later observers still run.
func notify(fn func(diagnostics.Level, string), level diagnostics.Level, message string) {
	defer func() { _ = recover() }()
	fn(level, message)
}

func (c *CaptureCore) Sync() error { return nil }

// MapLevel folds zap levels onto the three viewer levels.
func MapLevel(level zapcore.Level) diagnostics.Level {
	switch {
	case level >= zapcore.ErrorLevel:
		return diagnostics.LevelError
	case level == zapcore.WarnLevel:
		return diagnostics.LevelWarning
	default:
		return diagnostics.LevelMessage
	}
}

// render produces "name: message k=v ..." with fields sorted by key.
func render(ent zapcore.Entry, bound, fields []zapcore.Field) string {
	var sb strings.Builder
	if ent.LoggerName != "" {
		sb.WriteString(ent.LoggerName)
		sb.WriteString(": ")
	}
	sb.WriteString(ent.Message)
	if len(bound)+len(fields) == 0 {
		return sb.String()
	}

	enc := zapcore.NewMapObjectEncoder()
	for _, f := range bound {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}
	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, enc.Fields[k])
	}
	return sb.String()
}
