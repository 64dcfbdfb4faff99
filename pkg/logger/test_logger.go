package logger

import (
	"sync"

	"github.com/rs/zerolog"
)

// TestLogger is a logger implementation for testing that captures log entries
type TestLogger struct {
	mu      sync.Mutex
	entries []TestLogEntry
	fields  map[string]interface{}
	root    *TestLogger
}

// TestLogEntry represents a captured log entry
type TestLogEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// NewTestLogger creates a new test logger
func NewTestLogger() *TestLogger {
	return &TestLogger{
		entries: make([]TestLogEntry, 0),
		fields:  make(map[string]interface{}),
	}
}

// record appends to the root logger so assertions on the original
// instance see everything logged through derived loggers.
func (t *TestLogger) record(level, msg string, fields map[string]interface{}) {
	merged := make(map[string]interface{}, len(t.fields)+len(fields))
	for k, v := range t.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	r := t
	if t.root != nil {
		r = t.root
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, TestLogEntry{
		Level:   level,
		Message: msg,
		Fields:  merged,
	})
}

func (t *TestLogger) Debug(msg string) { t.record("debug", msg, nil) }
func (t *TestLogger) Info(msg string)  { t.record("info", msg, nil) }
func (t *TestLogger) Warn(msg string)  { t.record("warn", msg, nil) }
func (t *TestLogger) Error(msg string) { t.record("error", msg, nil) }
func (t *TestLogger) Fatal(msg string) { t.record("fatal", msg, nil) }

func (t *TestLogger) WithField(key string, value interface{}) Logger {
	return t.WithFields(map[string]interface{}{key: value})
}

func (t *TestLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(t.fields)+len(fields))
	for k, v := range t.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	root := t
	if t.root != nil {
		root = t.root
	}
	return &TestLogger{fields: merged, root: root}
}

func (t *TestLogger) WithError(err error) Logger {
	if err == nil {
		return t
	}
	return t.WithField("error", err.Error())
}

func (t *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	t.record("debug", msg, fields)
}

func (t *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	t.record("info", msg, fields)
}

func (t *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	t.record("warn", msg, fields)
}

func (t *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	t.record("error", msg, fields)
}

// GetZerolog returns a no-op zerolog instance for the test logger
func (t *TestLogger) GetZerolog() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// Entries returns a copy of the captured log entries
func (t *TestLogger) Entries() []TestLogEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TestLogEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// HasEntry reports whether an entry with the given level and message exists
func (t *TestLogger) HasEntry(level, message string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.entries {
		if e.Level == level && e.Message == message {
			return true
		}
	}
	return false
}

// Reset clears all captured entries
func (t *TestLogger) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = t.entries[:0]
}
