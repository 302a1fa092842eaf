// Package activity is the append-only human-readable event log. One line per
// event, tagged with the simulated date and either a group name or a GLOBAL
// marker. The file is never read back by the application.
package activity

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

const globalTag = "GLOBAL"

// Logger appends event lines to a single file. Appends are serialized by a
// mutex so lines from different call sites never interleave.
type Logger struct {
	mu   sync.Mutex
	file *os.File
	log  *zap.Logger
}

// Open opens (creating if needed) the activity log file in append mode.
func Open(path string, log *zap.Logger) (*Logger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create activity log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open activity log: %w", err)
	}
	return &Logger{file: f, log: log}, nil
}

func (l *Logger) Close() error {
	return l.file.Close()
}

// Group records an event for one group.
func (l *Logger) Group(date time.Time, groupName, format string, args ...interface{}) {
	l.appendLine(date, groupName, fmt.Sprintf(format, args...))
}

// Global records an event not tied to any group.
func (l *Logger) Global(date time.Time, format string, args ...interface{}) {
	l.appendLine(date, globalTag, fmt.Sprintf(format, args...))
}

// A failed append is reported and dropped; the event log is a side-effect
// sink and never fails the operation that produced the event.
func (l *Logger) appendLine(date time.Time, tag, message string) {
	line := fmt.Sprintf("[%s] [%s] %s\n", date.Format("2006-01-02"), tag, message)
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.file.WriteString(line); err != nil {
		l.log.Warn("failed to write activity log line", zap.Error(err))
	}
}
