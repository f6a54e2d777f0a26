package events

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

// writerLogger implements Logger on top of an io.Writer, one line per entry.
type writerLogger struct {
	writer io.Writer
	level  LogLevel
	fields map[string]any
	now    func() time.Time
}

// NewWriterLogger creates a logger writing entries at or above level to writer.
func NewWriterLogger(writer io.Writer, level LogLevel) Logger {
	return &writerLogger{
		writer: writer,
		level:  level,
		fields: make(map[string]any),
		now:    time.Now,
	}
}

func (l *writerLogger) WithField(key string, value any) Logger {
	next := &writerLogger{
		writer: l.writer,
		level:  l.level,
		fields: make(map[string]any, len(l.fields)+1),
		now:    l.now,
	}
	for k, v := range l.fields {
		next.fields[k] = v
	}
	next.fields[key] = value
	return next
}

func (l *writerLogger) formatFields() string {
	if len(l.fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(l.fields))
	for k := range l.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, l.fields[k])
	}
	return " [" + strings.Join(parts, ", ") + "]"
}

func (l *writerLogger) log(level LogLevel, msg string) {
	if level < l.level {
		return
	}
	timestamp := l.now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(l.writer, "[%s] %s%s: %s\n", timestamp, level, l.formatFields(), msg)
}

func (l *writerLogger) Debug(args ...any) {
	l.log(LevelDebug, fmt.Sprint(args...))
}

func (l *writerLogger) Debugf(format string, args ...any) {
	l.log(LevelDebug, fmt.Sprintf(format, args...))
}

func (l *writerLogger) Info(args ...any) {
	l.log(LevelInfo, fmt.Sprint(args...))
}

func (l *writerLogger) Infof(format string, args ...any) {
	l.log(LevelInfo, fmt.Sprintf(format, args...))
}

func (l *writerLogger) Warn(args ...any) {
	l.log(LevelWarn, fmt.Sprint(args...))
}

func (l *writerLogger) Warnf(format string, args ...any) {
	l.log(LevelWarn, fmt.Sprintf(format, args...))
}

func (l *writerLogger) Error(args ...any) {
	l.log(LevelError, fmt.Sprint(args...))
}

func (l *writerLogger) Errorf(format string, args ...any) {
	l.log(LevelError, fmt.Sprintf(format, args...))
}
