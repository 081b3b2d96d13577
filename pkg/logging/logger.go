// Package logging writes levelled, tagged log entries as JSON lines.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level is a log severity.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

var rank = map[Level]int{DebugLevel: 0, InfoLevel: 1, WarnLevel: 2, ErrorLevel: 3}

// ParseLevel accepts level names in any case.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := rank[l]; !ok {
		return "", fmt.Errorf("logging: unknown level %q", s)
	}
	return l, nil
}

// Fields carries structured values attached to an entry.
type Fields map[string]any

// Entry is one serialized log line.
type Entry struct {
	Time    string `json:"time"`
	Level   Level  `json:"level"`
	Tag     string `json:"tag,omitempty"`
	Message string `json:"message"`
	Fields  Fields `json:"fields,omitempty"`
}

type sink struct {
	mu      sync.Mutex
	out     io.Writer
	console io.Writer
	closer  io.Closer
	level   Level
	now     func() time.Time
}

// Logger writes entries to its sink. Tagged children share the sink.
type Logger struct {
	s   *sink
	tag string
}

// Options configures New.
type Options struct {
	Level Level
	// Dir and File name a log file; when File is empty entries go to Output.
	Dir  string
	File string
	// Output receives JSON lines when no file is configured. Defaults to stderr.
	Output io.Writer
	// Console, when set, also receives a short human-readable line per entry.
	Console io.Writer
}

// New builds a logger from opts.
func New(opts Options) (*Logger, error) {
	level := opts.Level
	if level == "" {
		level = InfoLevel
	}
	if _, ok := rank[level]; !ok {
		return nil, fmt.Errorf("logging: unknown level %q", level)
	}
	s := &sink{out: opts.Output, console: opts.Console, level: level, now: time.Now}
	if opts.File != "" {
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(filepath.Join(dir, opts.File), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		s.out, s.closer = f, f
	}
	if s.out == nil {
		s.out = os.Stderr
	}
	return &Logger{s: s}, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{s: &sink{out: io.Discard, level: ErrorLevel, now: time.Now}}
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.s.closer == nil {
		return nil
	}
	return l.s.closer.Close()
}

// WithTag returns a child logger whose entries carry tag.
func (l *Logger) WithTag(tag string) *Logger {
	if l == nil {
		return Discard().WithTag(tag)
	}
	return &Logger{s: l.s, tag: tag}
}

// Enabled reports whether entries at level are written.
func (l *Logger) Enabled(level Level) bool {
	return l != nil && rank[level] >= rank[l.s.level]
}

func (l *Logger) Debug(msg string, fields ...Fields) { l.log(DebugLevel, msg, fields) }
func (l *Logger) Info(msg string, fields ...Fields)  { l.log(InfoLevel, msg, fields) }
func (l *Logger) Warn(msg string, fields ...Fields)  { l.log(WarnLevel, msg, fields) }
func (l *Logger) Error(msg string, fields ...Fields) { l.log(ErrorLevel, msg, fields) }

func (l *Logger) log(level Level, msg string, fields []Fields) {
	if !l.Enabled(level) {
		return
	}
	now := l.s.now().Format("2006-01-02 15:04:05.000")
	entry := Entry{Time: now, Level: level, Tag: l.tag, Message: msg}
	if len(fields) > 0 {
		entry.Fields = Fields{}
		for _, f := range fields {
			for k, v := range f {
				if err, ok := v.(error); ok {
					v = err.Error()
				}
				entry.Fields[k] = v
			}
		}
	}
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log marshal failed: %v\n", err)
		return
	}

	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if _, err := l.s.out.Write(append(data, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "log write failed: %s %v\n", msg, err)
	}
	if l.s.console != nil {
		if l.tag != "" {
			fmt.Fprintf(l.s.console, "[%s] [%s] [%s] %s\n", now, level, l.tag, msg)
		} else {
			fmt.Fprintf(l.s.console, "[%s] [%s] %s\n", now, level, msg)
		}
	}
}
