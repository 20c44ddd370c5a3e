package clog

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"sync"
	"time"
)

// secretRE matches 64 lowercase hex characters, the shape of a session
// token. Such runs are replaced before a line is written anywhere.
var secretRE = regexp.MustCompile(`\b[0-9a-f]{64}\b`)

const redacted = "[REDACTED]"

// Logger writes leveled lines to a log file and copies warnings and errors
// to stderr.
type Logger struct {
	mu    sync.Mutex
	level Level
	file  io.Writer // every line at or above level; nil disables
	err   io.Writer // warn and error only; nil disables
	quiet bool      // suppress err
	now   func() time.Time
}

// NewLogger returns an info-level logger that copies warnings and errors to
// os.Stderr and has no file output.
func NewLogger() *Logger {
	return &Logger{level: LevelInfo, err: os.Stderr, now: time.Now}
}

// SetLevel sets the minimum level written.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetFileOutput sets the file writer. nil disables file logging.
func (l *Logger) SetFileOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.file = w
}

// SetErrOutput sets the stderr writer. nil disables the stderr copy.
func (l *Logger) SetErrOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = w
}

// SetQuiet suppresses the stderr copy of warnings and errors.
func (l *Logger) SetQuiet(quiet bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.quiet = quiet
}

func (l *Logger) Debug(format string, args ...any) { l.log(LevelDebug, format, args) }
func (l *Logger) Info(format string, args ...any)  { l.log(LevelInfo, format, args) }
func (l *Logger) Warn(format string, args ...any)  { l.log(LevelWarn, format, args) }
func (l *Logger) Error(format string, args ...any) { l.log(LevelError, format, args) }

func (l *Logger) log(level Level, format string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}

	msg := secretRE.ReplaceAllString(fmt.Sprintf(format, args...), redacted)

	if l.file != nil {
		_, _ = fmt.Fprintf(l.file, "%s [%s] %s\n", l.now().UTC().Format(time.RFC3339), level, msg)
	}
	if l.err != nil && !l.quiet && level >= LevelWarn {
		_, _ = fmt.Fprintf(l.err, "[%s] %s\n", level, msg)
	}
}
