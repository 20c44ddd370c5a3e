package clog

import (
	"io"
	"sync"
)

var (
	stdMu  sync.Mutex
	std    = NewLogger()
	opened io.Closer // log file opened by Configure
)

func global() *Logger {
	stdMu.Lock()
	defer stdMu.Unlock()
	return std
}

// Configure sets the global level and quiet flag and, when logPath is not
// empty, appends to that file. A file opened by an earlier Configure is
// closed first.
func Configure(logPath string, level Level, quiet bool) error {
	if err := Close(); err != nil {
		return err
	}
	l := global()
	l.SetLevel(level)
	l.SetQuiet(quiet)
	if logPath == "" {
		return nil
	}

	f, err := OpenLogFile(logPath)
	if err != nil {
		return err
	}
	l.SetFileOutput(f)
	stdMu.Lock()
	opened = f
	stdMu.Unlock()
	return nil
}

// Close closes the file opened by Configure, if any, and stops file output.
func Close() error {
	stdMu.Lock()
	c := opened
	opened = nil
	l := std
	stdMu.Unlock()

	if c == nil {
		return nil
	}
	l.SetFileOutput(nil)
	return c.Close()
}

// SetLevel sets the global minimum level.
func SetLevel(level Level) { global().SetLevel(level) }

func Debug(format string, args ...any) { global().Debug(format, args...) }
func Info(format string, args ...any)  { global().Info(format, args...) }
func Warn(format string, args ...any)  { global().Warn(format, args...) }
func Error(format string, args ...any) { global().Error(format, args...) }

// Reset installs a fresh default logger. It does not close files; call
// Close first.
func Reset() {
	ReplaceGlobal(NewLogger())
}

// Discard silences the global logger.
func Discard() {
	l := global()
	l.SetFileOutput(io.Discard)
	l.SetErrOutput(io.Discard)
}

// TestLogger returns a debug-level logger writing every line to w.
func TestLogger(w io.Writer) *Logger {
	l := NewLogger()
	l.SetFileOutput(w)
	l.SetErrOutput(nil)
	l.SetLevel(LevelDebug)
	return l
}

// ReplaceGlobal installs l as the global logger and returns the previous one.
func ReplaceGlobal(l *Logger) *Logger {
	stdMu.Lock()
	defer stdMu.Unlock()
	old := std
	std = l
	return old
}
