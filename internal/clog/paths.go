package clog

import (
	"fmt"
	"os"
	"path/filepath"
)

// StateDir returns $XDG_STATE_HOME/labguard, or ~/.local/state/labguard.
// The audit trail and the operational log live here by default.
func StateDir() string {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		base = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(base, "labguard")
}

// DefaultLogPath returns StateDir()/labguard.log.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), "labguard.log")
}

// OpenLogFile opens path for appending with mode 0640, creating parent
// directories with mode 0750.
func OpenLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
