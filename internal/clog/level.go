// Package clog provides leveled operational logging for labguard.
// This is distinct from user-facing output (see internal/term) and from the
// security audit trail (see internal/audit).
//
// Log levels:
//   - Debug: verbose diagnostics, only with --debug
//   - Info: normal operational events
//   - Warn: unexpected conditions that don't prevent operation
//   - Error: failures that affect functionality
//
// Output destinations:
//   - File: all enabled levels
//   - Stderr: Warn and Error only, unless quiet
package clog

import (
	"fmt"
	"strings"
)

// Level is the severity of a log message. Higher is more severe.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

var levelAliases = map[string]Level{
	"":        LevelInfo,
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
	"err":     LevelError,
}

func (l Level) String() string {
	if l < LevelDebug || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel is ParseLevelStrict with unknown names mapped to LevelInfo.
func ParseLevel(s string) Level {
	lvl, _ := ParseLevelStrict(s)
	return lvl
}

// ParseLevelStrict parses a case-insensitive level name.
func ParseLevelStrict(s string) (Level, error) {
	if lvl, ok := levelAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return lvl, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}
