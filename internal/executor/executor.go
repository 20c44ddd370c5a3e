// Package executor runs external programs from an argument vector without
// ever involving a shell. Every run is bounded by a timeout; on expiry the
// child's whole process group is killed.
package executor

import (
	"context"
	"time"
)

// DefaultTimeout applies when neither the command nor the runner sets one.
const DefaultTimeout = 30 * time.Second

// Executor runs commands. Runner is the production implementation; tests and
// callers such as internal/docker accept the interface.
type Executor interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Command describes one program invocation.
type Command struct {
	// Args is the argument vector. Args[0] is the executable, looked up on
	// PATH when it contains no separator.
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env holds extra variables appended to the inherited environment.
	Env map[string]string

	// Timeout overrides the runner's default when positive.
	Timeout time.Duration

	// Interactive connects the child to the terminal instead of capturing
	// its output. Result.Stdout and Result.Stderr are empty.
	Interactive bool
}

// Result is the outcome of a command that ran to completion. A non-zero
// ExitCode is not an error.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Success reports whether the command exited with status 0.
func (r Result) Success() bool {
	return r.ExitCode == 0
}
