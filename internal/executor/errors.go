package executor

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors. Typed errors below match them with errors.Is.
var (
	ErrInvalidCommand  = errors.New("invalid command")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrCommandTimeout  = errors.New("command timed out")
)

// InvalidCommandError explains why a command was rejected before spawning.
type InvalidCommandError struct {
	Reason string
}

func (e *InvalidCommandError) Error() string {
	return fmt.Sprintf("invalid command: %s", e.Reason)
}

func (e *InvalidCommandError) Unwrap() error {
	return ErrInvalidCommand
}

// InvalidArgumentError reports an argument outside the allowlist. The
// offending value is quoted so control characters stay visible.
type InvalidArgumentError struct {
	Arg     string
	Pattern string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q: must match %s", e.Arg, e.Pattern)
}

func (e *InvalidArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// TimeoutError is returned when a command exceeds its deadline. Output
// captured before the kill is preserved.
type TimeoutError struct {
	Cmd     string
	Timeout time.Duration
	Stdout  string
	Stderr  string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command %s timed out after %s", e.Cmd, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return ErrCommandTimeout
}

// StartError is returned when the executable could not be started, for
// example because it was not found on PATH.
type StartError struct {
	Cmd string
	Err error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("start %s: %v", e.Cmd, e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}
