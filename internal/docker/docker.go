// Package docker wraps the docker CLI for the environment checks.
//
// It relies solely on the `docker` binary in PATH, invoked through an
// executor so that every call is an argument vector with a timeout. The CLI
// handles runtime-specific configuration through its standard mechanisms
// (DOCKER_HOST, contexts, ~/.docker/config.json).
package docker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xdg/labguard/internal/executor"
)

// Sentinel errors for docker operations.
var (
	// ErrDockerNotRunning indicates the Docker daemon is not running or accessible.
	ErrDockerNotRunning = errors.New("docker daemon is not running")

	// ErrDockerNotFound indicates the docker CLI is not installed or not on PATH.
	ErrDockerNotFound = errors.New("docker CLI not found")

	// ErrNoResults indicates the docker command returned no results.
	ErrNoResults = errors.New("no results from docker command")
)

// CommandError represents a failed docker command with stderr output.
type CommandError struct {
	Command  string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("docker %s failed", e.Command)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	} else {
		msg += fmt.Sprintf(": exit status %d", e.ExitCode)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += "\nstderr: " + stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Client runs docker commands through an executor.
type Client struct {
	exec   executor.Executor
	binary string
}

// NewClient returns a Client that runs the docker binary found on PATH.
func NewClient(exec executor.Executor) *Client {
	return &Client{exec: exec, binary: "docker"}
}

// cmdNameFromArgs extracts the command name from a slice of arguments.
func cmdNameFromArgs(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

// Run executes a docker CLI command and returns stdout. A non-zero exit is
// returned as a *CommandError carrying stderr.
func (c *Client) Run(ctx context.Context, args ...string) (string, error) {
	res, err := c.exec.Run(ctx, executor.Command{Args: append([]string{c.binary}, args...)})
	if err != nil {
		var se *executor.StartError
		if errors.As(err, &se) {
			err = fmt.Errorf("%w: %v", ErrDockerNotFound, se.Err)
		}
		return "", &CommandError{Command: cmdNameFromArgs(args), Args: args, ExitCode: -1, Err: err}
	}
	if res.ExitCode != 0 {
		return "", &CommandError{
			Command:  cmdNameFromArgs(args),
			Args:     args,
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
		}
	}
	return res.Stdout, nil
}

// RunJSONLines executes a docker command whose output is one JSON object
// per line and unmarshals each line into result. A single JSON array is
// also accepted, since older compose versions print one.
//
// If strict is false and the command returns empty output, result is left
// unchanged and nil is returned. If strict is true, empty output returns
// ErrNoResults.
func RunJSONLines[T any](ctx context.Context, c *Client, result *[]T, strict bool, args ...string) error {
	out, err := c.Run(ctx, args...)
	if err != nil {
		return err
	}

	out = strings.TrimSpace(out)
	if out == "" {
		if strict {
			return ErrNoResults
		}
		return nil
	}

	return parseJSONLines(result, out, args)
}

// parseJSONLines parses newline-separated JSON objects into a slice.
func parseJSONLines[T any](result *[]T, out string, args []string) error {
	cmdName := cmdNameFromArgs(args)

	if strings.HasPrefix(out, "[") {
		var items []T
		if err := json.Unmarshal([]byte(out), &items); err != nil {
			return fmt.Errorf("docker %s: failed to parse JSON array: %w", cmdName, err)
		}
		*result = items
		return nil
	}

	lines := strings.Split(out, "\n")
	items := make([]T, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var item T
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			return fmt.Errorf("docker %s: failed to parse JSON on line %d: %w", cmdName, i+1, err)
		}
		items = append(items, item)
	}

	*result = items
	return nil
}

// Version returns the first line of `docker --version`.
func (c *Client) Version(ctx context.Context) (string, error) {
	out, err := c.Run(ctx, "--version")
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	return line, nil
}

// CheckDaemon verifies the Docker daemon is running and accessible and
// returns its server version. Returns ErrDockerNotRunning if the daemon
// cannot be reached, or ErrDockerNotFound if the CLI is missing.
func (c *Client) CheckDaemon(ctx context.Context) (string, error) {
	out, err := c.Run(ctx, "info", "--format", "{{.ServerVersion}}")
	if err != nil {
		if errors.Is(err, ErrDockerNotFound) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrDockerNotRunning, err)
	}
	return strings.TrimSpace(out), nil
}
