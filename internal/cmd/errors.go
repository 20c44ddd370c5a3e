package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xdg/labguard/internal/access"
	"github.com/xdg/labguard/internal/docker"
	"github.com/xdg/labguard/internal/executor"
	"github.com/xdg/labguard/internal/safepath"
)

// ExitCodeError carries a process exit code out of a command. main exits
// with Code without printing anything further.
type ExitCodeError struct {
	Code int
}

// NewExitCodeError returns an ExitCodeError for code.
func NewExitCodeError(code int) *ExitCodeError {
	return &ExitCodeError{Code: code}
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// dockerNotRunningError returns a user-friendly error when Docker is not running.
func dockerNotRunningError() error {
	return fmt.Errorf("docker is not running; please start Docker and try again")
}

// friendlyError rewrites the errors users commonly hit into a message with
// a hint. Unrecognized errors are returned unchanged.
func friendlyError(err error) error {
	var catErr *safepath.CategoryError
	var authzErr *access.AuthorizationError
	var timeoutErr *executor.TimeoutError
	var startErr *executor.StartError

	switch {
	case err == nil:
		return nil
	case errors.As(err, &catErr):
		return fmt.Errorf("unknown category %q; choose one of: %s", catErr.Category, strings.Join(catErr.Allowed, ", "))
	case errors.Is(err, safepath.ErrPathTraversal):
		return fmt.Errorf("refusing path outside its category directory: %w", err)
	case errors.As(err, &authzErr):
		return fmt.Errorf("permission denied: %w", err)
	case errors.Is(err, access.ErrUnknownRole):
		return fmt.Errorf("%w; see 'labguard config show' for the role table", err)
	case errors.As(err, &timeoutErr):
		return fmt.Errorf("%s did not finish within %s; raise --timeout or runner.default_timeout", timeoutErr.Cmd, timeoutErr.Timeout)
	case errors.As(err, &startErr):
		return fmt.Errorf("could not start %s; is it installed and on PATH? (%w)", startErr.Cmd, startErr.Err)
	case errors.Is(err, docker.ErrDockerNotRunning):
		return dockerNotRunningError()
	}
	return err
}
