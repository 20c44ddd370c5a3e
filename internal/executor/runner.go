package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/xdg/labguard/internal/audit"
	"github.com/xdg/labguard/internal/clog"
)

// Runner executes commands directly via os/exec. The zero value is not
// usable; construct with NewRunner.
type Runner struct {
	defaultTimeout time.Duration
	strict         bool
	recorder       audit.Recorder
	user           string
	now            func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithDefaultTimeout sets the timeout used when Command.Timeout is zero.
// Non-positive values keep DefaultTimeout.
func WithDefaultTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.defaultTimeout = d
		}
	}
}

// WithStrict disables RunString so that only argument vectors are accepted.
func WithStrict(strict bool) Option {
	return func(r *Runner) {
		r.strict = strict
	}
}

// WithAudit records an EXEC event for every command attributed to user.
func WithAudit(rec audit.Recorder, user string) Option {
	return func(r *Runner) {
		r.recorder = rec
		r.user = user
	}
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		defaultTimeout: DefaultTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultTimeout returns the timeout applied to commands that set none.
func (r *Runner) DefaultTimeout() time.Duration {
	return r.defaultTimeout
}

// Strict reports whether RunString is disabled.
func (r *Runner) Strict() bool {
	return r.strict
}

// RunString splits s on whitespace and runs the resulting argument vector.
// The string is never interpreted by a shell: quotes, pipes and semicolons
// are passed to the program as literal text. In strict mode RunString
// always fails with ErrInvalidCommand.
func (r *Runner) RunString(ctx context.Context, s string) (Result, error) {
	if r.strict {
		err := &InvalidCommandError{Reason: "string commands are disabled in strict mode; pass an argument list"}
		r.record(audit.EventCommandRejected, "", 0, 0, err.Reason)
		return Result{}, err
	}
	clog.Warn("running command from a string; prefer an argument list")
	return r.Run(ctx, Command{Args: strings.Fields(s)})
}

// Run executes cmd and waits for it to exit or time out.
func (r *Runner) Run(ctx context.Context, cmd Command) (Result, error) {
	if err := ValidateCommand(cmd.Args); err != nil {
		var name string
		if len(cmd.Args) > 0 {
			name = cmd.Args[0]
		}
		clog.Warn("rejected command %q: %v", name, err)
		r.record(audit.EventCommandRejected, name, 0, 0, err.Error())
		return Result{}, err
	}

	name := cmd.Args[0]
	timeout := cmd.Timeout
	if timeout <= 0 {
		timeout = r.defaultTimeout
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c := exec.CommandContext(runCtx, name, cmd.Args[1:]...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = os.Environ()
		for _, k := range slices.Sorted(maps.Keys(cmd.Env)) {
			c.Env = append(c.Env, k+"="+cmd.Env[k])
		}
	}
	if !cmd.Interactive {
		// Interactive children must stay in the terminal's foreground group.
		configureProcessGroup(c)
	}

	var stdout, stderr bytes.Buffer
	if cmd.Interactive {
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
	} else {
		c.Stdout = &stdout
		c.Stderr = &stderr
	}

	clog.Debug("exec: %s (timeout %s, dir %q)", QuoteArgs(cmd.Args), timeout, cmd.Dir)

	start := r.now()
	err := c.Run()
	duration := r.now().Sub(start)

	result := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: duration,
	}

	if err != nil {
		switch {
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			clog.Warn("command %s timed out after %s", name, timeout)
			r.record(audit.EventCommandTimeout, name, 0, duration, "")
			return Result{}, &TimeoutError{
				Cmd:     name,
				Timeout: timeout,
				Stdout:  result.Stdout,
				Stderr:  result.Stderr,
			}
		case ctx.Err() != nil:
			clog.Warn("command %s canceled: %v", name, ctx.Err())
			return Result{}, fmt.Errorf("run %s: %w", name, ctx.Err())
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			clog.Warn("command %s failed to start: %v", name, err)
			r.record(audit.EventCommandRejected, name, 0, 0, err.Error())
			return Result{}, &StartError{Cmd: name, Err: err}
		}
	}

	clog.Info("command %s exited %d in %s", name, result.ExitCode, duration.Round(time.Millisecond))
	r.record(audit.EventCommandComplete, name, result.ExitCode, duration, "")
	return result, nil
}

// record writes an EXEC audit event when auditing is enabled. Audit write
// failures are logged and do not change the command outcome.
func (r *Runner) record(typ audit.EventType, name string, exitCode int, d time.Duration, reason string) {
	if r.recorder == nil {
		return
	}
	err := r.recorder.Record(&audit.Event{
		Timestamp: r.now(),
		Type:      typ,
		User:      r.user,
		Cmd:       name,
		ExitCode:  exitCode,
		Duration:  d,
		Reason:    reason,
	})
	if err != nil {
		clog.Error("audit write failed: %v", err)
	}
}
