// Package labcheck verifies that the local lab environment is usable: the
// docker CLI and daemon respond, the compose file is valid, the .env file
// carries the required secrets and the compose services are up.
package labcheck

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/sync/errgroup"

	"github.com/xdg/labguard/internal/clog"
	"github.com/xdg/labguard/internal/docker"
)

// Status is the outcome of one check.
type Status string

// Check statuses.
const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
)

// Result is one line of the report.
type Result struct {
	Name    string
	Status  Status
	Message string
}

// Report collects check results in the order they ran.
type Report struct {
	Results []Result
}

// Failed reports whether any check failed.
func (r *Report) Failed() bool {
	return slices.ContainsFunc(r.Results, func(res Result) bool { return res.Status == StatusFail })
}

// Count returns the number of results with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

func (r *Report) add(name string, status Status, format string, args ...any) {
	res := Result{Name: name, Status: status, Message: fmt.Sprintf(format, args...)}
	r.Results = append(r.Results, res)
	clog.Debug("check %s: %s %s", name, status, res.Message)
}

// Options configures a Checker. An empty MinDockerVersion disables the
// version floor.
type Options struct {
	ComposeFile      string
	EnvFile          string
	RequiredEnv      []string
	MinDockerVersion string
}

// DefaultRequiredEnv lists the variables the lab's compose file expects.
var DefaultRequiredEnv = []string{"JUPYTER_TOKEN", "POSTGRES_PASSWORD"}

// DefaultMinDockerVersion is the first release shipping the compose v2
// plugin the lab's commands use.
const DefaultMinDockerVersion = "20.10.0"

var dockerVersionRE = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?`)

// Checker runs the environment checks.
type Checker struct {
	docker *docker.Client
	opts   Options
}

// New creates a Checker.
func New(client *docker.Client, opts Options) *Checker {
	if opts.RequiredEnv == nil {
		opts.RequiredEnv = DefaultRequiredEnv
	}
	return &Checker{docker: client, opts: opts}
}

// Run executes every check. Checks that depend on an earlier failure are
// skipped rather than failed twice.
func (c *Checker) Run(ctx context.Context) *Report {
	r := &Report{}

	dockerOK := false
	if v, err := c.docker.Version(ctx); err != nil {
		r.add("Docker CLI", StatusFail, "%s", firstLine(err))
	} else {
		dockerOK = true
		if have, old := olderThan(v, c.opts.MinDockerVersion); old {
			r.add("Docker CLI", StatusFail, "docker %s is older than the required %s", have, c.opts.MinDockerVersion)
		} else {
			r.add("Docker CLI", StatusPass, "%s", v)
		}
	}

	// The daemon check and compose validation only need the CLI; run them
	// concurrently.
	composeReady := c.opts.ComposeFile != "" && fileExists(c.opts.ComposeFile)
	var (
		daemonVersion         string
		daemonErr, composeErr error
	)
	if dockerOK {
		var g errgroup.Group
		g.Go(func() error {
			daemonVersion, daemonErr = c.docker.CheckDaemon(ctx)
			return nil
		})
		if composeReady {
			g.Go(func() error {
				composeErr = c.docker.ComposeConfig(ctx, c.opts.ComposeFile)
				return nil
			})
		}
		_ = g.Wait()
	}

	daemonOK := false
	switch {
	case !dockerOK:
		r.add("Docker daemon", StatusSkip, "docker CLI unavailable")
	case daemonErr != nil:
		r.add("Docker daemon", StatusFail, "%s", firstLine(daemonErr))
	default:
		daemonOK = true
		r.add("Docker daemon", StatusPass, "server version %s", daemonVersion)
	}

	composeOK := false
	switch {
	case c.opts.ComposeFile == "":
		r.add("Compose file", StatusSkip, "no compose file configured")
	case !composeReady:
		r.add("Compose file", StatusFail, "%s not found", c.opts.ComposeFile)
	case !dockerOK:
		r.add("Compose file", StatusSkip, "docker CLI unavailable")
	case composeErr != nil:
		r.add("Compose file", StatusFail, "%s", lastLine(composeErr))
	default:
		composeOK = true
		r.add("Compose file", StatusPass, "%s is valid", c.opts.ComposeFile)
	}

	c.checkEnv(r)

	switch {
	case !daemonOK || !composeOK:
		r.add("Compose services", StatusSkip, "requires a reachable daemon and a valid compose file")
	default:
		services, err := c.docker.ComposePS(ctx, c.opts.ComposeFile)
		switch {
		case err != nil:
			r.add("Compose services", StatusFail, "%s", firstLine(err))
		case len(services) == 0:
			r.add("Compose services", StatusSkip, "no services running")
		default:
			var down []string
			for _, s := range services {
				if !s.Running() {
					down = append(down, fmt.Sprintf("%s (%s)", s.Service, s.State))
				}
			}
			if len(down) > 0 {
				r.add("Compose services", StatusFail, "not running: %s", strings.Join(down, ", "))
			} else {
				r.add("Compose services", StatusPass, "%d running", len(services))
			}
		}
	}

	return r
}

// olderThan extracts the version from a `docker --version` line and reports
// whether it is below minimum. Lines without a recognizable version are
// never considered old.
func olderThan(line, minimum string) (string, bool) {
	if minimum == "" {
		return "", false
	}
	want, err := semver.NewVersion(minimum)
	if err != nil {
		return "", false
	}
	have, err := semver.NewVersion(dockerVersionRE.FindString(line))
	if err != nil {
		return "", false
	}
	return have.String(), have.LessThan(want)
}

// checkEnv verifies the required keys are present and non-empty. Values are
// never echoed.
func (c *Checker) checkEnv(r *Report) {
	if c.opts.EnvFile == "" {
		r.add("Environment file", StatusSkip, "no env file configured")
		return
	}
	env, err := ReadEnvFile(c.opts.EnvFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.add("Environment file", StatusFail, "%s not found", c.opts.EnvFile)
			return
		}
		r.add("Environment file", StatusFail, "%v", err)
		return
	}

	var missing []string
	for _, key := range c.opts.RequiredEnv {
		if env[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		r.add("Environment file", StatusFail, "missing or empty: %s", strings.Join(missing, ", "))
		return
	}
	r.add("Environment file", StatusPass, "%d required variables set", len(c.opts.RequiredEnv))
}

// ReadEnvFile parses a dotenv-style file: KEY=VALUE lines, optional
// "export " prefix, # comments, and single or double quoted values.
func ReadEnvFile(path string) (map[string]string, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from user config
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	env := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%s:%d: expected KEY=VALUE", path, lineNo)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		} else if i := strings.Index(value, " #"); i >= 0 {
			value = strings.TrimSpace(value[:i])
		}
		env[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return env, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func firstLine(err error) string {
	line, _, _ := strings.Cut(err.Error(), "\n")
	return line
}

func lastLine(err error) string {
	msg := strings.TrimSpace(err.Error())
	if i := strings.LastIndex(msg, "\n"); i >= 0 {
		return strings.TrimSpace(msg[i+1:])
	}
	return msg
}
