package config

import (
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/xdg/labguard/internal/access"
	"github.com/xdg/labguard/internal/clog"
	"github.com/xdg/labguard/internal/executor"
)

// ValidateGlobalConfig checks that every set field holds a usable value:
//   - runner timeouts parse and are positive, and only one form is set
//   - runner.allowed_pattern compiles
//   - audit.driver is file or sqlite
//   - access.session_max_age parses and is non-negative
//   - role and permission names are well formed
//   - category names and directories are non-empty
//   - check.min_docker_version is a version number
//   - log.level is one of debug, info, warn, error
//
// Empty fields are valid; ApplyDefaults fills them.
func ValidateGlobalConfig(cfg *GlobalConfig) error {
	if cfg.Runner.DefaultTimeout != "" && cfg.Runner.DefaultTimeoutSeconds != 0 {
		return fmt.Errorf("runner: set default_timeout or default_timeout_seconds, not both")
	}
	if cfg.Runner.DefaultTimeout != "" {
		if err := validatePositiveDuration(cfg.Runner.DefaultTimeout, "runner.default_timeout"); err != nil {
			return err
		}
	}
	if cfg.Runner.DefaultTimeoutSeconds < 0 {
		return fmt.Errorf("runner.default_timeout_seconds: must be positive, got %d", cfg.Runner.DefaultTimeoutSeconds)
	}
	if cfg.Runner.AllowedPattern != "" {
		if _, err := executor.CompileArgumentPattern(cfg.Runner.AllowedPattern); err != nil {
			return fmt.Errorf("runner.allowed_pattern: %w", err)
		}
	}

	switch cfg.Audit.Driver {
	case "", AuditDriverFile, AuditDriverSQLite:
	default:
		return fmt.Errorf("audit.driver: invalid value %q, must be one of: file, sqlite", cfg.Audit.Driver)
	}

	if cfg.Access.SessionMaxAge != "" {
		d, err := time.ParseDuration(cfg.Access.SessionMaxAge)
		if err != nil {
			return fmt.Errorf("access.session_max_age: invalid duration %q", cfg.Access.SessionMaxAge)
		}
		if d < 0 {
			return fmt.Errorf("access.session_max_age: must be non-negative, got %s", d)
		}
	}

	if len(cfg.Roles) > 0 {
		if err := access.Roles(cfg.Roles).Validate(); err != nil {
			return fmt.Errorf("roles: %w", err)
		}
	}

	for name, dir := range cfg.Paths.Categories {
		if name == "" {
			return fmt.Errorf("paths.categories: empty category name")
		}
		if dir == "" {
			return fmt.Errorf("paths.categories.%s: empty directory", name)
		}
	}

	if cfg.Check.MinDockerVersion != "" {
		if _, err := semver.NewVersion(cfg.Check.MinDockerVersion); err != nil {
			return fmt.Errorf("check.min_docker_version: invalid version %q", cfg.Check.MinDockerVersion)
		}
	}

	if cfg.Log.Level != "" {
		if _, err := clog.ParseLevelStrict(cfg.Log.Level); err != nil {
			return fmt.Errorf("log.level: invalid value %q, must be one of: debug, info, warn, error", cfg.Log.Level)
		}
	}

	return nil
}

// validatePositiveDuration checks that d parses and is greater than zero.
func validatePositiveDuration(d, field string) error {
	parsed, err := time.ParseDuration(d)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q", field, d)
	}
	if parsed <= 0 {
		return fmt.Errorf("%s: must be positive, got %s", field, d)
	}
	return nil
}
