package config

import (
	"maps"
	"time"

	"github.com/xdg/labguard/internal/access"
	"github.com/xdg/labguard/internal/executor"
	"github.com/xdg/labguard/internal/safepath"
)

// RunnerTimeout returns the configured default command timeout, or
// executor.DefaultTimeout when none is set. Call after validation.
func (c *GlobalConfig) RunnerTimeout() time.Duration {
	if c.Runner.DefaultTimeoutSeconds > 0 {
		return time.Duration(c.Runner.DefaultTimeoutSeconds) * time.Second
	}
	if d, err := time.ParseDuration(c.Runner.DefaultTimeout); err == nil && d > 0 {
		return d
	}
	return executor.DefaultTimeout
}

// SessionMaxAge returns the configured session lifetime; zero means
// sessions never expire.
func (c *GlobalConfig) SessionMaxAge() time.Duration {
	d, err := time.ParseDuration(c.Access.SessionMaxAge)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// Layout returns the category→directory map for the path resolver.
// Explicit categories win; otherwise the standard layout under Paths.Root.
func (c *GlobalConfig) Layout() map[string]string {
	if len(c.Paths.Categories) > 0 {
		return maps.Clone(c.Paths.Categories)
	}
	root := c.Paths.Root
	if root == "" {
		root = "."
	}
	return safepath.DefaultLayout(root)
}

// RoleTable returns the role→permissions table for the access guard.
func (c *GlobalConfig) RoleTable() access.Roles {
	if len(c.Roles) == 0 {
		return access.DefaultRoles()
	}
	return access.Roles(c.Roles)
}
