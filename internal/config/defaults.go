package config

import (
	"path/filepath"

	"github.com/xdg/labguard/internal/access"
	"github.com/xdg/labguard/internal/clog"
	"github.com/xdg/labguard/internal/labcheck"
)

// DefaultGlobalConfig returns a GlobalConfig with all defaults populated.
// Paths.Categories stays empty so the standard layout follows Root.
func DefaultGlobalConfig() *GlobalConfig {
	state := clog.StateDir()
	return &GlobalConfig{
		Paths: PathsConfig{
			Root: ".",
		},
		Roles: access.DefaultRoles(),
		Runner: RunnerConfig{
			DefaultTimeout: "30s",
		},
		Audit: AuditConfig{
			File:       filepath.Join(state, "audit.log"),
			Driver:     AuditDriverFile,
			SQLitePath: filepath.Join(state, "audit.db"),
		},
		Check: CheckConfig{
			ComposeFile:      "docker-compose.yml",
			EnvFile:          ".env",
			RequiredEnv:      append([]string(nil), labcheck.DefaultRequiredEnv...),
			MinDockerVersion: labcheck.DefaultMinDockerVersion,
		},
		Log: LogConfig{
			File:  clog.DefaultLogPath(),
			Level: "info",
		},
	}
}
