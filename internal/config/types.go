// Package config provides the labguard configuration types. These types
// map to the YAML file at ~/.config/labguard/config.yaml.
package config

// GlobalConfig represents the top-level labguard configuration.
type GlobalConfig struct {
	Paths  PathsConfig         `yaml:"paths,omitempty"`
	Roles  map[string][]string `yaml:"roles,omitempty"`
	Runner RunnerConfig        `yaml:"runner,omitempty"`
	Audit  AuditConfig         `yaml:"audit,omitempty"`
	Access AccessConfig        `yaml:"access,omitempty"`
	Check  CheckConfig         `yaml:"check,omitempty"`
	Log    LogConfig           `yaml:"log,omitempty"`
}

// PathsConfig locates the data and output directories. Categories maps a
// category name to its base directory; when empty the standard layout
// under Root is used.
type PathsConfig struct {
	Root       string            `yaml:"root,omitempty"`
	Categories map[string]string `yaml:"categories,omitempty"`
}

// RunnerConfig contains settings for running external commands.
// DefaultTimeout is a duration string ("30s"); DefaultTimeoutSeconds is
// accepted as an integer alternative. Setting both is an error.
type RunnerConfig struct {
	DefaultTimeout        string `yaml:"default_timeout,omitempty"`
	DefaultTimeoutSeconds int    `yaml:"default_timeout_seconds,omitempty"`
	Strict                bool   `yaml:"strict,omitempty"`
	AllowedPattern        string `yaml:"allowed_pattern,omitempty"`
}

// AuditConfig selects where the audit trail is written. Driver is "file"
// (the default) or "sqlite".
type AuditConfig struct {
	File       string `yaml:"file,omitempty"`
	Driver     string `yaml:"driver,omitempty"`
	SQLitePath string `yaml:"sqlite_path,omitempty"`
}

// AccessConfig contains session settings. SessionMaxAge is a duration
// string; empty or "0" disables expiry.
type AccessConfig struct {
	SessionMaxAge string `yaml:"session_max_age,omitempty"`
}

// CheckConfig contains the environment check inputs.
type CheckConfig struct {
	ComposeFile string   `yaml:"compose_file,omitempty"`
	EnvFile     string   `yaml:"env_file,omitempty"`
	RequiredEnv []string `yaml:"required_env,omitempty"`
	// MinDockerVersion is the oldest docker CLI the check accepts.
	MinDockerVersion string `yaml:"min_docker_version,omitempty"`
}

// LogConfig contains operational logging settings.
type LogConfig struct {
	File  string `yaml:"file,omitempty"`
	Level string `yaml:"level,omitempty"`
}

// Audit drivers.
const (
	AuditDriverFile   = "file"
	AuditDriverSQLite = "sqlite"
)
