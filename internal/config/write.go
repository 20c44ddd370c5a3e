package config

import (
	"errors"
	"fmt"
	"os"
)

// defaultConfigTemplate documents every option. Commented values are the
// built-in defaults.
const defaultConfigTemplate = `# labguard configuration

paths:
  # Project root; data/{raw,processed,external} and
  # outputs/{figures,models,reports} live below it.
  root: .
  # Explicit category directories replace the standard layout.
  # categories:
  #   raw: ~/lab/data/raw
  #   reports: ~/lab/outputs/reports

# Role to permission table. Replaces the built-in roles when set.
# roles:
#   admin: [read, write, delete, scale, encode, split, process]
#   data_scientist: [read, write, scale, encode, split, process]
#   data_analyst: [read, scale, encode, process]
#   viewer: [read]

runner:
  default_timeout: 30s
  # Reject whitespace-split string commands.
  strict: false
  # Allowlist for validate-arg; anchored to the whole argument.
  # allowed_pattern: "[A-Za-z0-9_./-]+"

audit:
  # file or sqlite
  driver: file
  # file: ~/.local/state/labguard/audit.log
  # sqlite_path: ~/.local/state/labguard/audit.db

access:
  # Sessions never expire unless this is set, e.g. 8h.
  # session_max_age: 8h

check:
  compose_file: docker-compose.yml
  env_file: .env
  required_env: [JUPYTER_TOKEN, POSTGRES_PASSWORD]
  min_docker_version: 20.10.0

log:
  # file: ~/.local/state/labguard/labguard.log
  level: info
`

// WriteDefaultConfig creates the default configuration file with comments.
// If the config file already exists, it returns nil without overwriting.
// The file is written with 0600 permissions (user read/write only).
func WriteDefaultConfig() error {
	path := GlobalConfigPath()

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}

	if err := EnsureDir(); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o600); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

// WriteGlobalConfig writes cfg to GlobalConfigPath, replacing any existing
// file. The file is written with 0600 permissions.
func WriteGlobalConfig(cfg *GlobalConfig) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	data, err := MarshalGlobalConfig(cfg)
	if err != nil {
		return err
	}

	if err = os.WriteFile(GlobalConfigPath(), data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
