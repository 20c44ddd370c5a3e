package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/xdg/labguard/internal/clog"
	"github.com/xdg/labguard/internal/pathutil"
)

// LoadGlobalConfig loads the configuration from GlobalConfigPath.
// If the file doesn't exist, the commented default file is written and
// the defaults are returned.
func LoadGlobalConfig() (*GlobalConfig, error) {
	path := GlobalConfigPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		clog.Debug("config: %s not found, creating defaults", path)
		if writeErr := WriteDefaultConfig(); writeErr != nil {
			clog.Warn("config: failed to create default config: %v", writeErr)
		}
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration at path. A missing file yields the
// defaults. The result is validated, completed with defaults and has every
// ~ in a path expanded.
func LoadFrom(path string) (*GlobalConfig, error) {
	clog.Debug("config: loading %s", path)

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := DefaultGlobalConfig()
			expandGlobalPaths(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := ParseGlobalConfig(data)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := ValidateGlobalConfig(cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	ApplyDefaults(cfg)
	expandGlobalPaths(cfg)
	return cfg, nil
}

// expandGlobalPaths expands ~ in every path field.
func expandGlobalPaths(cfg *GlobalConfig) {
	cfg.Paths.Root = pathutil.ExpandHome(cfg.Paths.Root)
	for name, dir := range cfg.Paths.Categories {
		cfg.Paths.Categories[name] = pathutil.ExpandHome(dir)
	}
	cfg.Audit.File = pathutil.ExpandHome(cfg.Audit.File)
	cfg.Audit.SQLitePath = pathutil.ExpandHome(cfg.Audit.SQLitePath)
	cfg.Check.ComposeFile = pathutil.ExpandHome(cfg.Check.ComposeFile)
	cfg.Check.EnvFile = pathutil.ExpandHome(cfg.Check.EnvFile)
	cfg.Log.File = pathutil.ExpandHome(cfg.Log.File)
}
