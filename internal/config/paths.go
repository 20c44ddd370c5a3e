package config

import (
	"fmt"
	"os"

	"github.com/xdg/labguard/internal/pathutil"
)

// Dir returns the labguard configuration directory path.
// By default, this is ~/.config/labguard/. If the XDG_CONFIG_HOME
// environment variable is set, it uses $XDG_CONFIG_HOME/labguard/ instead.
// The returned path always has a trailing slash.
func Dir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = "~/.config"
	}
	return pathutil.ExpandHome(base) + "/labguard/"
}

// EnsureDir creates the configuration directory with 0700 permissions if
// it doesn't exist.
func EnsureDir() error {
	if err := os.MkdirAll(Dir(), 0o700); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}
	return nil
}

// GlobalConfigPath returns the full path to the configuration file.
// This is Dir() + "config.yaml".
func GlobalConfigPath() string {
	return Dir() + "config.yaml"
}
