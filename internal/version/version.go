// Package version provides version information for labguard.
// The Version variable is set at build time via ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Version is the current version of labguard.
// Set at build time via: -ldflags "-X github.com/xdg/labguard/internal/version.Version=v1.0.0"
// Defaults to "dev" for development builds.
var Version = "dev"

// String returns the version line printed by the version command.
func String() string {
	return fmt.Sprintf("labguard %s (%s, %s/%s)", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
