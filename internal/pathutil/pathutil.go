// Package pathutil provides path manipulation and canonicalization helpers.
package pathutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome replaces a leading ~ in path with the user's home directory.
// If the home directory cannot be determined, the path is returned unchanged.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// maxSymlinks bounds link expansion in Canonical, matching Linux's limit.
const maxSymlinks = 40

// ErrSymlinkLoop is returned by Canonical when resolving path follows more
// than maxSymlinks links.
var ErrSymlinkLoop = errors.New("too many levels of symbolic links")

// Canonical returns the absolute form of path with every symlink resolved,
// walking one component at a time the way the kernel does. The path need
// not exist. Missing components are appended as written, but a symlink is
// followed even when its target is missing, so a dangling link resolves to
// where a write through it would land. ".." after a symlink refers to the
// parent of the link's target. ".." after a missing component is applied
// lexically.
func Canonical(path string) (string, error) {
	if !filepath.IsAbs(path) {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		path = wd + string(filepath.Separator) + path
	}

	vol := filepath.VolumeName(path)
	root := vol + string(filepath.Separator)
	pending := splitPath(path[len(vol):])
	resolved := root
	links := 0

	for len(pending) > 0 {
		name := pending[0]
		pending = pending[1:]

		switch name {
		case "", ".":
			continue
		case "..":
			resolved = filepath.Dir(resolved)
			continue
		}

		next := filepath.Join(resolved, name)
		info, err := os.Lstat(next)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			resolved = next
			continue
		case err != nil:
			return "", err
		case info.Mode()&fs.ModeSymlink == 0:
			resolved = next
			continue
		}

		if links++; links > maxSymlinks {
			return "", fmt.Errorf("canonicalize %s: %w", path, ErrSymlinkLoop)
		}
		target, err := os.Readlink(next)
		if err != nil {
			return "", err
		}
		if filepath.IsAbs(target) {
			tvol := filepath.VolumeName(target)
			resolved = tvol + string(filepath.Separator)
			target = target[len(tvol):]
		}
		pending = append(splitPath(target), pending...)
	}
	return resolved, nil
}

func splitPath(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool { return os.IsPathSeparator(uint8(r)) })
}

// IsWithin reports whether target equals base or is a descendant of it.
// Both paths are compared lexically; callers canonicalize first.
func IsWithin(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
