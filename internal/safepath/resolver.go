// Package safepath resolves user-supplied filenames against a fixed set of
// directory categories, refusing any input that would escape the category's
// base directory through "..", absolute paths, or symlinks.
package safepath

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xdg/labguard/internal/clog"
	"github.com/xdg/labguard/internal/pathutil"
)

// Category names used by the default project layout.
const (
	CategoryRaw       = "raw"
	CategoryProcessed = "processed"
	CategoryExternal  = "external"
	CategoryFigures   = "figures"
	CategoryModels    = "models"
	CategoryReports   = "reports"
)

// DefaultLayout returns the category to base directory mapping for a
// project root: data categories live under <root>/data and output
// categories under <root>/outputs.
func DefaultLayout(root string) map[string]string {
	return map[string]string{
		CategoryRaw:       filepath.Join(root, "data", CategoryRaw),
		CategoryProcessed: filepath.Join(root, "data", CategoryProcessed),
		CategoryExternal:  filepath.Join(root, "data", CategoryExternal),
		CategoryFigures:   filepath.Join(root, "outputs", CategoryFigures),
		CategoryModels:    filepath.Join(root, "outputs", CategoryModels),
		CategoryReports:   filepath.Join(root, "outputs", CategoryReports),
	}
}

// Resolver maps (filename, category) pairs to contained absolute paths.
// The category table is fixed at construction.
type Resolver struct {
	bases map[string]string
}

// New creates a Resolver from a category to base directory mapping.
// Relative base directories are made absolute against the current
// working directory. Returns an error if the mapping is empty or a base
// directory is empty.
func New(bases map[string]string) (*Resolver, error) {
	if len(bases) == 0 {
		return nil, fmt.Errorf("safepath: no categories configured")
	}

	r := &Resolver{bases: make(map[string]string, len(bases))}
	for category, base := range bases {
		if category == "" || base == "" {
			return nil, fmt.Errorf("safepath: category %q has empty base directory", category)
		}
		abs, err := filepath.Abs(pathutil.ExpandHome(base))
		if err != nil {
			return nil, fmt.Errorf("safepath: base for %q: %w", category, err)
		}
		r.bases[category] = abs
	}
	return r, nil
}

// Categories returns the configured category names in sorted order.
func (r *Resolver) Categories() []string {
	names := make([]string, 0, len(r.bases))
	for name := range r.bases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Base returns the configured base directory for category.
func (r *Resolver) Base(category string) (string, error) {
	base, ok := r.bases[category]
	if !ok {
		return "", &CategoryError{Category: category, Allowed: r.Categories()}
	}
	return base, nil
}

// Resolve returns the canonical absolute path for filename inside the base
// directory of category. The file need not exist. Resolve never touches
// the filesystem beyond reading symlinks.
func (r *Resolver) Resolve(filename, category string) (string, error) {
	base, err := r.Base(category)
	if err != nil {
		return "", err
	}

	if filename == "" || strings.ContainsRune(filename, 0) {
		return "", fmt.Errorf("%w: filename must be non-empty", ErrInvalidFilename)
	}

	// Windows-style separators are treated as separators on every platform
	// so that "..\..\x" cannot slip through as a single odd filename.
	normalized := strings.ReplaceAll(filename, `\`, "/")
	if filepath.IsAbs(normalized) || strings.HasPrefix(normalized, "/") || filepath.VolumeName(normalized) != "" {
		clog.Warn("safepath: rejected absolute filename for category %s", category)
		return "", &TraversalError{Filename: filename, Category: category}
	}

	canonicalBase, err := pathutil.Canonical(base)
	if err != nil {
		return "", fmt.Errorf("safepath: canonicalize base for %q: %w", category, err)
	}

	// Not filepath.Join: ".." must be applied after symlinks are resolved.
	candidate := canonicalBase + string(filepath.Separator) + filepath.FromSlash(normalized)
	canonical, err := pathutil.Canonical(candidate)
	if err != nil {
		return "", fmt.Errorf("safepath: canonicalize %q: %w", filename, err)
	}

	if !pathutil.IsWithin(canonicalBase, canonical) {
		clog.Warn("safepath: rejected traversal attempt for category %s", category)
		return "", &TraversalError{Filename: filename, Category: category}
	}

	if canonical == canonicalBase {
		return "", fmt.Errorf("%w: %q names the %s directory itself", ErrInvalidFilename, filename, category)
	}

	clog.Debug("safepath: resolved %q in %s", filename, category)
	return canonical, nil
}

// EnsureDir creates the base directory for category if it is missing.
// This is the only operation in the package that writes to the filesystem.
func (r *Resolver) EnsureDir(category string) (string, error) {
	base, err := r.Base(category)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(base, 0o750); err != nil {
		return "", fmt.Errorf("safepath: create %s directory: %w", category, err)
	}
	return base, nil
}
