package safepath

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for path resolution.
var (
	// ErrInvalidCategory indicates the directory category is not configured.
	ErrInvalidCategory = errors.New("invalid directory category")

	// ErrPathTraversal indicates the filename would escape its base directory.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrInvalidFilename indicates an empty or otherwise unusable filename.
	ErrInvalidFilename = errors.New("invalid filename")
)

// CategoryError reports an unknown category together with the allowed set.
type CategoryError struct {
	Category string
	Allowed  []string
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("invalid directory category %q: must be one of %s",
		e.Category, strings.Join(e.Allowed, ", "))
}

func (e *CategoryError) Unwrap() error {
	return ErrInvalidCategory
}

// TraversalError reports a filename that resolves outside its category's
// base directory. The resolved outside location is deliberately not
// included in the message.
type TraversalError struct {
	Filename string
	Category string
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("path traversal detected: %q escapes the %s directory", e.Filename, e.Category)
}

func (e *TraversalError) Unwrap() error {
	return ErrPathTraversal
}
