package paths

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotlinks/pkg/errors"
)

// ValidatePath performs basic sanity checks on a path.
func ValidatePath(path string) error {
	if path == "" {
		return errors.New(errors.ErrInvalidInput, "path cannot be empty")
	}

	if strings.Contains(path, "\x00") {
		return errors.New(errors.ErrInvalidInput, "path contains null bytes")
	}

	// Common filesystem limit
	if len(path) > 4096 {
		return errors.New(errors.ErrInvalidInput, "path exceeds maximum length")
	}

	return nil
}

// ValidateRelative ensures path is relative and does not climb out of the
// directory it is joined to. "." is accepted.
func ValidateRelative(path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}

	if filepath.IsAbs(path) {
		return errors.Newf(errors.ErrInvalidInput, "path %q must be relative", path)
	}

	if strings.HasPrefix(path, "~") {
		return errors.Newf(errors.ErrInvalidInput, "path %q must not start with ~", path)
	}

	clean := filepath.Clean(path)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return errors.Newf(errors.ErrInvalidInput, "path %q escapes its base directory", path)
	}

	return nil
}

// ValidateRepoName ensures a repository name is usable as a single path
// segment.
func ValidateRepoName(name string) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "repository name cannot be empty")
	}

	if strings.ContainsAny(name, "/\\") {
		return errors.Newf(errors.ErrInvalidInput, "repository name %q cannot contain path separators", name)
	}

	if name == "." || name == ".." {
		return errors.New(errors.ErrInvalidInput, "repository name cannot be '.' or '..'")
	}

	return nil
}
