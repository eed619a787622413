// Package security restricts which files remote clients may point the
// console at.
package security

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrOutsideAllowed is returned when a path resolves outside every allowed
// directory.
var ErrOutsideAllowed = errors.New("path is outside the allowed directories")

// CheckWithin reports whether path resolves inside dir once symlinks are
// followed. A path that does not exist yet is judged by its nearest
// existing ancestor, so a symlinked parent cannot be used to escape.
func CheckWithin(path, dir string) error {
	target, err := canonical(path)
	if err != nil {
		return err
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", dir, err)
	}
	root, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", dir, err)
	}

	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("%w: %s escapes %s", ErrOutsideAllowed, path, dir)
	}
	return nil
}

// CheckWithinAny accepts path if it lies inside at least one of dirs. An
// empty dirs list allows everything.
func CheckWithinAny(path string, dirs []string) error {
	if len(dirs) == 0 {
		return nil
	}
	for _, dir := range dirs {
		if CheckWithin(path, dir) == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %s (allowed: %s)", ErrOutsideAllowed, path, strings.Join(dirs, ", "))
}

func canonical(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}

	for cur := abs; ; {
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs, nil
		}
		if resolved, err := filepath.EvalSymlinks(parent); err == nil {
			rest, _ := filepath.Rel(parent, abs)
			return filepath.Join(resolved, rest), nil
		}
		cur = parent
	}
}
