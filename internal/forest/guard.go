package forest

import (
	"path/filepath"
	"strings"
)

// assertContained verifies that path is a strict descendant of root.
// It is called at every deletion site before a worktree or directory is
// removed. A violation means grove computed a path outside the forest
// it owns — a logic defect with data-loss risk — so callers must treat
// the returned error as fatal for the whole operation.
//
// The check is a runtime assertion, not a debug-only one: it runs in
// every build.
func assertContained(root, path string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return &InvariantViolationError{Root: root, Path: path}
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return &InvariantViolationError{Root: root, Path: path}
	}

	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return &InvariantViolationError{Root: absRoot, Path: absPath}
	}
	// "." would be the root itself; anything escaping via ".." is outside.
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return &InvariantViolationError{Root: absRoot, Path: absPath}
	}
	return nil
}
