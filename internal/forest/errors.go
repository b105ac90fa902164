package forest

import (
	"fmt"
	"strings"
)

// CollisionError reports that a forest with the requested name already
// exists. It is returned both by the plan builder's advisory check and
// by the executor when it loses the directory-creation race.
type CollisionError struct {
	Name string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("forest %q already exists", e.Name)
}

// NotFoundError reports that no forest with the given name exists under
// the worktree base.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("forest %q not found", e.Name)
}

// InvariantViolationError reports a failed containment check: a deletion
// was about to target a path that is not a strict descendant of the
// owning forest's root. This is a defect signal, never a recoverable
// condition — callers must abort the whole operation immediately.
type InvariantViolationError struct {
	Root string
	Path string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("containment violation: %q is not inside forest root %q — refusing to delete", e.Path, e.Root)
}

// PartialCreateError reports that a repo entry's worktree-add failed
// during creation and the already-completed entries were rolled back
// successfully. The original git failure is the wrapped cause.
type PartialCreateError struct {
	Name     string
	RepoPath string
	Cause    error
}

func (e *PartialCreateError) Error() string {
	return fmt.Sprintf("creating forest %q failed at repo %s (rolled back): %v", e.Name, e.RepoPath, e.Cause)
}

func (e *PartialCreateError) Unwrap() error {
	return e.Cause
}

// RollbackError reports the fatal case: creation failed AND undoing the
// already-completed steps also failed. Unrecovered lists the worktree
// paths (and possibly the forest root) that were left behind so the
// operator can clean up manually. No further cleanup is attempted — a
// second, different strategy could compound the damage.
type RollbackError struct {
	Name        string
	Cause       error
	Unrecovered []string
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("creating forest %q failed (%v) and rollback left inconsistent state at: %s",
		e.Name, e.Cause, strings.Join(e.Unrecovered, ", "))
}

func (e *RollbackError) Unwrap() error {
	return e.Cause
}

// RepoRemovalError reports that one repository's cleanup failed during
// rm/reset. These are collected per operation rather than aborting, so
// one failing repo does not block cleanup of the others.
type RepoRemovalError struct {
	RepoPath string
	Path     string
	Err      error
}

func (e *RepoRemovalError) Error() string {
	return fmt.Sprintf("repo %s: failed to remove %s: %v", e.RepoPath, e.Path, e.Err)
}

func (e *RepoRemovalError) Unwrap() error {
	return e.Err
}

// ForestTeardownError groups the removal errors of a single forest
// during reset.
type ForestTeardownError struct {
	Name   string
	Errors []RepoRemovalError
}

func (e *ForestTeardownError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for i := range e.Errors {
		msgs = append(msgs, e.Errors[i].Error())
	}
	return fmt.Sprintf("forest %q: %s", e.Name, strings.Join(msgs, "; "))
}
