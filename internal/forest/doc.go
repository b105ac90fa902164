// Package forest implements the forest lifecycle: planning, crash-safe
// creation, discovery, and teardown of named collections of linked
// worktree checkouts spanning multiple source repositories.
//
// The package maintains two sources of truth that must stay consistent:
// the on-disk directory tree under the configured worktree base, and
// each source repository's internal worktree registry. Every teardown
// path clears the registry entry before deleting the directory, and
// every deletion is preceded by a containment check that the target
// path lies strictly inside the owning forest's root.
package forest
