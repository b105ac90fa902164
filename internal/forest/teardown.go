package forest

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/mmr-tortoise/grove/internal/model"
)

// Remove tears down the named forest: for each entry the repository's
// worktree registry is cleared first (forced removal), the now-unused
// branch is deleted unless it is the repo's base branch, and finally
// the forest root directory is removed.
//
// Errors on an individual repo's removal are collected and returned
// rather than aborting — one failing repo must not block cleanup of the
// others. The error return is reserved for failures that invalidate the
// whole operation: forest not found, lock contention, or a containment
// violation.
func (m *Manager) Remove(ctx context.Context, name string) ([]RepoRemovalError, error) {
	f, err := m.Load(name)
	if err != nil {
		return nil, err
	}

	fl, err := m.lockForest(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fl.Unlock() }()

	return m.teardown(ctx, f)
}

// Reset tears down every discovered forest. It is a destructive
// multi-forest operation, so the confirmed flag must be set explicitly.
// One forest's cleanup failure is reported but does not prevent
// attempting the remaining forests.
func (m *Manager) Reset(ctx context.Context, confirmed bool) ([]ForestTeardownError, error) {
	if !confirmed {
		return nil, model.NewCLIError(model.ExitUserCancelled,
			"reset removes every forest; re-run with --force to confirm")
	}

	fl, err := m.lockBase()
	if err != nil {
		return nil, err
	}
	defer func() { _ = fl.Unlock() }()

	var failures []ForestTeardownError
	for _, f := range m.Discover() {
		forest := f
		repoErrs, err := m.teardown(ctx, &forest)
		if err != nil {
			// Containment violations abort the whole reset: continuing
			// after a defect signal risks deleting unrelated paths.
			return failures, err
		}
		if len(repoErrs) > 0 {
			failures = append(failures, ForestTeardownError{Name: f.Name, Errors: repoErrs})
		}
	}
	return failures, nil
}

// teardown is the shared removal core for rm and reset. The order is
// deliberate and load-bearing: registry cleanup before directory
// deletion. Deleting the directory first would only remove the visible
// symptom and leave the stale registry entry, which is what blocks
// future worktree creation at the same path.
func (m *Manager) teardown(ctx context.Context, f *model.Forest) ([]RepoRemovalError, error) {
	log := m.log.With(zap.String("forest", f.Name))
	log.Info("tearing down forest",
		zap.Int("entries", len(f.Entries)),
		zap.Bool("inferred", f.Inferred))

	if m.guard != nil && m.cfg.GuardContainers() {
		// Best-effort: an unreachable Docker daemon must not block
		// teardown of the worktrees themselves.
		if stopped, err := m.guard.StopUnder(ctx, f.Root); err != nil {
			log.Warn("container guard unavailable", zap.Error(err))
		} else if stopped > 0 {
			log.Info("stopped containers mounted under forest", zap.Int("stopped", stopped))
		}
	}

	var failures []RepoRemovalError
	for _, entry := range f.Entries {
		dest := entry.WorktreePath(f.Root)

		if err := assertContained(f.Root, dest); err != nil {
			log.Error("containment violation during teardown", zap.Error(err))
			return failures, model.WrapCLIError(model.ExitInvariantViolation, "teardown aborted", err)
		}

		if _, statErr := os.Stat(dest); os.IsNotExist(statErr) {
			// The checkout is already gone — a previous interrupted run
			// got this far. Prune clears any stale registry entry so the
			// operation stays idempotent-safe.
			if err := m.git.WorktreePrune(ctx, entry.RepoPath); err != nil {
				failures = append(failures, RepoRemovalError{RepoPath: entry.RepoPath, Path: dest, Err: err})
				continue
			}
		} else {
			if err := m.git.WorktreeRemoveForced(ctx, entry.RepoPath, dest); err != nil {
				failures = append(failures, RepoRemovalError{RepoPath: entry.RepoPath, Path: dest, Err: err})
				continue
			}
		}

		m.deleteBranch(ctx, entry, log)
	}

	// Remove the root only when every registry entry was cleared.
	// Deleting it with a failed entry still registered would recreate
	// the stale-registry bug this ordering exists to prevent.
	if len(failures) == 0 {
		if err := os.RemoveAll(f.Root); err != nil {
			failures = append(failures, RepoRemovalError{Path: f.Root, Err: err})
		} else {
			log.Info("forest removed")
		}
	} else {
		log.Warn("forest left in place: repo removals failed", zap.Int("failed", len(failures)))
	}

	return failures, nil
}

// deleteBranch removes the entry's now-unused branch. The base branch
// is never deleted, and a branch that is already gone (or still in use
// elsewhere) only produces a log entry — branch cleanup is auxiliary to
// the registry/directory consistency the teardown guarantees.
func (m *Manager) deleteBranch(ctx context.Context, entry model.RepoEntry, log *zap.Logger) {
	if entry.Branch == "" || entry.Branch == m.baseBranchOf(entry.RepoPath) {
		return
	}
	if !m.git.BranchExists(ctx, entry.RepoPath, entry.Branch) {
		return
	}
	if err := m.git.DeleteBranch(ctx, entry.RepoPath, entry.Branch); err != nil {
		log.Warn("failed to delete branch",
			zap.String("repo", entry.RepoPath),
			zap.String("branch", entry.Branch),
			zap.Error(err))
	}
}

// baseBranchOf looks up the configured base branch for a repo path.
func (m *Manager) baseBranchOf(repoPath string) string {
	for _, repo := range m.cfg.SourceRepos() {
		if repo.Path == repoPath {
			return repo.BaseBranch
		}
	}
	return ""
}
