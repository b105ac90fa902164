package forest

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mmr-tortoise/grove/internal/model"
)

// createState tracks a single creation attempt through its state
// machine:
//
//	planned → dir-created → {entry added}* → metadata-written (success)
//
// with any entry failure transitioning to rolling-back and terminating
// in rolled-back or rollback-failed.
type createState string

const (
	statePlanned         createState = "planned"
	stateDirCreated      createState = "dir-created"
	stateAdding          createState = "adding"
	stateMetadataWritten createState = "metadata-written"
	stateRollingBack     createState = "rolling-back"
	stateRolledBack      createState = "rolled-back"
	stateRollbackFailed  createState = "rollback-failed"
)

// Create materializes a plan on disk. The forest either fully exists
// afterwards — root directory, every worktree checked out and
// registered, metadata written — or not at all.
//
// The root directory is created with a non-recursive, existence-checking
// call: the directory coming into existence is itself the proof of
// exclusive ownership by this run, closing the gap between the plan
// builder's advisory collision check and actual creation. A concurrent
// attempt with the same name observes the already-exists failure and
// aborts cleanly.
//
// On any entry failure the already-completed entries are rolled back
// (registry entry removed first, then the root directory). If rollback
// itself fails midway, a RollbackError listing the unrecovered paths is
// returned and no further cleanup is attempted.
func (m *Manager) Create(ctx context.Context, plan *Plan) (*model.Forest, error) {
	state := statePlanned
	log := m.log.With(zap.String("forest", plan.Name))
	log.Info("creating forest",
		zap.String("state", string(state)),
		zap.Int("repos", len(plan.Entries)))

	fl, err := m.lockForest(plan.Name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fl.Unlock() }()

	// os.Mkdir (not MkdirAll) fails if the directory already exists —
	// this single call is the atomicity boundary for forest existence.
	if err := os.Mkdir(plan.Root, 0o755); err != nil {
		if os.IsExist(err) {
			return nil, &CollisionError{Name: plan.Name}
		}
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to create forest root", err)
	}
	state = stateDirCreated
	log.Debug("state", zap.String("state", string(state)))

	var completed []PlannedEntry
	for _, entry := range plan.Entries {
		state = stateAdding
		dest := entry.WorktreePath(plan.Root)
		log.Debug("adding worktree",
			zap.String("state", string(state)),
			zap.String("repo", entry.Repo.Path),
			zap.String("branch", entry.Branch),
			zap.String("dest", dest))

		if err := m.ensureBranch(ctx, entry); err != nil {
			return nil, m.rollback(ctx, plan, completed, err, log)
		}
		if err := m.git.WorktreeAdd(ctx, entry.Repo.Path, dest, entry.Branch); err != nil {
			return nil, m.rollback(ctx, plan, completed, err, log)
		}
		completed = append(completed, entry)
	}

	forest := &model.Forest{
		Name:      plan.Name,
		Root:      plan.Root,
		Mode:      plan.Mode,
		CreatedAt: time.Now().UTC(),
	}
	for _, entry := range plan.Entries {
		forest.Entries = append(forest.Entries, model.RepoEntry{
			RepoPath: entry.Repo.Path,
			Dir:      entry.Dir,
			Branch:   entry.Branch,
		})
	}

	if err := model.WriteMetadata(forest); err != nil {
		return nil, m.rollback(ctx, plan, completed, err, log)
	}
	state = stateMetadataWritten
	log.Info("forest created", zap.String("state", string(state)))

	return forest, nil
}

// ensureBranch makes the entry's branch exist, creating it from the
// repo's base branch if absent. An existing branch is reused as-is.
func (m *Manager) ensureBranch(ctx context.Context, entry PlannedEntry) error {
	if m.git.BranchExists(ctx, entry.Repo.Path, entry.Branch) {
		return nil
	}
	return m.git.CreateBranch(ctx, entry.Repo.Path, entry.Branch, entry.Repo.BaseBranch)
}

// rollback undoes a failed creation attempt: every entry that succeeded
// so far has its registry entry removed (after a containment check on
// the worktree path), then the forest root directory is deleted
// recursively.
//
// Rollback failures are reported, not retried. The returned error is
// the original cause wrapped in PartialCreateError when rollback fully
// succeeded, or a RollbackError naming the paths left behind when it
// did not.
func (m *Manager) rollback(ctx context.Context, plan *Plan, completed []PlannedEntry, cause error, log *zap.Logger) error {
	state := stateRollingBack
	log.Warn("creation failed, rolling back",
		zap.String("state", string(state)),
		zap.Int("completed", len(completed)),
		zap.Error(cause))

	var unrecovered []string
	for _, entry := range completed {
		dest := entry.WorktreePath(plan.Root)

		if err := assertContained(plan.Root, dest); err != nil {
			// A containment violation is a defect, not a cleanup
			// problem: abort immediately rather than risk deleting an
			// unrelated path.
			log.Error("containment violation during rollback", zap.Error(err))
			return model.WrapCLIError(model.ExitInvariantViolation, "rollback aborted", err)
		}

		if err := m.git.WorktreeRemoveForced(ctx, entry.Repo.Path, dest); err != nil {
			log.Error("rollback: worktree remove failed",
				zap.String("repo", entry.Repo.Path),
				zap.String("dest", dest),
				zap.Error(err))
			unrecovered = append(unrecovered, dest)
		}
	}

	// Only remove the root once every successful entry is unregistered;
	// deleting the directory with registry entries still pointing into
	// it would leave the repos with stale registrations.
	if len(unrecovered) == 0 {
		if err := os.RemoveAll(plan.Root); err != nil {
			unrecovered = append(unrecovered, plan.Root)
		}
	} else {
		unrecovered = append(unrecovered, plan.Root)
	}

	if len(unrecovered) > 0 {
		state = stateRollbackFailed
		log.Error("rollback failed",
			zap.String("state", string(state)),
			zap.Strings("unrecovered", unrecovered))
		return model.WrapCLIError(model.ExitRollbackFailed, "rollback incomplete", &RollbackError{
			Name:        plan.Name,
			Cause:       cause,
			Unrecovered: unrecovered,
		})
	}

	state = stateRolledBack
	log.Info("rolled back", zap.String("state", string(state)))
	return &PartialCreateError{Name: plan.Name, RepoPath: failedRepo(plan, completed), Cause: cause}
}

// failedRepo names the repo whose entry failed: the first one after the
// completed prefix.
func failedRepo(plan *Plan, completed []PlannedEntry) string {
	if len(completed) < len(plan.Entries) {
		return plan.Entries[len(completed)].Repo.Path
	}
	return ""
}
