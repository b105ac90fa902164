package forest

import (
	"fmt"
	"path/filepath"

	"github.com/mmr-tortoise/grove/internal/model"
)

// Plan is an immutable creation plan for a new forest: the target root
// directory and, for each configured source repo, the computed branch
// name and worktree subdirectory. It is produced by BuildPlan and
// consumed unchanged by Create.
type Plan struct {
	// Name is the forest name.
	Name string

	// Mode records the requested forest mode.
	Mode model.Mode

	// Root is the absolute forest root directory path.
	Root string

	// Entries is one planned checkout per configured repo, in
	// configuration order.
	Entries []PlannedEntry
}

// PlannedEntry is one repo's share of a Plan.
type PlannedEntry struct {
	// Repo is the source repository this entry checks out from.
	Repo model.SourceRepo

	// Dir is the worktree subdirectory name under the forest root.
	Dir string

	// Branch is the branch name computed from the repo's template.
	Branch string
}

// WorktreePath returns the entry's absolute worktree path under root.
func (e PlannedEntry) WorktreePath(root string) string {
	return filepath.Join(root, e.Dir)
}

// BuildPlan computes the creation plan for a new forest.
//
// The name-collision check against discovered forests is advisory: it
// narrows the race window and gives a clean early error, but the true
// guard is the atomic directory creation performed by Create.
func (m *Manager) BuildPlan(name string, mode model.Mode) (*Plan, error) {
	if err := model.ValidateName(name); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "invalid forest name", err)
	}
	if !mode.IsValid() {
		return nil, model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("invalid forest mode %q", mode))
	}

	repos := m.cfg.SourceRepos()
	if len(repos) == 0 {
		return nil, model.NewCLIError(model.ExitConfigError, "no repositories configured")
	}

	for _, f := range m.Discover() {
		if f.Name == name {
			return nil, &CollisionError{Name: name}
		}
	}

	plan := &Plan{
		Name: name,
		Mode: mode,
		Root: filepath.Join(m.cfg.WorktreeBase, name),
	}

	// Subdirectory names are derived from repo base names; two repos
	// sharing a base name would write to the same checkout directory.
	seen := make(map[string]string, len(repos))
	for _, repo := range repos {
		dir := repo.Name()
		if other, dup := seen[dir]; dup {
			return nil, model.NewCLIError(model.ExitConfigError,
				fmt.Sprintf("repos %s and %s map to the same worktree subdirectory %q", other, repo.Path, dir))
		}
		seen[dir] = repo.Path

		plan.Entries = append(plan.Entries, PlannedEntry{
			Repo:   repo,
			Dir:    dir,
			Branch: repo.BranchFor(name),
		})
	}

	return plan, nil
}
