package forest

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mmr-tortoise/grove/internal/model"
)

// Discover enumerates all forests currently materialized under the
// worktree base, in lexicographic name order.
//
// For each subdirectory it prefers the sidecar metadata file; when that
// is missing or unreadable (a crash before creation finished never
// writes one), the forest is reconstructed by checking, for every
// configured source repo, whether its expected worktree subdirectory
// exists. This directory-scan fallback is what keeps half-created
// forests discoverable and therefore cleanable.
//
// Discover never fails outright: a per-forest read error degrades that
// single forest to "directory only, no entries" instead of aborting the
// whole scan. A missing worktree base simply yields no forests.
func (m *Manager) Discover() []model.Forest {
	dirEntries, err := os.ReadDir(m.cfg.WorktreeBase)
	if err != nil {
		if !os.IsNotExist(err) {
			m.log.Warn("worktree base unreadable", zap.String("base", m.cfg.WorktreeBase), zap.Error(err))
		}
		return nil
	}

	var forests []model.Forest
	// os.ReadDir returns entries sorted by name, which gives the
	// lexicographic ordering the contract requires.
	for _, de := range dirEntries {
		if !de.IsDir() {
			// Lock files and other stray files live alongside forest roots.
			continue
		}
		if strings.HasPrefix(de.Name(), ".") {
			// Dot-directories can never be forests (names must start
			// alphanumeric).
			continue
		}
		forests = append(forests, m.loadForest(de.Name()))
	}
	return forests
}

// Load returns the named forest, preferring metadata and falling back
// to directory-scan inference. The forest root directory existing on
// disk is the existence criterion (invariant: the directory exists iff
// at least the directory-creation step of construction completed).
func (m *Manager) Load(name string) (*model.Forest, error) {
	if err := model.ValidateName(name); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "invalid forest name", err)
	}

	root := filepath.Join(m.cfg.WorktreeBase, name)
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, &NotFoundError{Name: name}
	}

	f := m.loadForest(name)
	return &f, nil
}

// loadForest materializes a single forest from disk evidence.
func (m *Manager) loadForest(name string) model.Forest {
	root := filepath.Join(m.cfg.WorktreeBase, name)

	if f, ok := model.ReadMetadata(root); ok {
		f.Root = root
		return *f
	}

	// Metadata absent or corrupt: infer entries from the directory
	// layout. A subdirectory named after a configured repo is taken to
	// be that repo's worktree, with the branch the template would have
	// produced.
	f := model.Forest{
		Name:     name,
		Root:     root,
		Mode:     model.ModeFeature,
		Inferred: true,
	}
	for _, repo := range m.cfg.SourceRepos() {
		sub := filepath.Join(root, repo.Name())
		if info, err := os.Stat(sub); err == nil && info.IsDir() {
			f.Entries = append(f.Entries, model.RepoEntry{
				RepoPath: repo.Path,
				Dir:      repo.Name(),
				Branch:   repo.BranchFor(name),
			})
		}
	}
	return f
}
