package forest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/mmr-tortoise/grove/internal/model"
)

// Lock files live directly inside the worktree base, next to the forest
// roots. They are files, not directories, so Discover skips them.
const (
	baseLockName      = ".grove.lock"
	forestLockPattern = ".grove.%s.lock"
)

// lockForest acquires the exclusive per-forest lock, held for the
// duration of a create or rm operation. The caller must Unlock the
// returned handle.
func (m *Manager) lockForest(name string) (*flock.Flock, error) {
	return m.acquire(filepath.Join(m.cfg.WorktreeBase, fmt.Sprintf(forestLockPattern, name)))
}

// lockBase acquires the base-wide lock used by reset, which touches
// every forest.
func (m *Manager) lockBase() (*flock.Flock, error) {
	return m.acquire(filepath.Join(m.cfg.WorktreeBase, baseLockName))
}

func (m *Manager) acquire(path string) (*flock.Flock, error) {
	// The lock file's directory must exist before flock can create it.
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to create worktree base", err)
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to acquire lock", err)
	}
	if !locked {
		return nil, model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("another grove operation is in progress (lock held: %s)", path))
	}
	return fl, nil
}
