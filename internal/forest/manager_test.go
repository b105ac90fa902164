package forest

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mmr-tortoise/grove/internal/config"
)

// newTestManager builds a Manager backed by real git repositories, one
// per name, plus an empty worktree base, all under t.TempDir(). Each
// repo gets an initial commit and its default branch renamed to "main"
// so the default baseBranch matches regardless of the host git's
// init.defaultBranch setting.
func newTestManager(t *testing.T, repoNames ...string) (*Manager, *config.Config) {
	t.Helper()

	base := t.TempDir()
	cfg := &config.Config{
		WorktreeBase: filepath.Join(base, "forests"),
		DefaultMode:  "feature",
	}

	for _, name := range repoNames {
		repoPath := filepath.Join(base, "repos", name)
		require.NoError(t, os.MkdirAll(repoPath, 0o755))
		setupRepo(t, repoPath)
		cfg.Repos = append(cfg.Repos, config.RepoConfig{
			Path:           repoPath,
			BaseBranch:     config.DefaultBaseBranch,
			BranchTemplate: config.DefaultBranchTemplate,
		})
	}

	return NewManager(cfg, zap.NewNop(), nil), cfg
}

// setupRepo initializes a git repository with one commit on "main".
func setupRepo(t *testing.T, dir string) {
	t.Helper()

	runTestGit(t, dir, "init")
	runTestGit(t, dir, "config", "user.email", "test@example.com")
	runTestGit(t, dir, "config", "user.name", "Test User")

	err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Test Repo\n"), 0644)
	require.NoError(t, err)

	runTestGit(t, dir, "add", ".")
	runTestGit(t, dir, "commit", "-m", "initial commit")
	runTestGit(t, dir, "branch", "-M", "main")
}

// runTestGit runs a git command in dir and fails the test on error.
func runTestGit(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
	return string(output)
}

// worktreeCount returns the number of entries in the repo's worktree
// registry, including the primary checkout.
func worktreeCount(t *testing.T, repoPath string) int {
	t.Helper()

	out := runTestGit(t, repoPath, "worktree", "list", "--porcelain")
	count := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "worktree ") {
			count++
		}
	}
	return count
}

// branchExists checks for a local branch without going through Runner.
func branchExists(t *testing.T, repoPath, branch string) bool {
	t.Helper()

	cmd := exec.Command("git", "-C", repoPath, "rev-parse", "--verify", "refs/heads/"+branch)
	return cmd.Run() == nil
}
