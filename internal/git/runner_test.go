package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRepo creates a temporary directory with an initialized Git
// repository containing a single commit on a branch named "main". Most
// worktree commands require at least one commit, because a worktree
// needs a branch and a branch needs a commit to point to.
//
// The function configures a local user.name and user.email so that
// `git commit` works in CI environments where global git config may not
// be set.
func setupTestRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	runTestGit(t, dir, "init")
	runTestGit(t, dir, "config", "user.email", "test@example.com")
	runTestGit(t, dir, "config", "user.name", "Test User")

	initialFile := filepath.Join(dir, "README.md")
	err := os.WriteFile(initialFile, []byte("# Test Repo\n"), 0644)
	require.NoError(t, err, "failed to create initial file")

	runTestGit(t, dir, "add", ".")
	runTestGit(t, dir, "commit", "-m", "initial commit")

	// Normalize the default branch name; git's init.defaultBranch varies
	// across versions and environments.
	runTestGit(t, dir, "branch", "-M", "main")

	return dir
}

// runTestGit runs a git command in the specified directory and fails the
// test immediately on a non-zero exit status.
func runTestGit(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
	return string(output)
}

func TestBranchExists(t *testing.T) {
	repoPath := setupTestRepo(t)
	r := NewRunner()
	ctx := context.Background()

	assert.True(t, r.BranchExists(ctx, repoPath, "main"))
	assert.False(t, r.BranchExists(ctx, repoPath, "nope"))
}

func TestCreateBranch(t *testing.T) {
	repoPath := setupTestRepo(t)
	r := NewRunner()
	ctx := context.Background()

	err := r.CreateBranch(ctx, repoPath, "grove/demo", "main")
	require.NoError(t, err)
	assert.True(t, r.BranchExists(ctx, repoPath, "grove/demo"))

	// Creating the same branch again must fail; git refuses to clobber
	// an existing ref.
	err = r.CreateBranch(ctx, repoPath, "grove/demo", "main")
	assert.Error(t, err)
}

func TestCreateBranchFromHEAD(t *testing.T) {
	repoPath := setupTestRepo(t)
	r := NewRunner()
	ctx := context.Background()

	err := r.CreateBranch(ctx, repoPath, "from-head", "")
	require.NoError(t, err)
	assert.True(t, r.BranchExists(ctx, repoPath, "from-head"))
}

func TestDeleteBranch(t *testing.T) {
	repoPath := setupTestRepo(t)
	r := NewRunner()
	ctx := context.Background()

	require.NoError(t, r.CreateBranch(ctx, repoPath, "doomed", "main"))
	require.True(t, r.BranchExists(ctx, repoPath, "doomed"))

	err := r.DeleteBranch(ctx, repoPath, "doomed")
	require.NoError(t, err)
	assert.False(t, r.BranchExists(ctx, repoPath, "doomed"))
}

func TestWorktreeAddAndList(t *testing.T) {
	repoPath := setupTestRepo(t)
	r := NewRunner()
	ctx := context.Background()

	require.NoError(t, r.CreateBranch(ctx, repoPath, "grove/demo", "main"))

	dest := filepath.Join(t.TempDir(), "demo")
	err := r.WorktreeAdd(ctx, repoPath, dest, "grove/demo")
	require.NoError(t, err)

	// The checkout directory exists on disk.
	info, statErr := os.Stat(dest)
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())

	// The registry lists both the primary checkout and the new worktree.
	worktrees, err := r.WorktreeList(ctx, repoPath)
	require.NoError(t, err)
	require.Len(t, worktrees, 2)

	var found bool
	for _, wt := range worktrees {
		if wt.Branch == "refs/heads/grove/demo" {
			found = true
			assert.NotEmpty(t, wt.HEAD)
		}
	}
	assert.True(t, found, "new worktree should appear in the registry")
}

func TestWorktreeRemoveForced(t *testing.T) {
	repoPath := setupTestRepo(t)
	r := NewRunner()
	ctx := context.Background()

	require.NoError(t, r.CreateBranch(ctx, repoPath, "grove/demo", "main"))
	dest := filepath.Join(t.TempDir(), "demo")
	require.NoError(t, r.WorktreeAdd(ctx, repoPath, dest, "grove/demo"))

	// Dirty the checkout; --force must remove it regardless.
	err := os.WriteFile(filepath.Join(dest, "dirty.txt"), []byte("uncommitted\n"), 0644)
	require.NoError(t, err)

	err = r.WorktreeRemoveForced(ctx, repoPath, dest)
	require.NoError(t, err)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "checkout directory should be gone")

	worktrees, err := r.WorktreeList(ctx, repoPath)
	require.NoError(t, err)
	assert.Len(t, worktrees, 1, "registry should only hold the primary checkout")
}

func TestWorktreePrune(t *testing.T) {
	repoPath := setupTestRepo(t)
	r := NewRunner()
	ctx := context.Background()

	require.NoError(t, r.CreateBranch(ctx, repoPath, "grove/demo", "main"))
	dest := filepath.Join(t.TempDir(), "demo")
	require.NoError(t, r.WorktreeAdd(ctx, repoPath, dest, "grove/demo"))

	// Simulate an out-of-band deletion that leaves the registry stale.
	require.NoError(t, os.RemoveAll(dest))

	err := r.WorktreePrune(ctx, repoPath)
	require.NoError(t, err)

	worktrees, err := r.WorktreeList(ctx, repoPath)
	require.NoError(t, err)
	assert.Len(t, worktrees, 1, "prune should drop the stale registry entry")
}

func TestRunGitErrorIncludesStderr(t *testing.T) {
	repoPath := setupTestRepo(t)
	ctx := context.Background()

	_, err := runGit(ctx, repoPath, "rev-parse", "--verify", "refs/heads/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rev-parse")
}

func TestParsePorcelain(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected []WorktreeInfo
	}{
		{
			name:     "empty output",
			output:   "",
			expected: nil,
		},
		{
			name: "single worktree",
			output: "worktree /repos/app\n" +
				"HEAD abc123\n" +
				"branch refs/heads/main\n",
			expected: []WorktreeInfo{
				{Path: "/repos/app", HEAD: "abc123", Branch: "refs/heads/main"},
			},
		},
		{
			name: "multiple worktrees",
			output: "worktree /repos/app\n" +
				"HEAD abc123\n" +
				"branch refs/heads/main\n" +
				"\n" +
				"worktree /forests/foo/app\n" +
				"HEAD def456\n" +
				"branch refs/heads/grove/foo\n",
			expected: []WorktreeInfo{
				{Path: "/repos/app", HEAD: "abc123", Branch: "refs/heads/main"},
				{Path: "/forests/foo/app", HEAD: "def456", Branch: "refs/heads/grove/foo"},
			},
		},
		{
			name: "bare repository entry",
			output: "worktree /repos/app.git\n" +
				"bare\n",
			expected: []WorktreeInfo{
				{Path: "/repos/app.git", IsBare: true},
			},
		},
		{
			name: "detached HEAD",
			output: "worktree /forests/foo/app\n" +
				"HEAD def456\n" +
				"detached\n",
			expected: []WorktreeInfo{
				{Path: "/forests/foo/app", HEAD: "def456"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parsePorcelain(tt.output))
		})
	}
}
