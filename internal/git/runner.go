package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mmr-tortoise/grove/internal/model"
)

// WorktreeInfo holds one entry of a repository's worktree registry, as
// parsed from `git worktree list --porcelain` output.
//
// Example porcelain block:
//
//	worktree /path/to/checkout
//	HEAD abc123def456
//	branch refs/heads/feat/foo
type WorktreeInfo struct {
	// Path is the absolute filesystem path to the worktree directory.
	Path string

	// Branch is the full branch reference (e.g., "refs/heads/feat/foo").
	// Empty if the worktree is in a detached HEAD state.
	Branch string

	// HEAD is the commit SHA the worktree currently points to.
	HEAD string

	// IsBare marks the bare-repository entry in the registry.
	IsBare bool
}

// Runner executes git operations against source repositories. It is
// stateless — every method receives the repository path — and exists as
// a receiver so a custom git binary path can be configured later.
type Runner struct{}

// NewRunner creates a new git Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// BranchExists reports whether a local branch with the given name exists
// in the repository. Only the exit code of `git rev-parse --verify` is
// consulted.
func (r *Runner) BranchExists(ctx context.Context, repoPath, branch string) bool {
	_, err := runGit(ctx, repoPath, "rev-parse", "--verify", "refs/heads/"+branch)
	return err == nil
}

// CreateBranch creates a new branch pointing at `from` without checking
// it out. If from is empty, the branch is created at HEAD.
func (r *Runner) CreateBranch(ctx context.Context, repoPath, branch, from string) error {
	args := []string{"branch", branch}
	if from != "" {
		args = append(args, from)
	}
	_, err := runGit(ctx, repoPath, args...)
	return err
}

// DeleteBranch force-deletes a local branch. The branch must not be
// checked out in any remaining worktree.
func (r *Runner) DeleteBranch(ctx context.Context, repoPath, branch string) error {
	_, err := runGit(ctx, repoPath, "branch", "-D", branch)
	return err
}

// WorktreeAdd checks out an existing branch into a new worktree at dest
// and records it in the repository's worktree registry.
func (r *Runner) WorktreeAdd(ctx context.Context, repoPath, dest, branch string) error {
	_, err := runGit(ctx, repoPath, "worktree", "add", dest, branch)
	return err
}

// WorktreeRemoveForced removes the worktree at dest and clears its
// registry entry, even if the checkout has uncommitted changes. The
// registry entry is the authoritative state — leaving it stale blocks
// future worktree creation at the same path.
func (r *Runner) WorktreeRemoveForced(ctx context.Context, repoPath, dest string) error {
	_, err := runGit(ctx, repoPath, "worktree", "remove", "--force", dest)
	return err
}

// WorktreePrune drops registry entries whose worktree directories no
// longer exist on disk. Used when reprocessing a half-cleaned forest:
// the directory may already be gone while the registry entry lingers.
func (r *Runner) WorktreePrune(ctx context.Context, repoPath string) error {
	_, err := runGit(ctx, repoPath, "worktree", "prune")
	return err
}

// WorktreeList returns the repository's worktree registry entries,
// parsed from `git worktree list --porcelain`.
func (r *Runner) WorktreeList(ctx context.Context, repoPath string) ([]WorktreeInfo, error) {
	output, err := runGit(ctx, repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parsePorcelain(output), nil
}

// runGit executes a git command in the given repository directory.
// The repoPath is passed via -C so git changes directory itself instead
// of the process working directory, which stays stable across calls.
//
// On success it returns stdout; on failure it returns a model.CLIError
// with ExitGitError carrying the git command and trimmed stderr.
func runGit(ctx context.Context, repoPath string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)

	// #nosec G204 — args are constructed internally, not from user input
	cmd := exec.CommandContext(ctx, "git", fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("git %s failed in %s", strings.Join(args, " "), repoPath)
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", model.WrapCLIError(model.ExitGitError, message, err)
	}

	return stdout.String(), nil
}

// parsePorcelain parses `git worktree list --porcelain` output. Blocks
// are separated by blank lines; within a block each line is a
// space-separated key-value pair, with standalone markers like "bare"
// and "detached".
func parsePorcelain(output string) []WorktreeInfo {
	var worktrees []WorktreeInfo

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")

	var current *WorktreeInfo
	for _, line := range lines {
		if line == "" {
			if current != nil {
				worktrees = append(worktrees, *current)
				current = nil
			}
			continue
		}

		key, value, _ := strings.Cut(line, " ")

		switch key {
		case "worktree":
			current = &WorktreeInfo{Path: value}
		case "HEAD":
			if current != nil {
				current.HEAD = value
			}
		case "branch":
			if current != nil {
				current.Branch = value
			}
		case "bare":
			if current != nil {
				current.IsBare = true
			}
			// "detached" needs no handling: a detached worktree simply
			// has an empty Branch field.
		}
	}

	if current != nil {
		worktrees = append(worktrees, *current)
	}

	return worktrees
}
