// Package cli — rm.go implements the "grove rm" command.
//
// The rm command tears down a single forest. For every checkout the
// owning repository's worktree registry entry is cleared first, then
// the now-unused branch is deleted (unless it is the base branch), and
// finally the forest root directory is removed. Per-repo failures are
// collected and reported together; one failing repo does not block
// cleanup of the others.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/grove/internal/docker"
	"github.com/mmr-tortoise/grove/internal/forest"
	"github.com/mmr-tortoise/grove/internal/model"
)

// NewRmCommand creates the "rm" cobra command.
func NewRmCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a forest",
		Long: `Remove a forest: unregister and delete every worktree checkout, delete
the forest branches, and remove the forest root directory.

Running containers with bind mounts inside the forest are stopped first
(disable with stopContainers: false in the configuration).

Examples:
  grove rm payments-refactor`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runRm(cmd.Context(), args[0])
		},
	}

	return cmd
}

// runRm is the main logic function for the rm command.
func runRm(ctx context.Context, name string) error {
	mgr, cfg, cleanup, err := newManager(nil)
	if err != nil {
		return err
	}
	defer cleanup()

	attachGuard(ctx, mgr, cfg.GuardContainers())

	repoErrs, err := mgr.Remove(ctx, name)
	if err != nil {
		return wrapDomainError(err)
	}

	printRmResult(name, repoErrs)
	if len(repoErrs) > 0 {
		return model.NewCLIError(model.ExitPartialRemoval,
			fmt.Sprintf("forest %q: %d repo removal(s) failed", name, len(repoErrs)))
	}
	return nil
}

// attachGuard wires the Docker container guard onto the manager when
// enabled and the daemon answers. A missing daemon is only verbose
// noise — teardown proceeds without the guard.
func attachGuard(ctx context.Context, mgr *forest.Manager, enabled bool) {
	if !enabled {
		return
	}
	guard, err := docker.NewGuard(ctx)
	if err != nil {
		VerboseLog("Docker guard unavailable: %v", err)
		return
	}
	// The guard lives for the process remainder; rm/reset are terminal
	// commands, so the daemon connection is released at exit.
	mgr.SetGuard(guard)
}

// printRmResult outputs the rm command result in text or JSON format.
func printRmResult(name string, repoErrs []forest.RepoRemovalError) {
	if IsJSONOutput() {
		result := map[string]interface{}{
			"name":   name,
			"action": "removed",
			"errors": formatRepoErrors(repoErrs),
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	if len(repoErrs) == 0 {
		fmt.Printf("Removed forest %q\n", name)
		return
	}

	fmt.Printf("Forest %q removed with errors:\n", name)
	for i := range repoErrs {
		fmt.Printf("  - %s\n", repoErrs[i].Error())
	}
}

// formatRepoErrors converts removal errors to a JSON-friendly shape.
// Always returns a non-nil slice so JSON output shows [] instead of null.
func formatRepoErrors(repoErrs []forest.RepoRemovalError) []map[string]string {
	out := make([]map[string]string, 0, len(repoErrs))
	for i := range repoErrs {
		out = append(out, map[string]string{
			"repo":  repoErrs[i].RepoPath,
			"path":  repoErrs[i].Path,
			"error": repoErrs[i].Err.Error(),
		})
	}
	return out
}
