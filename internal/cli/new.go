// Package cli — new.go implements the "grove new" command.
//
// The new command creates a forest: one worktree checkout per
// configured source repository under a shared root directory, each on a
// branch derived from the repo's branch template. The whole creation is
// all-or-nothing; a failing checkout rolls back the completed ones.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/grove/internal/model"
)

// newFlags holds the flag values for the new command.
type newFlags struct {
	mode string // --mode: feature or scratch
}

// NewNewCommand creates the "new" cobra command.
func NewNewCommand() *cobra.Command {
	flags := &newFlags{}

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a new forest",
		Long: `Create a new forest: a linked worktree checkout of every configured
repository under <worktreeBase>/<name>/, each on a branch derived from
the repo's branch template.

Examples:
  grove new payments-refactor
  grove new spike-cache --mode scratch`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.mode, "mode", "", "Forest mode: feature or scratch (default: from configuration)")

	return cmd
}

// runNew is the orchestration function for the new command: plan, then
// execute.
func runNew(ctx context.Context, name string, flags *newFlags) error {
	mgr, cfg, cleanup, err := newManager(nil)
	if err != nil {
		return err
	}
	defer cleanup()

	modeStr := flags.mode
	if modeStr == "" {
		modeStr = cfg.DefaultMode
	}
	mode, err := model.ParseMode(modeStr)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "invalid --mode", err)
	}

	VerboseLog("Planning forest %q (mode %s, %d repos)", name, mode, len(cfg.Repos))
	plan, err := mgr.BuildPlan(name, mode)
	if err != nil {
		return wrapDomainError(err)
	}

	VerboseLog("Creating forest at %s", plan.Root)
	f, err := mgr.Create(ctx, plan)
	if err != nil {
		return wrapDomainError(err)
	}

	printNewResult(f)
	return nil
}

// printNewResult outputs the created forest in text or JSON format.
func printNewResult(f *model.Forest) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(f, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Created forest %q\n", f.Name)
	fmt.Printf("  Root:  %s\n", f.Root)
	fmt.Printf("  Mode:  %s\n", f.Mode)
	fmt.Println()
	fmt.Println("  Checkouts:")
	for _, e := range f.Entries {
		fmt.Printf("    %-20s %s  (branch: %s)\n", e.Dir, e.WorktreePath(f.Root), e.Branch)
	}
}
