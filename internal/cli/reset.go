// Package cli — reset.go implements the "grove reset" command.
//
// Reset tears down every forest under the worktree base. It is the
// multi-forest form of rm and uses the same per-entry sequence:
// registry cleanup before directory deletion, per-forest failures
// collected without blocking the remaining forests.
//
// Because reset is destructive across all forests, it requires either
// the --force flag or an interactive confirmation.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/grove/internal/forest"
	"github.com/mmr-tortoise/grove/internal/model"
)

// resetFlags holds the flag values for the reset command.
type resetFlags struct {
	// force skips the interactive confirmation prompt.
	force bool
}

// NewResetCommand creates the "reset" cobra command.
func NewResetCommand() *cobra.Command {
	flags := &resetFlags{}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove ALL forests",
		Long: `Remove every forest under the worktree base, including half-created
forests left behind by an interrupted run.

Unless --force is specified, the command prompts for confirmation.

Examples:
  grove reset
  grove reset --force`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Reset without confirmation")

	return cmd
}

// runReset is the main logic function for the reset command.
func runReset(ctx context.Context, flags *resetFlags) error {
	mgr, cfg, cleanup, err := newManager(nil)
	if err != nil {
		return err
	}
	defer cleanup()

	forests := mgr.Discover()
	if len(forests) == 0 {
		printResetResult(0, nil)
		return nil
	}

	confirmed := flags.force
	if !confirmed {
		confirmed, err = promptConfirmation(len(forests))
		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "failed to read user input", err)
		}
		if !confirmed {
			return model.NewCLIError(model.ExitUserCancelled, "operation cancelled by user")
		}
	}

	attachGuard(ctx, mgr, cfg.GuardContainers())

	failures, err := mgr.Reset(ctx, confirmed)
	if err != nil {
		return wrapDomainError(err)
	}

	printResetResult(len(forests), failures)
	if len(failures) > 0 {
		return model.NewCLIError(model.ExitPartialRemoval,
			fmt.Sprintf("reset: %d forest(s) reported removal errors", len(failures)))
	}
	return nil
}

// promptConfirmation asks the user to confirm the reset. It reads a
// single line from stdin and accepts "y" or "yes".
func promptConfirmation(count int) (bool, error) {
	fmt.Printf("About to remove %d forest(s), including all worktree checkouts and forest branches.\n", count)
	fmt.Print("\nContinue? [y/N] ")

	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
		return answer == "y" || answer == "yes", nil
	}
	if err := scanner.Err(); err != nil {
		return false, err
	}
	// Closed stdin counts as "no".
	return false, nil
}

// printResetResult outputs the reset result in text or JSON format.
func printResetResult(total int, failures []forest.ForestTeardownError) {
	if IsJSONOutput() {
		failed := make([]map[string]interface{}, 0, len(failures))
		for i := range failures {
			failed = append(failed, map[string]interface{}{
				"name":   failures[i].Name,
				"errors": formatRepoErrors(failures[i].Errors),
			})
		}
		result := map[string]interface{}{
			"action":  "reset",
			"forests": total,
			"failed":  failed,
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	if total == 0 {
		fmt.Println("No forests found.")
		return
	}

	fmt.Printf("Removed %d forest(s)\n", total-len(failures))
	for i := range failures {
		fmt.Printf("  forest %q reported errors:\n", failures[i].Name)
		for j := range failures[i].Errors {
			fmt.Printf("    - %s\n", failures[i].Errors[j].Error())
		}
	}
}
