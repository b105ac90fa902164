// Package cli — ls.go implements the "grove ls" command.
//
// The ls command lists every forest discovered under the worktree base,
// including half-created forests whose metadata was never written
// (shown as inferred). Output is a text table or a JSON array.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/grove/internal/model"
)

// NewLsCommand creates the "ls" cobra command.
func NewLsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List all forests",
		Long: `List every forest under the worktree base, in name order.

Forests whose metadata file is missing (creation interrupted before it
was written) are reconstructed from the directory layout and marked
inferred.

Examples:
  grove ls
  grove ls --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runLs()
		},
	}

	return cmd
}

// runLs is the main logic function for the ls command.
func runLs() error {
	mgr, _, cleanup, err := newManager(nil)
	if err != nil {
		return err
	}
	defer cleanup()

	forests := mgr.Discover()
	printLsResult(forests)
	return nil
}

// printLsResult outputs the forest list in text or JSON format.
func printLsResult(forests []model.Forest) {
	if IsJSONOutput() {
		type resultJSON struct {
			Forests []model.Forest `json:"forests"`
		}
		// Empty slice instead of nil so JSON shows [] rather than null.
		result := resultJSON{Forests: make([]model.Forest, 0, len(forests))}
		result.Forests = append(result.Forests, forests...)

		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	if len(forests) == 0 {
		fmt.Println("No forests found.")
		return
	}

	fmt.Printf("%-24s %-10s %-8s %s\n", "NAME", "MODE", "REPOS", "ROOT")
	for _, f := range forests {
		mode := f.Mode.String()
		if f.Inferred {
			mode = mode + "*"
		}
		fmt.Printf("%-24s %-10s %-8d %s\n", f.Name, mode, len(f.Entries), f.Root)
	}
	for _, f := range forests {
		if f.Inferred {
			fmt.Println("\n* metadata missing; forest reconstructed from directory layout")
			break
		}
	}
}
