// Package main is the entry point for the grove CLI.
//
// All functionality lives in the internal/cli package, which defines
// cobra commands. Build-time variables (version, commit, date) are
// injected via ldflags during release; during development they default
// to "dev", "none", and "unknown".
package main

import (
	"github.com/mmr-tortoise/grove/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
