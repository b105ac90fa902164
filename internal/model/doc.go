// Package model defines the domain types for the grove CLI.
//
// This package contains the core entities of the forest lifecycle:
// SourceRepo (a configured repository), Forest (a named collection of
// linked worktree checkouts), and RepoEntry (one checkout inside a
// forest). It also owns the sidecar metadata file written into each
// forest root, which makes a forest self-describing on disk.
//
// The package additionally defines exit codes (ExitCode) and a custom
// error type (CLIError) that carries exit codes for proper OS process
// exit handling.
package model
