// Package cli implements the cobra-based CLI commands for grove.
//
// Each subcommand (new, rm, reset, ls, version) is defined in its own
// file within this package. This file defines the root command that
// serves as the parent for all subcommands and handles global flags.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/grove/internal/config"
	"github.com/mmr-tortoise/grove/internal/forest"
	"github.com/mmr-tortoise/grove/internal/logging"
	"github.com/mmr-tortoise/grove/internal/model"
)

// Global flag variables shared across all subcommands, bound to cobra
// persistent flags on the root command.
var (
	// jsonOutput switches command output to structured JSON for machine
	// consumption.
	jsonOutput bool

	// verbose enables debug/trace output on stderr.
	verbose bool

	// configPath overrides the default configuration file location.
	configPath string
)

// Version, Commit, and Date are injected from the main package at build
// time via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewRootCommand creates and configures the root cobra command, the
// entry point for the entire CLI.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "grove",
		Short: "Multi-repo worktree forest manager",
		Long: `grove creates, lists, and tears down forests: named collections of
linked Git worktree checkouts spanning multiple source repositories.

Creation is all-or-nothing — a failed checkout rolls back the completed
ones — and teardown keeps each repository's worktree registry consistent
with the directory tree, even after an interrupted run.`,

		// Errors are formatted by Execute; keep cobra quiet.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file path (default: $GROVE_CONFIG or ~/.config/grove/grove.jsonc)")

	rootCmd.AddCommand(NewNewCommand())
	rootCmd.AddCommand(NewRmCommand())
	rootCmd.AddCommand(NewResetCommand())
	rootCmd.AddCommand(NewLsCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// Execute runs the root command and translates errors into OS exit
// codes. CLIError values carry their own code; everything else exits 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// loadConfig reads the configuration, honoring the --config override.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

// newManager builds the forest manager for a command invocation:
// configuration, operation log, and (for teardown commands that ask for
// it) the Docker container guard. The returned cleanup flushes the log
// and must be deferred.
func newManager(guard forest.ContainerGuard) (*forest.Manager, *config.Config, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, nil, model.WrapCLIError(model.ExitGeneralError, "failed to open operation log", err)
	}

	mgr := forest.NewManager(cfg, logger, guard)
	cleanup := func() { _ = logger.Sync() }
	return mgr, cfg, cleanup, nil
}

// exitCodeFor maps a domain error to its exit code for errors that the
// run functions surface directly (outside CLIError wrapping).
func exitCodeFor(err error) model.ExitCode {
	switch err.(type) {
	case *forest.CollisionError:
		return model.ExitNameCollision
	case *forest.NotFoundError:
		return model.ExitForestNotFound
	case *forest.PartialCreateError:
		return model.ExitGitError
	default:
		return model.ExitGeneralError
	}
}

// wrapDomainError converts forest-package errors into CLIErrors so
// Execute maps them to the right exit code. CLIErrors pass through
// unchanged.
func wrapDomainError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*model.CLIError); ok {
		return err
	}
	return model.WrapCLIError(exitCodeFor(err), err.Error(), nil)
}

// printError outputs an error message in the appropriate format (JSON
// or text) based on the --json global flag. Errors go to stderr in both
// modes; stdout is reserved for successful command output.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// VerboseLog prints a message to stderr only when verbose mode is
// enabled.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
func IsJSONOutput() bool {
	return jsonOutput
}
