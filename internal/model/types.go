package model

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Mode classifies the intent of a forest. It only affects bookkeeping
// (recorded in metadata, shown in listings) — the lifecycle is identical
// for every mode.
type Mode string

const (
	// ModeFeature is a forest backing long-lived feature work.
	ModeFeature Mode = "feature"

	// ModeScratch is a throwaway forest for experiments.
	ModeScratch Mode = "scratch"
)

// String returns the string representation of Mode.
func (m Mode) String() string {
	return string(m)
}

// IsValid checks whether the Mode value is one of the predefined modes.
func (m Mode) IsValid() bool {
	switch m {
	case ModeFeature, ModeScratch:
		return true
	default:
		return false
	}
}

// ParseMode converts a string to a Mode.
// Returns an error if the string does not match any valid mode.
func ParseMode(s string) (Mode, error) {
	mode := Mode(strings.ToLower(s))
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid forest mode: %q (valid: feature, scratch)", s)
	}
	return mode, nil
}

// SourceRepo is a repository configured to participate in forests.
// It is loaded once from configuration and immutable for the process
// lifetime.
type SourceRepo struct {
	// Path is the absolute filesystem path to the repository's main
	// working directory.
	Path string `json:"path"`

	// BaseBranch is the branch new forest branches are created from
	// (e.g., "main").
	BaseBranch string `json:"baseBranch"`

	// BranchTemplate is the template for forest branch names. The
	// placeholder "{name}" is replaced with the forest name
	// (e.g., "feat/{name}" → "feat/foo").
	BranchTemplate string `json:"branchTemplate"`
}

// Name returns the repository's short name, the base name of its path.
// It doubles as the worktree subdirectory name inside a forest root.
func (r SourceRepo) Name() string {
	return filepath.Base(r.Path)
}

// BranchFor expands the repo's branch template for the given forest name.
func (r SourceRepo) BranchFor(forestName string) string {
	return strings.ReplaceAll(r.BranchTemplate, "{name}", forestName)
}

// RepoEntry is one checkout inside a forest: a worktree of a single
// source repository, on a forest-specific branch.
type RepoEntry struct {
	// RepoPath is the absolute path of the owning source repository.
	RepoPath string `yaml:"repo" json:"repo"`

	// Dir is the worktree subdirectory name, relative to the forest root.
	Dir string `yaml:"dir" json:"dir"`

	// Branch is the branch checked out in this worktree.
	Branch string `yaml:"branch" json:"branch"`
}

// WorktreePath returns the absolute path of the entry's worktree given
// the forest root.
func (e RepoEntry) WorktreePath(forestRoot string) string {
	return filepath.Join(forestRoot, e.Dir)
}

// Forest is a named unit of work: a collection of linked checkouts, one
// per configured source repository, sharing a root directory and
// lifecycle. Forests are immutable once created — changing composition
// requires destroy and recreate.
type Forest struct {
	// Name is the unique, filesystem-safe forest name.
	Name string `json:"name"`

	// Root is the absolute path of the forest root directory
	// (<worktree_base>/<name>).
	Root string `json:"root"`

	// Mode records the forest's intent (feature/scratch).
	Mode Mode `json:"mode"`

	// Entries lists the checkouts owned by this forest.
	Entries []RepoEntry `json:"repos"`

	// CreatedAt is the creation timestamp, recorded in metadata.
	CreatedAt time.Time `json:"createdAt,omitempty"`

	// Inferred is true when the forest was reconstructed by directory
	// scanning because its metadata file was missing or unreadable
	// (e.g., creation was interrupted before metadata was written).
	// Never persisted.
	Inferred bool `json:"inferred,omitempty"`
}

// nameRegex validates forest names: alphanumeric plus hyphens and
// underscores, starting with an alphanumeric. Keeps names safe as
// directory and branch name components.
var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// ValidateName checks if the given name is a valid forest name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("forest name must not be empty")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("invalid forest name %q: must contain only alphanumeric characters, hyphens, and underscores, and start with an alphanumeric", name)
	}
	return nil
}

// ExitCode defines standard CLI exit codes. These codes allow scripts
// and CI systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates the configuration file is missing,
	// unreadable, or invalid.
	ExitConfigError ExitCode = 2

	// ExitGitError indicates a Git operation (branch or worktree
	// manipulation) failed.
	ExitGitError ExitCode = 3

	// ExitNameCollision indicates a forest with the requested name
	// already exists.
	ExitNameCollision ExitCode = 4

	// ExitForestNotFound indicates the named forest does not exist.
	ExitForestNotFound ExitCode = 5

	// ExitRollbackFailed indicates creation failed AND the rollback of
	// already-completed steps also failed, leaving repositories in an
	// inconsistent state that requires manual cleanup.
	ExitRollbackFailed ExitCode = 6

	// ExitUserCancelled indicates the user declined a confirmation prompt.
	ExitUserCancelled ExitCode = 7

	// ExitInvariantViolation indicates an internal containment check
	// failed before a deletion. This is a defect signal, never a user
	// error.
	ExitInvariantViolation ExitCode = 8

	// ExitPartialRemoval indicates rm/reset completed but one or more
	// repositories reported removal errors.
	ExitPartialRemoval ExitCode = 9
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
