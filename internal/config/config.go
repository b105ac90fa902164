// Package config loads the grove configuration file.
//
// The configuration lives in grove.jsonc and is JSONC (JSON with
// Comments): it is a human-edited file, so comments and trailing commas
// are allowed. github.com/tidwall/jsonc strips them before parsing with
// the standard encoding/json library, which in turn ignores unknown
// fields.
//
// Configuration is read once at process start and immutable for the
// process lifetime.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/mmr-tortoise/grove/internal/model"
)

// Defaults applied to repo entries that omit the optional fields.
const (
	DefaultBaseBranch     = "main"
	DefaultBranchTemplate = "grove/{name}"
)

// Config is the parsed grove.jsonc file.
type Config struct {
	// WorktreeBase is the root directory under which every forest
	// root directory is created. Required.
	WorktreeBase string `json:"worktreeBase"`

	// DefaultMode is the mode applied when `grove new` is invoked
	// without --mode. Defaults to "feature".
	DefaultMode string `json:"defaultMode,omitempty"`

	// Repos is the ordered list of repositories participating in
	// forests. Must be non-empty.
	Repos []RepoConfig `json:"repos"`

	// StopContainers controls the pre-teardown Docker guard: when true
	// (the default), rm/reset stop running containers whose bind mounts
	// live under the forest root before removing worktrees.
	StopContainers *bool `json:"stopContainers,omitempty"`

	// Log configures the structured operation log file.
	Log LogConfig `json:"log,omitempty"`

	// Telemetry configures the best-effort version-check endpoint.
	Telemetry TelemetryConfig `json:"telemetry,omitempty"`
}

// RepoConfig is one repository entry in grove.jsonc.
type RepoConfig struct {
	// Path is the absolute path to the repository's main working
	// directory. Required.
	Path string `json:"path"`

	// BaseBranch is the branch forest branches are created from.
	// Defaults to "main".
	BaseBranch string `json:"baseBranch,omitempty"`

	// BranchTemplate names forest branches; "{name}" is replaced with
	// the forest name. Defaults to "grove/{name}".
	BranchTemplate string `json:"branchTemplate,omitempty"`
}

// LogConfig configures the rotating operation log.
type LogConfig struct {
	// File is the log file path. Empty disables file logging.
	File string `json:"file,omitempty"`

	// Level is the minimum level (debug, info, warn, error).
	// Defaults to "info".
	Level string `json:"level,omitempty"`

	// MaxSizeMB is the rotation threshold. Defaults to 10.
	MaxSizeMB int `json:"maxSizeMB,omitempty"`

	// MaxBackups is the number of rotated files kept. Defaults to 3.
	MaxBackups int `json:"maxBackups,omitempty"`
}

// TelemetryConfig configures the analytics/version-check client.
type TelemetryConfig struct {
	// Endpoint is the HTTP endpoint used by `grove version --check`.
	// Empty disables the check.
	Endpoint string `json:"endpoint,omitempty"`
}

// Load reads the configuration from the default location. The lookup
// order is $GROVE_CONFIG, then $XDG_CONFIG_HOME/grove/grove.jsonc,
// then ~/.config/grove/grove.jsonc.
func Load() (*Config, error) {
	return LoadFrom(DefaultPath())
}

// DefaultPath returns the configuration file path for this process.
func DefaultPath() string {
	if explicit := os.Getenv("GROVE_CONFIG"); explicit != "" {
		return explicit
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "grove", "grove.jsonc")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "grove.jsonc"
	}
	return filepath.Join(home, ".config", "grove", "grove.jsonc")
}

// LoadFrom reads and validates the configuration at the given path.
// Any failure here is a ConfigurationError: it aborts before any forest
// is touched, so it carries ExitConfigError.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitConfigError,
				fmt.Sprintf("configuration file not found: %s", path),
				err,
			)
		}
		return nil, model.WrapCLIError(model.ExitConfigError, "failed to read configuration", err)
	}

	// Strip JSONC comments and trailing commas before parsing.
	cleanJSON := jsonc.ToJSON(data)

	var cfg Config
	if err := json.Unmarshal(cleanJSON, &cfg); err != nil {
		return nil, model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("failed to parse configuration at %s", path),
			err,
		)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// validate enforces the fail-fast configuration contract.
func (c *Config) validate() error {
	if c.WorktreeBase == "" {
		return model.NewCLIError(model.ExitConfigError, "worktreeBase must be set")
	}
	if !filepath.IsAbs(c.WorktreeBase) {
		return model.NewCLIError(model.ExitConfigError,
			fmt.Sprintf("worktreeBase must be an absolute path, got %q", c.WorktreeBase))
	}
	if len(c.Repos) == 0 {
		return model.NewCLIError(model.ExitConfigError, "no repositories configured")
	}
	for i, repo := range c.Repos {
		if repo.Path == "" {
			return model.NewCLIError(model.ExitConfigError,
				fmt.Sprintf("repos[%d]: path must be set", i))
		}
		if !filepath.IsAbs(repo.Path) {
			return model.NewCLIError(model.ExitConfigError,
				fmt.Sprintf("repos[%d]: path must be absolute, got %q", i, repo.Path))
		}
	}
	if c.DefaultMode != "" {
		if _, err := model.ParseMode(c.DefaultMode); err != nil {
			return model.WrapCLIError(model.ExitConfigError, "invalid defaultMode", err)
		}
	}
	return nil
}

// applyDefaults fills in optional fields after validation.
func (c *Config) applyDefaults() {
	if c.DefaultMode == "" {
		c.DefaultMode = model.ModeFeature.String()
	}
	for i := range c.Repos {
		if c.Repos[i].BaseBranch == "" {
			c.Repos[i].BaseBranch = DefaultBaseBranch
		}
		if c.Repos[i].BranchTemplate == "" {
			c.Repos[i].BranchTemplate = DefaultBranchTemplate
		}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
}

// SourceRepos converts the configured repo entries into domain
// SourceRepo values, preserving order.
func (c *Config) SourceRepos() []model.SourceRepo {
	repos := make([]model.SourceRepo, 0, len(c.Repos))
	for _, r := range c.Repos {
		repos = append(repos, model.SourceRepo{
			Path:           r.Path,
			BaseBranch:     r.BaseBranch,
			BranchTemplate: r.BranchTemplate,
		})
	}
	return repos
}

// GuardContainers reports whether the pre-teardown Docker guard is
// enabled. Enabled unless explicitly turned off.
func (c *Config) GuardContainers() bool {
	return c.StopContainers == nil || *c.StopContainers
}
