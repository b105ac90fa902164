// Package cli — version.go implements the "grove version" command.
//
// Besides printing build information, --check performs the best-effort
// call to the configured analytics/version-check endpoint: it records a
// usage event and reports the latest released version. Every failure of
// that call is swallowed — the endpoint is never allowed to break the
// CLI.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/grove/internal/telemetry"
)

// versionFlags holds the flag values for the version command.
type versionFlags struct {
	check bool // --check: query the version-check endpoint
}

// NewVersionCommand creates the "version" cobra command.
func NewVersionCommand() *cobra.Command {
	flags := &versionFlags{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.check, "check", false, "Check the configured endpoint for a newer release")

	return cmd
}

// runVersion prints build info and optionally the latest released
// version as reported by the telemetry endpoint.
func runVersion(ctx context.Context, flags *versionFlags) error {
	latest := ""
	if flags.check {
		// Configuration may legitimately be absent for version; the
		// check is simply skipped then.
		if cfg, err := loadConfig(); err == nil {
			client := telemetry.NewClient(cfg.Telemetry.Endpoint)
			if v, err := client.Check(ctx, "version", Version); err == nil {
				latest = v
			} else {
				VerboseLog("version check failed: %v", err)
			}
		}
	}

	if IsJSONOutput() {
		result := map[string]string{
			"version": Version,
			"commit":  Commit,
			"date":    Date,
		}
		if latest != "" {
			result["latest"] = latest
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("grove %s (commit: %s, built: %s)\n", Version, Commit, Date)
	if latest != "" && latest != Version {
		fmt.Printf("latest release: %s\n", latest)
	}
	return nil
}
