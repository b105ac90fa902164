// Package telemetry is the client side of the analytics/version-check
// endpoint: a stateless handler that records a usage event and answers
// with the latest released version string.
//
// Everything here is explicitly best-effort. Callers ignore errors, no
// retry is attempted, and a short timeout keeps a slow endpoint from
// delaying the CLI.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"time"
)

// requestTimeout bounds the whole check; the endpoint is not worth
// waiting for.
const requestTimeout = 3 * time.Second

// Event is the usage record sent with a version check.
type Event struct {
	// Command is the grove subcommand that triggered the check.
	Command string `json:"command"`

	// Version is the running grove version.
	Version string `json:"version"`

	// OS and Arch identify the platform.
	OS   string `json:"os"`
	Arch string `json:"arch"`
}

// Client talks to the version-check endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a telemetry client for the given endpoint. An empty
// endpoint yields a client whose Check reports "disabled".
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: requestTimeout},
	}
}

// Check posts a usage event and returns the latest version string the
// endpoint reports. Any failure — endpoint unset, network error,
// non-200 response — is returned as an error the caller is free to
// drop.
func (c *Client) Check(ctx context.Context, command, version string) (string, error) {
	if c.endpoint == "" {
		return "", fmt.Errorf("version check disabled: no endpoint configured")
	}

	body, err := json.Marshal(Event{
		Command: command,
		Version: version,
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("version check returned %s", resp.Status)
	}

	// Response body is the latest version string, nothing more.
	latest, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(latest)), nil
}
