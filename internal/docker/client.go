package docker

import (
	"context"
	"fmt"
	"net"
	"os"
	"runtime"
	"time"

	"github.com/docker/docker/client"
)

// defaultPingTimeout is the maximum duration to wait for a Docker
// daemon response during a Ping. Generous enough for Docker Desktop on
// macOS, which responds slower than native Linux Docker.
const defaultPingTimeout = 5 * time.Second

// Client wraps the Docker Engine SDK client. It handles automatic
// Docker socket detection across platforms and daemon reachability
// checks; everything else goes through Inner().
type Client struct {
	inner *client.Client
}

// NewClient creates a Docker client with automatic socket detection.
//
// Detection order:
//  1. DOCKER_HOST environment variable (used as-is when set)
//  2. Platform default socket paths:
//     Linux: /var/run/docker.sock
//     macOS: /var/run/docker.sock, then ~/.docker/run/docker.sock
//     Windows: npipe:////./pipe/docker_engine
func NewClient() (*Client, error) {
	if dockerHost := os.Getenv("DOCKER_HOST"); dockerHost != "" {
		return newClientWithHost(dockerHost)
	}

	host, err := detectDockerHost()
	if err != nil {
		return nil, err
	}
	return newClientWithHost(host)
}

// newClientWithHost creates a Docker client connected to the given host
// string, with API version negotiation so the client works against any
// reasonably recent daemon.
func newClientWithHost(host string) (*Client, error) {
	c, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client for host %q: %w", host, err)
	}
	return &Client{inner: c}, nil
}

// detectDockerHost probes the platform's known socket locations and
// returns the host URI for the first that exists. Existence is checked
// rather than connectivity; Ping handles the latter.
func detectDockerHost() (string, error) {
	switch runtime.GOOS {
	case "linux":
		return detectUnixSocket([]string{
			"/var/run/docker.sock",
		})

	case "darwin":
		// Docker Desktop usually symlinks /var/run/docker.sock, but
		// newer versions only create the per-user socket.
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return detectUnixSocket([]string{
				"/var/run/docker.sock",
			})
		}
		return detectUnixSocket([]string{
			"/var/run/docker.sock",
			homeDir + "/.docker/run/docker.sock",
		})

	case "windows":
		// Named pipes do not answer os.Stat; probe with a short dial.
		pipePath := `//./pipe/docker_engine`
		conn, err := net.DialTimeout("pipe", pipePath, 1*time.Second)
		if err == nil {
			conn.Close()
			return "npipe://" + pipePath, nil
		}
		return "", fmt.Errorf("Docker named pipe not found at %s: %w", pipePath, err)

	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// detectUnixSocket returns the Docker host URI for the first socket
// path that exists, checking in the order given.
func detectUnixSocket(paths []string) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return "unix://" + path, nil
		}
	}
	return "", fmt.Errorf("Docker socket not found at any of: %v — is Docker running?", paths)
}

// Ping verifies that the Docker daemon is reachable and responsive,
// waiting at most defaultPingTimeout.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if _, err := c.inner.Ping(pingCtx); err != nil {
		return fmt.Errorf("Docker daemon is not responding — is Docker running?: %w", err)
	}
	return nil
}

// Close releases all resources held by the Docker client. Safe to call
// multiple times.
func (c *Client) Close() error {
	if c.inner != nil {
		return c.inner.Close()
	}
	return nil
}

// Inner returns the underlying Docker SDK client.
func (c *Client) Inner() *client.Client {
	return c.inner
}
