package docker

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
)

// Guard stops running containers whose bind mounts live under a forest
// root. It implements forest.ContainerGuard.
type Guard struct {
	cli *Client
}

// NewGuard connects to the Docker daemon and verifies it responds.
// Callers treat a failure here as "no guard available" and proceed
// without one.
func NewGuard(ctx context.Context) (*Guard, error) {
	cli, err := NewClient()
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(ctx); err != nil {
		_ = cli.Close()
		return nil, err
	}
	return &Guard{cli: cli}, nil
}

// Close releases the underlying Docker client.
func (g *Guard) Close() error {
	return g.cli.Close()
}

// StopUnder stops every running container that has a bind mount whose
// source path lies inside root. It returns the number of containers
// stopped. A stop failure on one container does not prevent stopping
// the others; the first failure is reported after all are attempted.
func (g *Guard) StopUnder(ctx context.Context, root string) (int, error) {
	// Running containers only — a stopped container holds no lease on
	// the mount source.
	containers, err := g.cli.Inner().ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to list Docker containers: %w", err)
	}

	stopped := 0
	var firstErr error
	for _, c := range MountedUnder(containers, root) {
		if err := g.cli.Inner().ContainerStop(ctx, c.ID, container.StopOptions{}); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to stop container %s: %w", containerName(c), err)
			}
			continue
		}
		stopped++
	}
	return stopped, firstErr
}

// MountedUnder filters containers down to those with at least one bind
// mount sourced inside root. Pure function, exported for tests.
func MountedUnder(containers []types.Container, root string) []types.Container {
	var matched []types.Container
	for _, c := range containers {
		for _, mnt := range c.Mounts {
			if mnt.Source == "" {
				continue
			}
			if pathWithin(root, mnt.Source) {
				matched = append(matched, c)
				break
			}
		}
	}
	return matched
}

// pathWithin reports whether path equals root or lies beneath it.
func pathWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// containerName extracts a display name for error messages. The Docker
// API prefixes names with "/".
func containerName(c types.Container) string {
	if len(c.Names) > 0 {
		return strings.TrimPrefix(c.Names[0], "/")
	}
	return c.ID
}
