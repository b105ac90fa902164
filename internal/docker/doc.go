// Package docker implements the pre-teardown container guard.
//
// Development containers commonly bind-mount a checkout; removing a
// forest while such a container is running would pull the filesystem
// out from under it and leave the removal half-done. Before teardown,
// grove stops every running container whose bind mounts resolve to a
// path inside the forest root.
//
// The guard is best-effort: an unreachable Docker daemon is reported to
// the caller as an error and teardown proceeds without it.
//
// The package uses github.com/docker/docker/client as the underlying
// Docker SDK, with version negotiation enabled for broad compatibility,
// and automatic socket detection across Linux, macOS, and Windows.
package docker
