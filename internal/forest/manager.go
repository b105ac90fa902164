package forest

import (
	"context"

	"go.uber.org/zap"

	"github.com/mmr-tortoise/grove/internal/config"
	"github.com/mmr-tortoise/grove/internal/git"
)

// ContainerGuard stops running containers whose bind mounts live under
// a forest root, so teardown is not removing directories out from under
// a live container. The Docker-backed implementation lives in
// internal/docker; the guard is optional and best-effort.
type ContainerGuard interface {
	// StopUnder stops containers mounted under root and returns how
	// many were stopped.
	StopUnder(ctx context.Context, root string) (int, error)
}

// Manager orchestrates the forest lifecycle against the configured
// source repositories. All public operations (BuildPlan, Create,
// Remove, Reset, Discover) run synchronously to completion.
type Manager struct {
	cfg   *config.Config
	git   *git.Runner
	guard ContainerGuard
	log   *zap.Logger
}

// NewManager creates a Manager. logger may not be nil; pass zap.NewNop()
// when no operation log is configured. guard may be nil, which disables
// the pre-teardown container stop.
func NewManager(cfg *config.Config, logger *zap.Logger, guard ContainerGuard) *Manager {
	return &Manager{
		cfg:   cfg,
		git:   git.NewRunner(),
		guard: guard,
		log:   logger,
	}
}

// SetGuard attaches (or detaches, with nil) the container guard after
// construction. The guard requires a daemon connection, so the CLI only
// wires it for teardown commands and only when the daemon answers.
func (m *Manager) SetGuard(guard ContainerGuard) {
	m.guard = guard
}
