// SPDX-License-Identifier: MIT

package monitor

import (
	"context"
	"sync"

	xglog "github.com/arms-tools/seatwatch/internal/log"
	"github.com/arms-tools/seatwatch/internal/session"
)

// Manager spawns one monitor goroutine per session and tracks them for
// graceful shutdown. Sessions are fully independent; the registry is the only
// state they share.
type Manager struct {
	deps Deps
	wg   sync.WaitGroup
}

// NewManager creates a manager with the given shared collaborators.
func NewManager(deps Deps) *Manager {
	return &Manager{deps: deps.withDefaults()}
}

// Registry exposes the shared session registry for the API layer.
func (mg *Manager) Registry() *session.Registry {
	return mg.deps.Registry
}

// Start registers a new session and launches its monitor goroutine. There is
// no upper bound on concurrently running sessions.
func (mg *Manager) Start(ctx context.Context, cfg session.Config) string {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	id := mg.deps.Registry.Create(cfg)
	mg.deps.Metrics.SessionStarted()

	logger := xglog.WithComponent("manager")
	logger.Info().
		Str(xglog.FieldEvent, "session.start").
		Str(xglog.FieldSessionID, id).
		Str(xglog.FieldUsername, cfg.Username).
		Str(xglog.FieldCourse, cfg.CourseCode).
		Str(xglog.FieldSlot, cfg.Slot).
		Msg("starting monitoring session")

	m := New(id, cfg, mg.deps)
	mg.wg.Add(1)
	go func() {
		defer mg.wg.Done()
		m.Run(ctx)
	}()

	return id
}

// StopAll requests a cooperative stop for every active session.
func (mg *Manager) StopAll() {
	for _, s := range mg.deps.Registry.List() {
		if s.Active {
			mg.deps.Registry.RequestStop(s.ID)
		}
	}
}

// Shutdown stops all sessions and waits for their monitors to exit, or for
// ctx to expire.
func (mg *Manager) Shutdown(ctx context.Context) error {
	mg.StopAll()

	done := make(chan struct{})
	go func() {
		mg.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
