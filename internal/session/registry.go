// SPDX-License-Identifier: MIT

package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a session id is unknown to the registry.
var ErrNotFound = errors.New("session not found")

// Registry is the single source of truth for session records. It is safe for
// concurrent use by the API layer and the per-session monitor goroutines.
//
// Terminated records are never evicted; retention is the caller's concern.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// NewRegistryWithClock creates a registry with an injected clock for tests.
func NewRegistryWithClock(now func() time.Time) *Registry {
	r := NewRegistry()
	r.now = now
	return r
}

// Create allocates a new session for cfg and returns its id. IDs are random
// uuids so that concurrent creates, including same-user creates within the
// same second, can never collide.
func (r *Registry) Create(cfg Config) string {
	s := &Session{
		ID:        uuid.NewString(),
		Status:    StatusStarting,
		Message:   "starting session",
		Active:    true,
		CreatedAt: r.now(),
		Config:    cfg,
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	return s.ID
}

// Get returns a snapshot of the session with the given id.
func (r *Registry) Get(id string) (Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return snapshot(s), nil
}

// List returns snapshots of all sessions ordered by creation time.
func (r *Registry) List() []Session {
	r.mu.RLock()
	out := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, snapshot(s))
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// ActiveCount returns the number of sessions whose monitor is still running.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, s := range r.sessions {
		if s.Active {
			n++
		}
	}
	return n
}

// RequestStop clears the active flag of the session if it exists and reports
// whether it did. Stopping is cooperative: the monitor observes the flag at
// its next check point, so the session may keep its current status for up to
// one poll interval.
func (r *Registry) RequestStop(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return false
	}
	s.Active = false
	return true
}

// Update applies mutate to the session under the registry lock. It is used
// exclusively by the owning monitor goroutine. Updates against a session that
// has already reached a terminal status are dropped, which enforces the
// no-mutation-after-terminal invariant even against a misbehaving caller.
func (r *Registry) Update(id string, mutate func(*Session)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if s.Status.Terminal() {
		return nil
	}
	mutate(s)
	if s.Status.Terminal() {
		s.Active = false
	}
	return nil
}

func snapshot(s *Session) Session {
	out := *s
	if s.LastCheck != nil {
		t := *s.LastCheck
		out.LastCheck = &t
	}
	return out
}
