// SPDX-License-Identifier: MIT

// Package session holds the session record model and the concurrency-safe
// registry shared between the HTTP API and the per-session monitors.
package session

import (
	"time"
)

// Status represents the current state of a monitoring session.
type Status string

const (
	StatusStarting Status = "starting"
	StatusChecking Status = "checking"
	StatusFound    Status = "found"
	StatusFull     Status = "full"
	StatusNotFound Status = "not_found"
	StatusError    Status = "error"
	StatusTimeout  Status = "timeout"
	StatusStopped  Status = "stopped"
)

// Terminal reports whether s is a terminal status. Once a session reaches a
// terminal status no further field mutation may occur.
func (s Status) Terminal() bool {
	switch s {
	case StatusFound, StatusError, StatusTimeout, StatusStopped:
		return true
	}
	return false
}

// Config is the immutable per-session configuration supplied at creation.
type Config struct {
	Username     string
	Password     string
	Slot         string // single slot letter, validated upstream
	CourseCode   string
	Email        string        // optional; empty means no notification
	PollInterval time.Duration // defaulted to 10s upstream when zero
}

// Session is the mutable record of one monitoring attempt.
//
// Write discipline: status, message, attempts and last_check are written only
// by the owning monitor goroutine (via Registry.Update). Active is the only
// field writable from outside, through Registry.RequestStop.
type Session struct {
	ID        string     `json:"session_id"`
	Status    Status     `json:"status"`
	Message   string     `json:"message"`
	Attempts  int        `json:"attempts"`
	LastCheck *time.Time `json:"last_check,omitempty"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`

	Config Config `json:"-"`
}
