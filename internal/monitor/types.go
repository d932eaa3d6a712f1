// SPDX-License-Identifier: MIT

// Package monitor drives the per-session polling state machine against the
// enrollment portal.
package monitor

import (
	"context"
	"time"

	"github.com/arms-tools/seatwatch/internal/portal"
	"github.com/arms-tools/seatwatch/internal/session"
)

// DefaultPollInterval is used when a session config carries no interval.
const DefaultPollInterval = 10 * time.Second

// DefaultSessionTimeout bounds the total wall time of one session.
const DefaultSessionTimeout = 40 * time.Minute

// Notifier delivers the seat-available message. Failures are non-fatal and
// are never retried by the monitor.
type Notifier interface {
	Notify(ctx context.Context, courseCode, recipient string) error
}

// MetricsRecorder receives monitor lifecycle events.
type MetricsRecorder interface {
	SessionStarted()
	SessionFinished(status string)
	Poll(outcome string)
	PollDuration(seconds float64)
	PortalLogin(outcome string)
	Notification(outcome string)
}

// ArchiveWriter records terminal session snapshots. Optional; a nil writer
// disables archiving.
type ArchiveWriter interface {
	Record(ctx context.Context, s session.Session) error
}

// Deps holds the collaborators shared by all monitors.
type Deps struct {
	Registry  *session.Registry
	NewClient portal.Factory
	Notifier  Notifier
	Metrics   MetricsRecorder // nil means no metrics
	Archive   ArchiveWriter   // nil means no archive
	Clock     func() time.Time

	SessionTimeout time.Duration // zero means DefaultSessionTimeout
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Metrics == nil {
		d.Metrics = nopRecorder{}
	}
	if d.SessionTimeout <= 0 {
		d.SessionTimeout = DefaultSessionTimeout
	}
	return d
}
