// SPDX-License-Identifier: MIT

package monitor

import (
	"context"
	"fmt"
	"time"

	xglog "github.com/arms-tools/seatwatch/internal/log"
	"github.com/arms-tools/seatwatch/internal/portal"
	"github.com/arms-tools/seatwatch/internal/session"
	"github.com/rs/zerolog"
)

// Monitor owns one session record and polls the portal until the session
// reaches a terminal state. Exactly one Monitor exists per session and it is
// the only writer of the session's derived fields.
type Monitor struct {
	id   string
	cfg  session.Config
	deps Deps
	log  zerolog.Logger
}

// New creates a monitor for an already-registered session.
func New(id string, cfg session.Config, deps Deps) *Monitor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &Monitor{
		id:   id,
		cfg:  cfg,
		deps: deps.withDefaults(),
		log: xglog.WithComponent("monitor").With().
			Str(xglog.FieldSessionID, id).
			Str(xglog.FieldCourse, cfg.CourseCode).
			Str(xglog.FieldSlot, cfg.Slot).
			Logger(),
	}
}

// Run executes the state machine to completion. It never panics outward: any
// fault inside the loop is mapped to a terminal error status so that one
// session can never take down the process or a sibling session.
func (m *Monitor) Run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().
				Str(xglog.FieldEvent, "session.panic").
				Interface("panic", r).
				Msg("monitor recovered from fault")
			m.finish(ctx, session.StatusError, fmt.Sprintf("internal error: %v", r))
		}
	}()

	client, err := m.deps.NewClient(ctx)
	if err != nil {
		m.finish(ctx, session.StatusError, fmt.Sprintf("portal unavailable: %v", err))
		return
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			m.log.Warn().Err(cerr).
				Str(xglog.FieldEvent, "portal.close_error").
				Msg("failed to release portal client")
		}
	}()

	if !m.login(ctx, client) {
		return
	}

	m.update(func(s *session.Session) {
		s.Status = session.StatusChecking
		s.Message = fmt.Sprintf("watching course %s in slot %s", m.cfg.CourseCode, m.cfg.Slot)
	})
	m.log.Info().
		Str(xglog.FieldEvent, "session.checking").
		Dur("poll_interval", m.cfg.PollInterval).
		Msg("login succeeded, entering poll loop")

	m.poll(ctx, client)
}

// login performs the single fatal pre-loop step. It reports whether the loop
// may start.
func (m *Monitor) login(ctx context.Context, client portal.Client) bool {
	ok, err := client.Login(ctx, m.cfg.Username, m.cfg.Password)
	switch {
	case err != nil:
		m.deps.Metrics.PortalLogin("error")
		m.finish(ctx, session.StatusError, fmt.Sprintf("login failed: %v", err))
		return false
	case !ok:
		m.deps.Metrics.PortalLogin("rejected")
		m.finish(ctx, session.StatusError, "Invalid credentials")
		return false
	}
	m.deps.Metrics.PortalLogin("success")
	return true
}

func (m *Monitor) poll(ctx context.Context, client portal.Client) {
	deadline := m.createdAt().Add(m.deps.SessionTimeout)

	for {
		now := m.deps.Clock()
		m.update(func(s *session.Session) {
			s.Attempts++
			t := now
			s.LastCheck = &t
		})

		// Timeout wins over everything, including issuing another portal call.
		if now.After(deadline) {
			m.finish(ctx, session.StatusTimeout,
				fmt.Sprintf("session timed out after %s", m.deps.SessionTimeout))
			return
		}

		snap, err := m.deps.Registry.Get(m.id)
		if err != nil {
			m.finish(ctx, session.StatusError, "session record lost")
			return
		}
		if !snap.Active {
			m.finish(ctx, session.StatusStopped, "stopped by user")
			return
		}

		if done := m.checkOnce(ctx, client); done {
			return
		}

		// The only voluntary suspension point besides the portal calls.
		select {
		case <-time.After(m.cfg.PollInterval):
		case <-ctx.Done():
			m.finish(ctx, session.StatusStopped, "service shutting down")
			return
		}
	}
}

// checkOnce runs one slot-select + course-check cycle. It returns true when
// the session reached a terminal state.
func (m *Monitor) checkOnce(ctx context.Context, client portal.Client) bool {
	start := m.deps.Clock()
	defer func() {
		m.deps.Metrics.PollDuration(m.deps.Clock().Sub(start).Seconds())
	}()

	if err := client.SelectSlot(ctx, m.cfg.Slot); err != nil {
		// Transient: slot selection failures do not abort the session.
		m.deps.Metrics.Poll("error")
		m.update(func(s *session.Session) {
			s.Message = fmt.Sprintf("slot selection failed: %v", err)
		})
		m.log.Warn().Err(err).
			Str(xglog.FieldEvent, "poll.slot_failed").
			Msg("slot selection failed, will retry")
		return false
	}

	res, err := client.CheckCourse(ctx, m.cfg.CourseCode)
	if err != nil {
		m.deps.Metrics.Poll("error")
		m.update(func(s *session.Session) {
			s.Message = fmt.Sprintf("course check failed: %v", err)
		})
		m.log.Warn().Err(err).
			Str(xglog.FieldEvent, "poll.check_failed").
			Msg("course check failed, will retry")
		return false
	}

	switch res.Outcome {
	case portal.OutcomeFound:
		m.deps.Metrics.Poll("found")
		m.found(ctx, res.Vacancies)
		return true

	case portal.OutcomeFull:
		m.deps.Metrics.Poll("full")
		m.update(func(s *session.Session) {
			s.Message = fmt.Sprintf("course %s is full", m.cfg.CourseCode)
		})

	case portal.OutcomeNotFound:
		m.deps.Metrics.Poll("not_found")
		m.update(func(s *session.Session) {
			s.Message = fmt.Sprintf("course %s not found in slot %s", m.cfg.CourseCode, m.cfg.Slot)
		})

	default:
		m.deps.Metrics.Poll("error")
		m.update(func(s *session.Session) {
			s.Message = fmt.Sprintf("unexpected portal outcome %q", res.Outcome)
		})
	}
	return false
}

// found handles the terminal seat-available path. CheckCourse has already
// attempted the claim as a side effect; the notifier result only annotates
// the message and never changes the status.
func (m *Monitor) found(ctx context.Context, vacancies int) {
	msg := fmt.Sprintf("course %s has %d vacancies, claim attempted", m.cfg.CourseCode, vacancies)

	if m.cfg.Email == "" {
		m.deps.Metrics.Notification("skipped")
	} else if m.deps.Notifier == nil {
		m.deps.Metrics.Notification("skipped")
		msg += "; notifications not configured"
	} else if err := m.deps.Notifier.Notify(ctx, m.cfg.CourseCode, m.cfg.Email); err != nil {
		m.deps.Metrics.Notification("failure")
		msg += fmt.Sprintf("; notification failed: %v", err)
		m.log.Warn().Err(err).
			Str(xglog.FieldEvent, "notify.failed").
			Str("recipient", m.cfg.Email).
			Msg("seat notification failed")
	} else {
		m.deps.Metrics.Notification("success")
		msg += fmt.Sprintf("; notification sent to %s", m.cfg.Email)
	}

	m.finish(ctx, session.StatusFound, msg)
}

// finish moves the session into a terminal state exactly once and records it.
func (m *Monitor) finish(ctx context.Context, status session.Status, message string) {
	prev := session.StatusStarting
	if snap, err := m.deps.Registry.Get(m.id); err == nil {
		prev = snap.Status
	}

	m.update(func(s *session.Session) {
		s.Status = status
		s.Message = message
	})
	m.deps.Metrics.SessionFinished(string(status))

	m.log.Info().
		Str(xglog.FieldEvent, "session.terminal").
		Str(xglog.FieldOldState, string(prev)).
		Str(xglog.FieldNewState, string(status)).
		Str("message", message).
		Msg("session reached terminal state")

	if m.deps.Archive != nil {
		// The session may be terminating because ctx was cancelled; the
		// archive write must still go through.
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if snap, err := m.deps.Registry.Get(m.id); err == nil {
			if aerr := m.deps.Archive.Record(actx, snap); aerr != nil {
				m.log.Warn().Err(aerr).
					Str(xglog.FieldEvent, "archive.write_failed").
					Msg("failed to archive terminal session")
			}
		}
	}
}

func (m *Monitor) update(mutate func(*session.Session)) {
	if err := m.deps.Registry.Update(m.id, mutate); err != nil {
		m.log.Error().Err(err).
			Str(xglog.FieldEvent, "session.update_failed").
			Msg("session update rejected")
	}
}

func (m *Monitor) createdAt() time.Time {
	snap, err := m.deps.Registry.Get(m.id)
	if err != nil {
		return m.deps.Clock()
	}
	return snap.CreatedAt
}
