// SPDX-License-Identifier: MIT

// Package metrics exposes prometheus collectors for the seatwatch daemon.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seatwatch_sessions_started_total",
		Help: "Total number of monitoring sessions created",
	})

	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "seatwatch_sessions_active",
		Help: "Number of monitoring sessions currently polling",
	})

	sessionOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seatwatch_session_outcomes_total",
		Help: "Terminal session outcomes",
	}, []string{"status"}) // status=found|error|timeout|stopped

	pollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seatwatch_polls_total",
		Help: "Completed poll iterations by outcome",
	}, []string{"outcome"}) // outcome=found|full|not_found|error

	pollDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "seatwatch_poll_duration_seconds",
		Help:    "Wall time of one poll iteration including portal calls",
		Buckets: prometheus.DefBuckets,
	})

	portalLoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seatwatch_portal_logins_total",
		Help: "Portal login attempts by outcome",
	}, []string{"outcome"}) // outcome=success|rejected|error

	notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seatwatch_notifications_total",
		Help: "Seat-available notifications by outcome",
	}, []string{"outcome"}) // outcome=success|failure|skipped

	archiveWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seatwatch_archive_writes_total",
		Help: "Terminal session archive inserts by outcome",
	}, []string{"outcome"}) // outcome=success|failure
)

func IncSessionStarted() { sessionsStartedTotal.Inc(); sessionsActive.Inc() }
func DecSessionActive()  { sessionsActive.Dec() }

func IncSessionOutcome(status string) { sessionOutcomesTotal.WithLabelValues(status).Inc() }

func IncPoll(outcome string) { pollsTotal.WithLabelValues(outcome).Inc() }

func ObservePollDuration(sec float64) { pollDurationSeconds.Observe(sec) }

func IncPortalLogin(outcome string) { portalLoginsTotal.WithLabelValues(outcome).Inc() }

func IncNotification(outcome string) { notificationsTotal.WithLabelValues(outcome).Inc() }

func IncArchiveWrite(outcome string) { archiveWritesTotal.WithLabelValues(outcome).Inc() }
