// SPDX-License-Identifier: MIT

// Package api provides the HTTP surface of the seatwatch daemon. The routing
// layer is deliberately thin: all session semantics live in the monitor and
// session packages.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arms-tools/seatwatch/internal/archive"
	"github.com/arms-tools/seatwatch/internal/health"
	"github.com/arms-tools/seatwatch/internal/monitor"
	"github.com/arms-tools/seatwatch/internal/session"
)

// HistoryLister is the slice of the archive store the API needs.
type HistoryLister interface {
	List(ctx context.Context, limit int) ([]archive.Record, error)
}

// Server wires the HTTP handlers to their collaborators.
type Server struct {
	manager  *monitor.Manager
	registry *session.Registry
	history  HistoryLister // nil when the archive is disabled
	health   *health.Manager

	// baseCtx is handed to monitor goroutines so they outlive the request
	// that created them but still stop on daemon shutdown.
	baseCtx context.Context

	defaultInterval    time.Duration
	startRatePerMinute int
}

// Options configures optional server behavior.
type Options struct {
	History            HistoryLister
	DefaultInterval    time.Duration
	StartRatePerMinute int
}

// New creates the API server. baseCtx governs the lifetime of sessions
// started through the API.
func New(baseCtx context.Context, manager *monitor.Manager, healthMgr *health.Manager, opts Options) *Server {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if opts.DefaultInterval <= 0 {
		opts.DefaultInterval = monitor.DefaultPollInterval
	}
	if opts.StartRatePerMinute <= 0 {
		opts.StartRatePerMinute = 10
	}
	return &Server{
		manager:            manager,
		registry:           manager.Registry(),
		history:            opts.History,
		health:             healthMgr,
		baseCtx:            baseCtx,
		defaultInterval:    opts.DefaultInterval,
		startRatePerMinute: opts.StartRatePerMinute,
	}
}

// Routes assembles the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger)

	r.Get("/health", s.health.ServeHealth)
	r.Get("/ready", s.health.ServeReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Session creation spawns a browser-backed monitor; keep abusive
		// clients from exhausting the host.
		r.With(httprate.LimitByIP(s.startRatePerMinute, time.Minute)).
			Post("/start-checking", s.handleStartChecking)

		r.Get("/check-status/{id}", s.handleCheckStatus)
		r.Post("/stop-checking/{id}", s.handleStopChecking)
		r.Get("/sessions", s.handleListSessions)
		r.Get("/history", s.handleHistory)
	})

	return r
}
