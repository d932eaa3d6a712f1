// SPDX-License-Identifier: MIT

// Package health provides health and readiness check functionality for the
// seatwatch daemon. It supports Docker HEALTHCHECK and Kubernetes probes.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	xglog "github.com/arms-tools/seatwatch/internal/log"
	"github.com/arms-tools/seatwatch/internal/session"
)

// Status represents the overall health/readiness status.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult represents the result of a component health check.
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Response is the payload of both probe endpoints.
type Response struct {
	Status    Status                 `json:"status"`
	Version   string                 `json:"version,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// Checker defines the interface for component health checks.
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// Manager aggregates health and readiness checks.
type Manager struct {
	version  string
	checkers []Checker
}

// NewManager creates a new health check manager.
func NewManager(version string) *Manager {
	return &Manager{version: version}
}

// RegisterChecker adds a health checker to the manager.
func (m *Manager) RegisterChecker(checker Checker) {
	m.checkers = append(m.checkers, checker)
}

func (m *Manager) run(ctx context.Context) Response {
	resp := Response{
		Status:    StatusHealthy,
		Version:   m.version,
		Timestamp: time.Now(),
	}
	if len(m.checkers) == 0 {
		return resp
	}

	resp.Checks = make(map[string]CheckResult)
	for _, checker := range m.checkers {
		result := checker.Check(ctx)
		resp.Checks[checker.Name()] = result

		switch result.Status {
		case StatusUnhealthy:
			resp.Status = StatusUnhealthy
		case StatusDegraded:
			if resp.Status != StatusUnhealthy {
				resp.Status = StatusDegraded
			}
		}
	}
	return resp
}

// ServeHealth handles liveness probes. It always answers 200: the process is
// alive regardless of collaborator state.
func (m *Manager) ServeHealth(w http.ResponseWriter, r *http.Request) {
	resp := Response{Status: StatusHealthy, Version: m.version, Timestamp: time.Now()}
	if r.URL.Query().Get("verbose") == "true" {
		resp = m.run(r.Context())
		resp.Status = StatusHealthy
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger := xglog.WithComponent("health")
		logger.Error().Err(err).
			Str(xglog.FieldEvent, "health.encode_error").
			Msg("failed to encode health response")
	}
}

// ServeReady handles readiness probes; 503 when any checker is unhealthy.
func (m *Manager) ServeReady(w http.ResponseWriter, r *http.Request) {
	resp := m.run(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if resp.Status == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger := xglog.WithComponent("health")
		logger.Error().Err(err).
			Str(xglog.FieldEvent, "readiness.encode_error").
			Msg("failed to encode readiness response")
	}
}

// RegistryChecker reports on the shared session registry.
type RegistryChecker struct {
	registry *session.Registry
}

// NewRegistryChecker creates a checker over the session registry.
func NewRegistryChecker(registry *session.Registry) *RegistryChecker {
	return &RegistryChecker{registry: registry}
}

func (c *RegistryChecker) Name() string { return "registry" }

func (c *RegistryChecker) Check(ctx context.Context) CheckResult {
	total := len(c.registry.List())
	active := c.registry.ActiveCount()
	return CheckResult{
		Status:  StatusHealthy,
		Message: fmt.Sprintf("%d active / %d total sessions", active, total),
	}
}

// Pinger is the slice of the archive store the checker needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ArchiveChecker reports whether the session archive is reachable. A broken
// archive degrades the service but does not make it unready: monitoring
// itself keeps working without history.
type ArchiveChecker struct {
	pinger Pinger
}

// NewArchiveChecker creates a checker over the archive store. A nil pinger
// reports the archive as not configured.
func NewArchiveChecker(pinger Pinger) *ArchiveChecker {
	return &ArchiveChecker{pinger: pinger}
}

func (c *ArchiveChecker) Name() string { return "archive" }

func (c *ArchiveChecker) Check(ctx context.Context) CheckResult {
	if c.pinger == nil {
		return CheckResult{Status: StatusHealthy, Message: "not configured (optional)"}
	}
	if err := c.pinger.Ping(ctx); err != nil {
		return CheckResult{Status: StatusDegraded, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy, Message: "archive reachable"}
}
