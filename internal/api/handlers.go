// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	xglog "github.com/arms-tools/seatwatch/internal/log"
	"github.com/arms-tools/seatwatch/internal/portal"
	"github.com/arms-tools/seatwatch/internal/session"
)

// startRequest is the body of POST /api/start-checking.
type startRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	Slot          string `json:"slot"`
	CourseCode    string `json:"courseCode"`
	Email         string `json:"email"`
	CheckInterval int    `json:"checkInterval"` // seconds, optional
}

const maxBodyBytes = 16 << 10

func (s *Server) handleStartChecking(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req startRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	switch {
	case req.Username == "":
		writeBadRequest(w, "username is required")
		return
	case req.Password == "":
		writeBadRequest(w, "password is required")
		return
	case req.Slot == "":
		writeBadRequest(w, "slot is required")
		return
	case req.CourseCode == "":
		writeBadRequest(w, "courseCode is required")
		return
	}
	if err := portal.ValidateSlot(req.Slot); err != nil {
		if errors.Is(err, portal.ErrInvalidSlot) {
			writeBadRequest(w, "slot must be a single letter A-Z")
			return
		}
		writeInternalError(w)
		return
	}
	if req.CheckInterval < 0 {
		writeBadRequest(w, "checkInterval must be positive")
		return
	}

	interval := s.defaultInterval
	if req.CheckInterval > 0 {
		interval = time.Duration(req.CheckInterval) * time.Second
	}

	// The monitor outlives this request; it must not inherit the request
	// context or it would stop as soon as the response is written.
	id := s.manager.Start(s.baseCtx, session.Config{
		Username:     req.Username,
		Password:     req.Password,
		Slot:         req.Slot,
		CourseCode:   req.CourseCode,
		Email:        req.Email,
		PollInterval: interval,
	})

	logger := xglog.WithComponentFromContext(r.Context(), "api")
	logger.Info().
		Str(xglog.FieldEvent, "session.created").
		Str(xglog.FieldSessionID, id).
		Str(xglog.FieldCourse, req.CourseCode).
		Msg("session created")

	writeJSON(w, http.StatusOK, map[string]string{
		"session_id": id,
		"status":     "started",
	})
}

func (s *Server) handleCheckStatus(w http.ResponseWriter, r *http.Request) {
	sess, err := s.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleStopChecking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.registry.RequestStop(id) {
		writeNotFound(w)
		return
	}

	logger := xglog.WithComponentFromContext(r.Context(), "api")
	logger.Info().
		Str(xglog.FieldEvent, "session.stop_requested").
		Str(xglog.FieldSessionID, id).
		Msg("stop requested")

	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := s.registry.List()
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(sessions),
		"sessions": sessions,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "archive not configured",
		})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := s.history.List(r.Context(), limit)
	if err != nil {
		logger := xglog.WithComponentFromContext(r.Context(), "api")
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "history.list_failed").
			Msg("listing archive failed")
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(records),
		"history": records,
	})
}
