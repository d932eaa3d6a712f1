// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arms-tools/seatwatch/internal/session"
)

type staticChecker struct {
	name   string
	result CheckResult
}

func (c staticChecker) Name() string                          { return c.name }
func (c staticChecker) Check(ctx context.Context) CheckResult { return c.result }

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error { return errors.New("database locked") }

type okPinger struct{}

func (okPinger) Ping(ctx context.Context) error { return nil }

func TestServeHealthAlways200(t *testing.T) {
	m := NewManager("v1")
	m.RegisterChecker(staticChecker{name: "bad", result: CheckResult{Status: StatusUnhealthy}})

	rec := httptest.NewRecorder()
	m.ServeHealth(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, 200, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusHealthy, resp.Status)
}

func TestServeReadyUnhealthyIs503(t *testing.T) {
	m := NewManager("v1")
	m.RegisterChecker(staticChecker{name: "bad", result: CheckResult{Status: StatusUnhealthy, Error: "down"}})

	rec := httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest("GET", "/ready", nil))

	assert.Equal(t, 503, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Contains(t, resp.Checks, "bad")
}

func TestServeReadyDegradedIs200(t *testing.T) {
	m := NewManager("v1")
	m.RegisterChecker(staticChecker{name: "meh", result: CheckResult{Status: StatusDegraded}})

	rec := httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest("GET", "/ready", nil))

	assert.Equal(t, 200, rec.Code)
}

func TestRegistryChecker(t *testing.T) {
	reg := session.NewRegistry()
	reg.Create(session.Config{Username: "u", Slot: "A", CourseCode: "C"})

	res := NewRegistryChecker(reg).Check(context.Background())
	assert.Equal(t, StatusHealthy, res.Status)
	assert.Contains(t, res.Message, "1 active")
}

func TestArchiveChecker(t *testing.T) {
	assert.Equal(t, StatusHealthy, NewArchiveChecker(nil).Check(context.Background()).Status)
	assert.Equal(t, StatusHealthy, NewArchiveChecker(okPinger{}).Check(context.Background()).Status)

	res := NewArchiveChecker(failingPinger{}).Check(context.Background())
	assert.Equal(t, StatusDegraded, res.Status)
	assert.Contains(t, res.Error, "database locked")
}
