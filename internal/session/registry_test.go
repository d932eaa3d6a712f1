// SPDX-License-Identifier: MIT

package session

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Username:     "student1",
		Password:     "secret",
		Slot:         "A",
		CourseCode:   "CSA07",
		PollInterval: 10 * time.Second,
	}
}

func TestCreateAssignsUniqueIDs(t *testing.T) {
	r := NewRegistry()

	// Same user, same wall-clock second: ids must still be pairwise distinct.
	const n = 200
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- r.Create(testConfig())
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool, n)
	for id := range ids {
		require.NotEmpty(t, id)
		require.False(t, seen[id], "duplicate session id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestCreateInitialState(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	r := NewRegistryWithClock(func() time.Time { return now })

	id := r.Create(testConfig())
	s, err := r.Get(id)
	require.NoError(t, err)

	want := Session{
		ID:        id,
		Status:    StatusStarting,
		Message:   "starting session",
		Attempts:  0,
		Active:    true,
		CreatedAt: now,
		Config:    testConfig(),
	}
	if diff := cmp.Diff(want, s, cmpopts.IgnoreFields(Session{}, "LastCheck")); diff != "" {
		t.Fatalf("session snapshot mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, s.LastCheck)
}

func TestGetUnknownID(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetReturnsSnapshot(t *testing.T) {
	r := NewRegistry()
	id := r.Create(testConfig())

	s1, err := r.Get(id)
	require.NoError(t, err)

	require.NoError(t, r.Update(id, func(s *Session) {
		s.Status = StatusChecking
		s.Attempts = 3
	}))

	// The earlier snapshot must be unaffected by the later mutation.
	assert.Equal(t, StatusStarting, s1.Status)
	assert.Equal(t, 0, s1.Attempts)

	s2, err := r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusChecking, s2.Status)
	assert.Equal(t, 3, s2.Attempts)
}

func TestRequestStop(t *testing.T) {
	r := NewRegistry()
	id := r.Create(testConfig())

	assert.True(t, r.RequestStop(id))
	s, err := r.Get(id)
	require.NoError(t, err)
	assert.False(t, s.Active)

	// Stop is a flag write, not a state transition.
	assert.Equal(t, StatusStarting, s.Status)

	assert.False(t, r.RequestStop("unknown"))
}

func TestUpdateRejectedAfterTerminal(t *testing.T) {
	r := NewRegistry()
	id := r.Create(testConfig())

	require.NoError(t, r.Update(id, func(s *Session) {
		s.Status = StatusStopped
		s.Message = "stopped by user"
	}))

	s, err := r.Get(id)
	require.NoError(t, err)
	assert.False(t, s.Active, "terminal transition must clear the active flag")

	// A late write from a confused caller must be dropped.
	require.NoError(t, r.Update(id, func(s *Session) {
		s.Status = StatusChecking
		s.Message = "zombie write"
		s.Attempts = 99
	}))

	s, err = r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusStopped, s.Status)
	assert.Equal(t, "stopped by user", s.Message)
	assert.Equal(t, 0, s.Attempts)
}

func TestListOrderedByCreation(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	r := NewRegistryWithClock(func() time.Time {
		now = now.Add(time.Second)
		return now
	})

	first := r.Create(testConfig())
	second := r.Create(testConfig())
	third := r.Create(testConfig())

	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{first, second, third}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestActiveCount(t *testing.T) {
	r := NewRegistry()
	a := r.Create(testConfig())
	r.Create(testConfig())

	assert.Equal(t, 2, r.ActiveCount())
	r.RequestStop(a)
	assert.Equal(t, 1, r.ActiveCount())
}

func TestConcurrentReadersAndWriter(t *testing.T) {
	r := NewRegistry()
	id := r.Create(testConfig())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			_ = r.Update(id, func(s *Session) {
				s.Attempts++
				now := time.Now()
				s.LastCheck = &now
			})
		}
	}()

	for i := 0; i < 500; i++ {
		s, err := r.Get(id)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, s.Attempts, 0)
	}
	<-done

	s, err := r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 500, s.Attempts)
}
