// SPDX-License-Identifier: MIT

package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arms-tools/seatwatch/internal/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func terminalSession(id string, status session.Status) session.Session {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	checked := created.Add(30 * time.Second)
	return session.Session{
		ID:        id,
		Status:    status,
		Message:   "done",
		Attempts:  4,
		LastCheck: &checked,
		CreatedAt: created,
		Config: session.Config{
			Username:   "student1",
			CourseCode: "CSA07",
			Slot:       "A",
		},
	}
}

func TestRecordAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, terminalSession("s1", session.StatusFound)))
	require.NoError(t, store.Record(ctx, terminalSession("s2", session.StatusTimeout)))

	records, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	byID := map[string]Record{}
	for _, r := range records {
		byID[r.ID] = r
	}
	require.Contains(t, byID, "s1")
	assert.Equal(t, "found", byID["s1"].Status)
	assert.Equal(t, "CSA07", byID["s1"].CourseCode)
	assert.Equal(t, 4, byID["s1"].Attempts)
	require.NotNil(t, byID["s1"].LastCheck)
	assert.Equal(t, "timeout", byID["s2"].Status)
}

func TestRecordDuplicateIsError(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, terminalSession("s1", session.StatusStopped)))
	assert.Error(t, store.Record(ctx, terminalSession("s1", session.StatusStopped)))
}

func TestListLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Record(ctx, terminalSession(id, session.StatusStopped)))
	}

	records, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestListEmpty(t *testing.T) {
	store := openTestStore(t)

	records, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestPing(t *testing.T) {
	store := openTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
