package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewStore_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	store, err := NewStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestStore_RecordVisit(t *testing.T) {
	store := setupTestStore(t)

	first := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	v, err := store.RecordVisit("en", "Cat", first)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Count)

	second := first.Add(time.Hour)
	v, err = store.RecordVisit("en", "Cat", second)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Count)

	got, err := store.GetVisit("en", "Cat")
	require.NoError(t, err)
	assert.Equal(t, "Cat", got.Title)
	assert.Equal(t, "en", got.Site)
	assert.Equal(t, 2, got.Count)
	assert.True(t, got.VisitedAt.Equal(second))
}

func TestStore_VisitsAreSiteScoped(t *testing.T) {
	store := setupTestStore(t)

	now := time.Now()
	_, err := store.RecordVisit("en", "Cat", now)
	require.NoError(t, err)
	_, err = store.RecordVisit("hi", "Cat", now)
	require.NoError(t, err)

	en, err := store.GetVisit("en", "Cat")
	require.NoError(t, err)
	assert.Equal(t, 1, en.Count)

	visits, err := store.RecentVisits(0)
	require.NoError(t, err)
	assert.Len(t, visits, 2)
}

func TestStore_GetVisit_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetVisit("en", "Nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_RecentVisits(t *testing.T) {
	store := setupTestStore(t)

	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"Cat", "Dog", "Lion", "Tiger"} {
		_, err := store.RecordVisit("en", title, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}
	// Revisiting moves Cat to the front
	_, err := store.RecordVisit("en", "Cat", base.Add(time.Hour))
	require.NoError(t, err)

	visits, err := store.RecentVisits(3)
	require.NoError(t, err)
	require.Len(t, visits, 3)
	assert.Equal(t, "Cat", visits[0].Title)
	assert.Equal(t, "Tiger", visits[1].Title)
	assert.Equal(t, "Lion", visits[2].Title)

	all, err := store.RecentVisits(0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestStore_DeleteAndClear(t *testing.T) {
	store := setupTestStore(t)

	now := time.Now()
	for _, title := range []string{"Cat", "Dog"} {
		_, err := store.RecordVisit("en", title, now)
		require.NoError(t, err)
	}

	require.NoError(t, store.DeleteVisit("en", "Cat"))
	_, err := store.GetVisit("en", "Cat")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Clear())
	visits, err := store.RecentVisits(0)
	require.NoError(t, err)
	assert.Empty(t, visits)

	_, err = store.RecordVisit("en", "Owl", now)
	assert.NoError(t, err)
}
