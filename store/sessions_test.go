package store

import (
	"testing"
	"time"

	"github.com/bazaarhq/bazaar-server/database"
	"github.com/stretchr/testify/require"
)

func newTestSessions(t *testing.T) *SessionRepository {
	t.Helper()
	db, err := database.ConnectSessions(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSessionRepository(db)
}

func TestSessionTakeIsOneShot(t *testing.T) {
	repo := newTestSessions(t)

	require.NoError(t, repo.Put("abc", time.Minute))

	ok, err := repo.Take("abc")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.Take("abc")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSessionExpiry(t *testing.T) {
	repo := newTestSessions(t)

	require.NoError(t, repo.Put("stale", -time.Minute))
	ok, err := repo.Take("stale")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPruneExpired(t *testing.T) {
	repo := newTestSessions(t)

	require.NoError(t, repo.Put("stale", -time.Minute))
	require.NoError(t, repo.Put("fresh", time.Minute))

	pruned, err := repo.PruneExpired()
	require.NoError(t, err)
	require.EqualValues(t, 1, pruned)

	ok, err := repo.Take("fresh")
	require.NoError(t, err)
	require.True(t, ok)
}
