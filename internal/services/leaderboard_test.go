package services

import (
	"context"
	"testing"

	"github.com/questforge/questforge-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLeaderboard(t *testing.T) {
	store := repository.NewMemoryStore()
	board := NewLeaderboardService(store)

	for _, seed := range []struct {
		username string
		xp       int
	}{
		{"alice", 300},
		{"bob", 900},
		{"carol", 150},
	} {
		adv := newTestAdventurer(t, store, seed.username)
		adv.XPTotal = seed.xp
		require.NoError(t, store.Adventurers().Save(context.Background(), adv))
	}

	entries, err := board.GetLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "bob", entries[0].GithubUsername)
	assert.Equal(t, 1, entries[0].Position)
	assert.Equal(t, "alice", entries[1].GithubUsername)
	assert.Equal(t, "carol", entries[2].GithubUsername)

	// limit truncates
	entries, err = board.GetLeaderboard(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
