package services

import (
	"context"
	"fmt"
	"time"

	"github.com/questforge/questforge-backend/internal/database"
	"github.com/questforge/questforge-backend/internal/models"
	"github.com/questforge/questforge-backend/internal/repository"
)

const (
	leaderboardTTL   = 10 * time.Second
	defaultBoardSize = 25
)

// LeaderboardEntry is one row of the XP leaderboard.
type LeaderboardEntry struct {
	Position       int         `json:"position"`
	AdventurerID   uint        `json:"adventurerId"`
	GithubUsername string      `json:"githubUsername"`
	DisplayClass   string      `json:"displayClass"`
	XPTotal        int         `json:"xpTotal"`
	Level          int         `json:"level"`
	Rank           models.Rank `json:"rank"`
	EquippedTitle  *string     `json:"equippedTitle,omitempty"`
}

// LeaderboardService ranks adventurers by XP total, with a short-lived
// redis cache in front. XP grants invalidate the cache best-effort.
type LeaderboardService struct {
	store repository.Store
}

func NewLeaderboardService(store repository.Store) *LeaderboardService {
	return &LeaderboardService{store: store}
}

func (s *LeaderboardService) GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultBoardSize
	}

	cacheKey := fmt.Sprintf("leaderboard:top:%d", limit)
	var cached []LeaderboardEntry
	if err := database.CacheGet(cacheKey, &cached); err == nil {
		return cached, nil
	}

	adventurers, err := s.store.Adventurers().TopByXP(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(adventurers))
	for i, a := range adventurers {
		entries = append(entries, LeaderboardEntry{
			Position:       i + 1,
			AdventurerID:   a.ID,
			GithubUsername: a.GithubUsername,
			DisplayClass:   a.DisplayClass,
			XPTotal:        a.XPTotal,
			Level:          a.Level,
			Rank:           a.Rank,
			EquippedTitle:  a.EquippedTitle,
		})
	}

	BestEffort("leaderboard cache set", func() error {
		return database.CacheSet(cacheKey, entries, leaderboardTTL)
	})
	return entries, nil
}
