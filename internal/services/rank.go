package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/questforge/questforge-backend/internal/database"
	"github.com/questforge/questforge-backend/internal/models"
	"github.com/questforge/questforge-backend/internal/repository"
	apperrors "github.com/questforge/questforge-backend/pkg/errors"
)

// RankService derives ranks from completed-quest counts and XP totals
// against the static ladder. Ranks only ever move up through this path.
type RankService struct {
	store repository.Store
}

func NewRankService(store repository.Store) *RankService {
	return &RankService{store: store}
}

// GetRank returns the persisted rank, defaulting to Iron when the stored
// value is empty or unknown.
func (s *RankService) GetRank(ctx context.Context, adventurerID uint) (models.Rank, error) {
	adv, err := s.store.Adventurers().GetByID(ctx, adventurerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperrors.NotFound(fmt.Sprintf("adventurer %d not found", adventurerID))
		}
		return "", err
	}
	if !adv.Rank.IsValid() {
		return models.RankIron, nil
	}
	return adv.Rank, nil
}

// MeetsRequirement reports whether the adventurer's rank ordinal is at
// least the required rank's ordinal.
func (s *RankService) MeetsRequirement(ctx context.Context, adventurerID uint, required models.Rank) (bool, error) {
	current, err := s.GetRank(ctx, adventurerID)
	if err != nil {
		return false, err
	}
	return current.AtLeast(required), nil
}

// RankChange reports the outcome of a recalculation.
type RankChange struct {
	OldRank  models.Rank `json:"oldRank"`
	NewRank  models.Rank `json:"newRank"`
	Promoted bool        `json:"promoted"`
}

// Recalculate walks the ladder ascending and keeps the highest rank whose
// quest-count AND XP thresholds are both met, persisting only on a strict
// upgrade.
func (s *RankService) Recalculate(ctx context.Context, adventurerID uint) (*RankChange, error) {
	var change *RankChange
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		adv, err := tx.Adventurers().GetForUpdate(ctx, adventurerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NotFound(fmt.Sprintf("adventurer %d not found", adventurerID))
			}
			return err
		}

		completed, err := tx.Quests().CountCompleted(ctx, adventurerID)
		if err != nil {
			return err
		}

		current := adv.Rank
		if !current.IsValid() {
			current = models.RankIron
		}

		qualified := models.RankIron
		for _, rung := range models.RankLadder {
			if completed >= int64(rung.QuestsRequired) && adv.XPTotal >= rung.XPRequired {
				qualified = rung.Rank
			}
		}

		change = &RankChange{OldRank: current, NewRank: current}
		if qualified.Ordinal() > current.Ordinal() {
			adv.Rank = qualified
			if err := tx.Adventurers().Save(ctx, adv); err != nil {
				return err
			}
			change.NewRank = qualified
			change.Promoted = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if change.Promoted {
		BestEffort("rank progress cache invalidation", func() error {
			return database.CacheInvalidate(fmt.Sprintf("rank_progress:%d", adventurerID))
		})
	}
	return change, nil
}

// RankProgress describes how far an adventurer is from the next rank.
type RankProgress struct {
	CurrentRank     models.Rank  `json:"current_rank"`
	NextRank        *models.Rank `json:"next_rank"`
	CompletedQuests int64        `json:"completed_quests"`
	TotalXP         int          `json:"total_xp"`
	QuestsNeeded    int64        `json:"quests_needed"`
	XPNeeded        int          `json:"xp_needed"`
	ProgressPercent float64      `json:"progress_percent"`
}

const rankProgressTTL = 30 * time.Second

// Progress computes progress toward the next rank: the mean of the
// quest-count and XP ratios, each capped at 100. At Diamond the next rank
// is nil and progress is 100.
func (s *RankService) Progress(ctx context.Context, adventurerID uint) (*RankProgress, error) {
	cacheKey := fmt.Sprintf("rank_progress:%d", adventurerID)
	var cached RankProgress
	if err := database.CacheGet(cacheKey, &cached); err == nil {
		return &cached, nil
	}

	adv, err := s.store.Adventurers().GetByID(ctx, adventurerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("adventurer %d not found", adventurerID))
		}
		return nil, err
	}

	completed, err := s.store.Quests().CountCompleted(ctx, adventurerID)
	if err != nil {
		return nil, err
	}

	current := adv.Rank
	if !current.IsValid() {
		current = models.RankIron
	}

	progress := &RankProgress{
		CurrentRank:     current,
		CompletedQuests: completed,
		TotalXP:         adv.XPTotal,
	}

	if current == models.MaxRank() {
		progress.ProgressPercent = 100
	} else {
		next := models.RankLadder[current.Ordinal()+1]
		nextRank := next.Rank
		progress.NextRank = &nextRank

		questsNeeded := int64(next.QuestsRequired) - completed
		if questsNeeded < 0 {
			questsNeeded = 0
		}
		xpNeeded := next.XPRequired - adv.XPTotal
		if xpNeeded < 0 {
			xpNeeded = 0
		}
		progress.QuestsNeeded = questsNeeded
		progress.XPNeeded = xpNeeded

		questPct := cappedPercent(float64(completed), float64(next.QuestsRequired))
		xpPct := cappedPercent(float64(adv.XPTotal), float64(next.XPRequired))
		progress.ProgressPercent = (questPct + xpPct) / 2
	}

	BestEffort("rank progress cache set", func() error {
		return database.CacheSet(cacheKey, progress, rankProgressTTL)
	})
	return progress, nil
}

func cappedPercent(have, need float64) float64 {
	if need <= 0 {
		return 100
	}
	pct := have / need * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}
