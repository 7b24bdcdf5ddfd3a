package services

import (
	"context"
	"errors"

	"github.com/questforge/questforge-backend/internal/models"
	"github.com/questforge/questforge-backend/internal/repository"
	apperrors "github.com/questforge/questforge-backend/pkg/errors"
	"github.com/questforge/questforge-backend/pkg/logger"
)

// damagePerXP scales quest XP into boss damage.
const damagePerXP = 10

// BossService applies quest-completion damage to project bosses and runs
// the stabilization cycle that brings defeated bosses back.
type BossService struct {
	store repository.Store
}

func NewBossService(store repository.Store) *BossService {
	return &BossService{store: store}
}

// HandleQuestCompletion damages the project's active boss by xpEarned * 10.
// No-op when there is no project linkage, no XP, or no active boss. HP clamps
// at zero; a boss dropped to zero flips to defeated.
func (s *BossService) HandleQuestCompletion(ctx context.Context, projectID *uint, xpEarned int) error {
	if projectID == nil || xpEarned <= 0 {
		return nil
	}
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		boss, err := tx.Bosses().ActiveByProject(ctx, projectID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			return err
		}

		damage := xpEarned * damagePerXP
		boss.HPCurrent -= damage
		if boss.HPCurrent <= 0 {
			boss.HPCurrent = 0
			boss.Status = models.BossDefeated
		}
		if err := tx.Bosses().Save(ctx, boss); err != nil {
			return err
		}

		logger.Info().
			Uint("boss_id", boss.ID).
			Int("damage", damage).
			Int("hp_current", boss.HPCurrent).
			Str("status", string(boss.Status)).
			Msg("boss damaged")
		return nil
	})
}

// Spawn creates a new active boss for a project (nil = global).
func (s *BossService) Spawn(ctx context.Context, projectID *uint, name string, hpTotal int) (*models.Boss, error) {
	if name == "" {
		return nil, apperrors.Validation("boss name is required")
	}
	if hpTotal <= 0 {
		return nil, apperrors.Validation("boss hp must be positive")
	}
	boss := &models.Boss{
		ProjectID: projectID,
		Name:      name,
		HPTotal:   hpTotal,
		HPCurrent: hpTotal,
		Status:    models.BossActive,
	}
	if err := s.store.Bosses().Create(ctx, boss); err != nil {
		return nil, err
	}
	return boss, nil
}

// GetActive returns the project's active boss.
func (s *BossService) GetActive(ctx context.Context, projectID *uint) (*models.Boss, error) {
	boss, err := s.store.Bosses().ActiveByProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("no active boss for this project")
		}
		return nil, err
	}
	return boss, nil
}

// stabilizeRegenFraction is the share of total HP a stabilizing boss
// regenerates per stabilization tick.
const stabilizeRegenFraction = 0.1

// Stabilize advances the boss recovery cycle one tick: defeated bosses
// enter stabilizing, stabilizing bosses regenerate and reactivate at full
// HP. Invoked periodically by the scheduler.
func (s *BossService) Stabilize(ctx context.Context) error {
	defeated, err := s.store.Bosses().ListByStatus(ctx, models.BossDefeated)
	if err != nil {
		return err
	}
	for i := range defeated {
		boss := defeated[i]
		boss.Status = models.BossStabilizing
		if err := s.store.Bosses().Save(ctx, &boss); err != nil {
			return err
		}
		logger.Info().Uint("boss_id", boss.ID).Msg("boss stabilizing")
	}

	stabilizing, err := s.store.Bosses().ListByStatus(ctx, models.BossStabilizing)
	if err != nil {
		return err
	}
	for i := range stabilizing {
		boss := stabilizing[i]
		regen := int(float64(boss.HPTotal) * stabilizeRegenFraction)
		if regen < 1 {
			regen = 1
		}
		boss.HPCurrent += regen
		if boss.HPCurrent >= boss.HPTotal {
			boss.HPCurrent = boss.HPTotal
			boss.Status = models.BossActive
			logger.Info().Uint("boss_id", boss.ID).Msg("boss back to full strength")
		}
		if err := s.store.Bosses().Save(ctx, &boss); err != nil {
			return err
		}
	}
	return nil
}
