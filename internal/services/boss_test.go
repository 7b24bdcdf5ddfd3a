package services

import (
	"context"
	"testing"

	"github.com/questforge/questforge-backend/internal/models"
	"github.com/questforge/questforge-backend/internal/repository"
	apperrors "github.com/questforge/questforge-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleQuestCompletion_DamagesBoss(t *testing.T) {
	store := repository.NewMemoryStore()
	bosses := NewBossService(store)
	projectID := uint(1)

	boss, err := bosses.Spawn(context.Background(), &projectID, "The Merge Conflict", 2000)
	require.NoError(t, err)

	require.NoError(t, bosses.HandleQuestCompletion(context.Background(), &projectID, 60))

	reloaded, err := bosses.GetActive(context.Background(), &projectID)
	require.NoError(t, err)
	assert.Equal(t, boss.ID, reloaded.ID)
	assert.Equal(t, 1400, reloaded.HPCurrent)
	assert.Equal(t, models.BossActive, reloaded.Status)
}

func TestHandleQuestCompletion_ClampsAndDefeats(t *testing.T) {
	store := repository.NewMemoryStore()
	bosses := NewBossService(store)
	projectID := uint(1)

	_, err := bosses.Spawn(context.Background(), &projectID, "The Merge Conflict", 500)
	require.NoError(t, err)

	// 60 XP * 10 = 600 damage against 500 HP
	require.NoError(t, bosses.HandleQuestCompletion(context.Background(), &projectID, 60))

	_, err = bosses.GetActive(context.Background(), &projectID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	defeated, err := store.Bosses().ListByStatus(context.Background(), models.BossDefeated)
	require.NoError(t, err)
	require.Len(t, defeated, 1)
	assert.Equal(t, 0, defeated[0].HPCurrent)
}

func TestHandleQuestCompletion_NoOps(t *testing.T) {
	store := repository.NewMemoryStore()
	bosses := NewBossService(store)
	projectID := uint(1)

	// no project linkage
	require.NoError(t, bosses.HandleQuestCompletion(context.Background(), nil, 60))
	// no XP
	require.NoError(t, bosses.HandleQuestCompletion(context.Background(), &projectID, 0))
	// no active boss for the project
	require.NoError(t, bosses.HandleQuestCompletion(context.Background(), &projectID, 60))
}

func TestSpawn_Validation(t *testing.T) {
	store := repository.NewMemoryStore()
	bosses := NewBossService(store)

	_, err := bosses.Spawn(context.Background(), nil, "", 100)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = bosses.Spawn(context.Background(), nil, "The Void", 0)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestGlobalBossIsSeparateFromProjectBosses(t *testing.T) {
	store := repository.NewMemoryStore()
	bosses := NewBossService(store)
	projectID := uint(1)

	global, err := bosses.Spawn(context.Background(), nil, "The Backlog Hydra", 1000)
	require.NoError(t, err)
	scoped, err := bosses.Spawn(context.Background(), &projectID, "The Merge Conflict", 1000)
	require.NoError(t, err)

	require.NoError(t, bosses.HandleQuestCompletion(context.Background(), &projectID, 10))

	g, err := bosses.GetActive(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, global.ID, g.ID)
	assert.Equal(t, 1000, g.HPCurrent)

	p, err := bosses.GetActive(context.Background(), &projectID)
	require.NoError(t, err)
	assert.Equal(t, scoped.ID, p.ID)
	assert.Equal(t, 900, p.HPCurrent)
}

func TestStabilize_Cycle(t *testing.T) {
	store := repository.NewMemoryStore()
	bosses := NewBossService(store)
	projectID := uint(1)

	_, err := bosses.Spawn(context.Background(), &projectID, "The Merge Conflict", 100)
	require.NoError(t, err)
	require.NoError(t, bosses.HandleQuestCompletion(context.Background(), &projectID, 10)) // 100 damage

	// first tick flips defeated to stabilizing and regenerates 10%
	require.NoError(t, bosses.Stabilize(context.Background()))
	stabilizing, err := store.Bosses().ListByStatus(context.Background(), models.BossStabilizing)
	require.NoError(t, err)
	require.Len(t, stabilizing, 1)
	assert.Equal(t, 10, stabilizing[0].HPCurrent)

	// eight more ticks: 90 HP regenerated in total, still recovering
	for i := 0; i < 8; i++ {
		require.NoError(t, bosses.Stabilize(context.Background()))
	}
	stabilizing, err = store.Bosses().ListByStatus(context.Background(), models.BossStabilizing)
	require.NoError(t, err)
	require.Len(t, stabilizing, 1)
	assert.Equal(t, 90, stabilizing[0].HPCurrent)

	// final tick tops off and reactivates
	require.NoError(t, bosses.Stabilize(context.Background()))
	boss, err := bosses.GetActive(context.Background(), &projectID)
	require.NoError(t, err)
	assert.Equal(t, 100, boss.HPCurrent)
	assert.Equal(t, models.BossActive, boss.Status)
}
