package services

import (
	"context"
	"testing"
	"time"

	"github.com/questforge/questforge-backend/internal/models"
	"github.com/questforge/questforge-backend/internal/repository"
	apperrors "github.com/questforge/questforge-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOrCreate(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewAdventurerService(store)

	adv, err := svc.ResolveOrCreate(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotZero(t, adv.ID)
	assert.Equal(t, "alice", adv.GithubUsername)
	assert.Equal(t, models.RankIron, adv.Rank)
	assert.Equal(t, 1, adv.Level)
	assert.Equal(t, 0, adv.XPTotal)

	// same username resolves to the same profile
	again, err := svc.ResolveOrCreate(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, adv.ID, again.ID)

	_, err = svc.ResolveOrCreate(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestEquipTitle(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewAdventurerService(store)
	adv := newTestAdventurer(t, store, "alice")

	// no crate dropped this title yet
	err := svc.EquipTitle(context.Background(), adv.ID, "the Legendary")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	// an opened crate with the title on it unlocks equipping
	title := "the Legendary"
	now := time.Now()
	xp := 42
	require.NoError(t, store.Crates().Create(context.Background(), &models.LootCrate{
		ID:            "crate-1",
		AdventurerID:  adv.ID,
		Rarity:        models.RarityLegendary,
		Status:        models.CrateOpened,
		ContentsXP:    &xp,
		ContentsTitle: &title,
		AwardedAt:     now,
		OpenedAt:      &now,
	}))

	require.NoError(t, svc.EquipTitle(context.Background(), adv.ID, "the Legendary"))
	reloaded, _ := store.Adventurers().GetByID(context.Background(), adv.ID)
	require.NotNil(t, reloaded.EquippedTitle)
	assert.Equal(t, "the Legendary", *reloaded.EquippedTitle)

	// someone else's drop does not count
	other := newTestAdventurer(t, store, "bob")
	err = svc.EquipTitle(context.Background(), other.ID, "the Legendary")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}
