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

func TestRollRarity_Distribution(t *testing.T) {
	const draws = 100000
	counts := map[models.Rarity]int{}
	for i := 0; i < draws; i++ {
		counts[RollRarity()]++
	}

	expected := map[models.Rarity]float64{
		models.RarityCommon:    0.50,
		models.RarityUncommon:  0.30,
		models.RarityRare:      0.13,
		models.RarityEpic:      0.05,
		models.RarityLegendary: 0.02,
	}
	for rarity, want := range expected {
		got := float64(counts[rarity]) / draws
		assert.InDelta(t, want, got, 0.01, "rarity %s", rarity)
	}
}

func TestRollContents_XPWithinRarityRange(t *testing.T) {
	for rarity, r := range rarityXPRanges {
		for i := 0; i < 200; i++ {
			contents := rollContents(rarity)
			assert.GreaterOrEqual(t, contents.XP, r.Min, "rarity %s", rarity)
			assert.LessOrEqual(t, contents.XP, r.Max, "rarity %s", rarity)
		}
	}
}

func TestRollContents_NoBadgesBelowRare(t *testing.T) {
	for _, rarity := range []models.Rarity{models.RarityCommon, models.RarityUncommon} {
		for i := 0; i < 500; i++ {
			assert.Nil(t, rollContents(rarity).Badge, "rarity %s", rarity)
		}
	}
}

func TestAwardCrate(t *testing.T) {
	store := repository.NewMemoryStore()
	engine := NewLootCrateEngine(store, NewGamificationEngine(store, DefaultBadgeRules()))
	adv := newTestAdventurer(t, store, "alice")

	crate, err := engine.AwardCrate(context.Background(), adv.ID, "quest:org/repo#42")
	require.NoError(t, err)
	assert.NotEmpty(t, crate.ID)
	assert.Equal(t, models.CrateUnopened, crate.Status)
	_, known := rarityXPRanges[crate.Rarity]
	assert.True(t, known, "rolled rarity %q not in the drop table", crate.Rarity)
	assert.Nil(t, crate.OpenedAt)

	_, err = engine.AwardCrate(context.Background(), 999, "quest:none")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestOpenCrate(t *testing.T) {
	store := repository.NewMemoryStore()
	engine := NewLootCrateEngine(store, NewGamificationEngine(store, DefaultBadgeRules()))
	adv := newTestAdventurer(t, store, "alice")

	crate, err := engine.AwardCrate(context.Background(), adv.ID, "quest:org/repo#42")
	require.NoError(t, err)

	contents, err := engine.OpenCrate(context.Background(), crate.ID, adv.ID)
	require.NoError(t, err)
	r := rarityXPRanges[crate.Rarity]
	assert.GreaterOrEqual(t, contents.XP, r.Min)
	assert.LessOrEqual(t, contents.XP, r.Max)
	require.NotNil(t, contents.Award)
	assert.Equal(t, contents.XP, contents.Award.NewXP)

	// contents persisted on the crate row
	reloaded, err := store.Crates().GetByID(context.Background(), crate.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CrateOpened, reloaded.Status)
	require.NotNil(t, reloaded.OpenedAt)
	require.NotNil(t, reloaded.ContentsXP)
	assert.Equal(t, contents.XP, *reloaded.ContentsXP)

	// crate XP lands in the ledger with the crate source
	entries, err := store.Ledger().ListByAdventurer(context.Background(), adv.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.XPSourceCrate, entries[0].SourceType)
}

func TestOpenCrate_SecondOpenFails(t *testing.T) {
	store := repository.NewMemoryStore()
	engine := NewLootCrateEngine(store, NewGamificationEngine(store, DefaultBadgeRules()))
	adv := newTestAdventurer(t, store, "alice")

	crate, err := engine.AwardCrate(context.Background(), adv.ID, "quest:org/repo#42")
	require.NoError(t, err)

	first, err := engine.OpenCrate(context.Background(), crate.ID, adv.ID)
	require.NoError(t, err)

	_, err = engine.OpenCrate(context.Background(), crate.ID, adv.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	assert.Contains(t, err.Error(), "already been opened")

	// the failed open awarded nothing on top of the first
	reloaded, _ := store.Adventurers().GetByID(context.Background(), adv.ID)
	assert.Equal(t, first.XP, reloaded.XPTotal)
}

func TestOpenCrate_ForeignCrateForbidden(t *testing.T) {
	store := repository.NewMemoryStore()
	engine := NewLootCrateEngine(store, NewGamificationEngine(store, DefaultBadgeRules()))
	owner := newTestAdventurer(t, store, "alice")
	thief := newTestAdventurer(t, store, "mallory")

	crate, err := engine.AwardCrate(context.Background(), owner.ID, "quest:org/repo#42")
	require.NoError(t, err)

	_, err = engine.OpenCrate(context.Background(), crate.ID, thief.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	// still sealed for the owner
	reloaded, _ := store.Crates().GetByID(context.Background(), crate.ID)
	assert.Equal(t, models.CrateUnopened, reloaded.Status)
}

func TestOpenCrate_UnknownCrate(t *testing.T) {
	store := repository.NewMemoryStore()
	engine := NewLootCrateEngine(store, NewGamificationEngine(store, DefaultBadgeRules()))
	adv := newTestAdventurer(t, store, "alice")

	_, err := engine.OpenCrate(context.Background(), "no-such-crate", adv.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
