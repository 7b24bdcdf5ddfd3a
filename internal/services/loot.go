package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/questforge/questforge-backend/internal/models"
	"github.com/questforge/questforge-backend/internal/repository"
	apperrors "github.com/questforge/questforge-backend/pkg/errors"
	"github.com/questforge/questforge-backend/pkg/utils"
)

// rarityWeight is one row of the drop table. Order matters: the roll walks
// the cumulative thresholds top to bottom, first match wins.
type rarityWeight struct {
	Rarity models.Rarity
	Weight int
}

// rarityWeights sums to 100.
var rarityWeights = []rarityWeight{
	{models.RarityCommon, 50},
	{models.RarityUncommon, 30},
	{models.RarityRare, 13},
	{models.RarityEpic, 5},
	{models.RarityLegendary, 2},
}

type xpRange struct {
	Min, Max int
}

var rarityXPRanges = map[models.Rarity]xpRange{
	models.RarityCommon:    {10, 30},
	models.RarityUncommon:  {25, 75},
	models.RarityRare:      {50, 200},
	models.RarityEpic:      {150, 500},
	models.RarityLegendary: {400, 1000},
}

// badge pools exist only for rare and above.
var rarityBadgePools = map[models.Rarity][]string{
	models.RarityRare:      {"Treasure Hunter", "Lucky Find"},
	models.RarityEpic:      {"Epic Looter", "Vault Breaker"},
	models.RarityLegendary: {"Legend of the Forge", "Mythic Fortune"},
}

var rarityTitlePools = map[models.Rarity][]string{
	models.RarityCommon:    {"the Curious", "the Persistent"},
	models.RarityUncommon:  {"the Capable", "the Keen"},
	models.RarityRare:      {"the Daring", "the Renowned"},
	models.RarityEpic:      {"the Magnificent", "the Unstoppable"},
	models.RarityLegendary: {"the Legendary", "Forge-Touched"},
}

const (
	badgeDropChance = 0.40
	titleDropChance = 0.25
)

// CrateContents is what an opened crate yielded.
type CrateContents struct {
	XP    int      `json:"xp"`
	Badge *string  `json:"badge,omitempty"`
	Title *string  `json:"title,omitempty"`
	Award *XPAward `json:"award,omitempty"`
}

// LootCrateEngine rolls, awards and opens loot crates.
type LootCrateEngine struct {
	store repository.Store
	xp    *GamificationEngine
}

func NewLootCrateEngine(store repository.Store, xp *GamificationEngine) *LootCrateEngine {
	return &LootCrateEngine{store: store, xp: xp}
}

// RollRarity draws a rarity from the weighted table. Every call is a fresh
// independent draw.
func RollRarity() models.Rarity {
	total := 0
	for _, rw := range rarityWeights {
		total += rw.Weight
	}
	roll := rand.Intn(total)
	acc := 0
	for _, rw := range rarityWeights {
		acc += rw.Weight
		if roll < acc {
			return rw.Rarity
		}
	}
	return rarityWeights[len(rarityWeights)-1].Rarity
}

// AwardCrate rolls a rarity and persists an unopened crate for the adventurer.
func (e *LootCrateEngine) AwardCrate(ctx context.Context, adventurerID uint, source string) (*models.LootCrate, error) {
	if _, err := e.store.Adventurers().GetByID(ctx, adventurerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("adventurer %d not found", adventurerID))
		}
		return nil, err
	}

	crate := &models.LootCrate{
		ID:           utils.GenerateID(),
		AdventurerID: adventurerID,
		Rarity:       RollRarity(),
		Source:       source,
		Status:       models.CrateUnopened,
		AwardedAt:    time.Now(),
	}
	if err := e.store.Crates().Create(ctx, crate); err != nil {
		return nil, err
	}
	return crate, nil
}

// OpenCrate performs the one-time open: generates contents, grants the XP
// through the gamification engine and persists the opened crate, all in one
// transaction. A second open fails, as does opening someone else's crate.
func (e *LootCrateEngine) OpenCrate(ctx context.Context, crateID string, adventurerID uint) (*CrateContents, error) {
	var contents *CrateContents
	err := e.store.Transaction(ctx, func(tx repository.Store) error {
		crate, err := tx.Crates().GetByID(ctx, crateID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NotFound(fmt.Sprintf("crate %s not found", crateID))
			}
			return err
		}
		if crate.AdventurerID != adventurerID {
			return apperrors.Forbidden("this crate belongs to another adventurer")
		}
		if crate.Status == models.CrateOpened {
			return apperrors.InvalidState("crate has already been opened")
		}

		contents = rollContents(crate.Rarity)

		award, err := e.xp.AwardXPIn(ctx, tx, adventurerID, contents.XP, models.XPSourceCrate, crate.ID)
		if err != nil {
			return err
		}
		contents.Award = award

		if contents.Badge != nil {
			if _, err := e.xp.AwardBadge(ctx, tx, adventurerID, *contents.Badge); err != nil {
				return err
			}
		}

		now := time.Now()
		crate.Status = models.CrateOpened
		crate.OpenedAt = &now
		crate.ContentsXP = &contents.XP
		crate.ContentsBadge = contents.Badge
		crate.ContentsTitle = contents.Title
		return tx.Crates().Save(ctx, crate)
	})
	if err != nil {
		return nil, err
	}
	return contents, nil
}

// rollContents generates crate contents for a rarity: XP uniform over the
// rarity range, an independent badge chance (rare and above) and an
// independent title chance.
func rollContents(rarity models.Rarity) *CrateContents {
	r, ok := rarityXPRanges[rarity]
	if !ok {
		r = rarityXPRanges[models.RarityCommon]
	}
	contents := &CrateContents{
		XP: r.Min + rand.Intn(r.Max-r.Min+1),
	}

	if pool, ok := rarityBadgePools[rarity]; ok && len(pool) > 0 && rand.Float64() < badgeDropChance {
		badge := pool[rand.Intn(len(pool))]
		contents.Badge = &badge
	}

	if pool, ok := rarityTitlePools[rarity]; ok && len(pool) > 0 && rand.Float64() < titleDropChance {
		title := pool[rand.Intn(len(pool))]
		contents.Title = &title
	}

	return contents
}
