package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/questforge/questforge-backend/internal/models"
	"github.com/questforge/questforge-backend/internal/repository"
	apperrors "github.com/questforge/questforge-backend/pkg/errors"
	"github.com/questforge/questforge-backend/pkg/utils"
)

// LevelForXP computes the level for a total: floor(1 + sqrt(xp/100)).
// Level 1 starts at 0 XP, level 2 at 100, level 3 at 400, and so on.
func LevelForXP(xpTotal int) int {
	if xpTotal < 0 {
		xpTotal = 0
	}
	return int(1 + math.Sqrt(float64(xpTotal)/100))
}

// BadgeRule is a threshold predicate over the post-grant (xp, level) pair.
// Rules are evaluated independently; new badges are additive rows here.
type BadgeRule struct {
	Slug      string
	Name      string
	Qualifies func(xpTotal, level int) bool
}

// DefaultBadgeRules are the stock progression badges.
func DefaultBadgeRules() []BadgeRule {
	return []BadgeRule{
		{
			Slug:      utils.Slugify("High Five"),
			Name:      "High Five",
			Qualifies: func(xp, level int) bool { return level >= 5 },
		},
		{
			Slug:      utils.Slugify("Kilo-XP"),
			Name:      "Kilo-XP",
			Qualifies: func(xp, level int) bool { return xp >= 1000 },
		},
	}
}

// XPAward summarizes one grant for the notification layer.
type XPAward struct {
	OldXP        int      `json:"oldXp"`
	NewXP        int      `json:"newXp"`
	OldLevel     int      `json:"oldLevel"`
	NewLevel     int      `json:"newLevel"`
	LeveledUp    bool     `json:"leveledUp"`
	BadgesEarned []string `json:"badgesEarned"`
}

// GamificationEngine owns the XP ledger, leveling and badge unlocks.
type GamificationEngine struct {
	store repository.Store
	rules []BadgeRule
}

func NewGamificationEngine(store repository.Store, rules []BadgeRule) *GamificationEngine {
	return &GamificationEngine{store: store, rules: rules}
}

// AwardXP grants XP in its own transaction: updates the cached total and
// level under a row lock, appends one ledger entry, and unlocks any newly
// qualifying badges. Negative amounts are allowed (penalties); the total
// clamps at zero and the level never regresses.
func (e *GamificationEngine) AwardXP(ctx context.Context, adventurerID uint, amount int, sourceType, sourceRef string) (*XPAward, error) {
	var award *XPAward
	err := e.store.Transaction(ctx, func(tx repository.Store) error {
		var txErr error
		award, txErr = e.AwardXPIn(ctx, tx, adventurerID, amount, sourceType, sourceRef)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return award, nil
}

// AwardXPIn performs the grant inside a caller-owned transaction, so the
// quest lifecycle can commit the status change and the XP grant atomically.
func (e *GamificationEngine) AwardXPIn(ctx context.Context, tx repository.Store, adventurerID uint, amount int, sourceType, sourceRef string) (*XPAward, error) {
	adv, err := tx.Adventurers().GetForUpdate(ctx, adventurerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("adventurer %d not found", adventurerID))
		}
		return nil, err
	}

	award := &XPAward{
		OldXP:    adv.XPTotal,
		OldLevel: adv.Level,
	}

	newTotal := adv.XPTotal + amount
	if newTotal < 0 {
		newTotal = 0
	}

	newLevel := LevelForXP(newTotal)
	if newLevel < adv.Level {
		// levels never regress, even if a penalty drops the total
		newLevel = adv.Level
	}

	adv.XPTotal = newTotal
	adv.Level = newLevel
	if err := tx.Adventurers().Save(ctx, adv); err != nil {
		return nil, err
	}

	if err := tx.Ledger().Append(ctx, &models.XpLedgerEntry{
		AdventurerID: adventurerID,
		Amount:       amount,
		SourceType:   sourceType,
		SourceRef:    sourceRef,
		CreatedAt:    time.Now(),
	}); err != nil {
		return nil, err
	}

	award.NewXP = newTotal
	award.NewLevel = newLevel
	award.LeveledUp = newLevel > award.OldLevel

	earned, err := e.unlockBadges(ctx, tx, adventurerID, newTotal, newLevel)
	if err != nil {
		return nil, err
	}
	award.BadgesEarned = earned

	return award, nil
}

// unlockBadges awards every rule that newly matches. A badge already held
// is skipped, so repeated grants above a threshold stay idempotent.
func (e *GamificationEngine) unlockBadges(ctx context.Context, tx repository.Store, adventurerID uint, xpTotal, level int) ([]string, error) {
	var earned []string
	for _, rule := range e.rules {
		if !rule.Qualifies(xpTotal, level) {
			continue
		}
		has, err := tx.Badges().Has(ctx, adventurerID, rule.Slug)
		if err != nil {
			return nil, err
		}
		if has {
			continue
		}
		if err := tx.Badges().Award(ctx, &models.AdventurerBadge{
			AdventurerID: adventurerID,
			BadgeSlug:    rule.Slug,
			Name:         rule.Name,
			EarnedAt:     time.Now(),
		}); err != nil {
			return nil, err
		}
		earned = append(earned, rule.Name)
	}
	return earned, nil
}

// AwardBadge grants a specific badge outside the threshold rules (loot crate
// contents). Idempotent like the rule path.
func (e *GamificationEngine) AwardBadge(ctx context.Context, tx repository.Store, adventurerID uint, name string) (bool, error) {
	slug := utils.Slugify(name)
	has, err := tx.Badges().Has(ctx, adventurerID, slug)
	if err != nil || has {
		return false, err
	}
	err = tx.Badges().Award(ctx, &models.AdventurerBadge{
		AdventurerID: adventurerID,
		BadgeSlug:    slug,
		Name:         name,
		EarnedAt:     time.Now(),
	})
	return err == nil, err
}
