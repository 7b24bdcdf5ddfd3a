package repository

import (
	"context"
	"errors"

	"github.com/questforge/questforge-backend/internal/models"
)

// ErrNotFound is returned by all repos when a record does not exist.
// Services translate it into the caller-facing error taxonomy.
var ErrNotFound = errors.New("record not found")

// Store aggregates the narrow per-entity repositories the engine runs on.
// Transaction yields a Store bound to one atomic transaction; the primary
// path of every engine operation (state transition + XP grant) runs inside
// exactly one Transaction call.
type Store interface {
	Adventurers() AdventurerRepo
	Ledger() LedgerRepo
	Badges() BadgeRepo
	Quests() QuestRepo
	Crates() CrateRepo
	Bosses() BossRepo
	Transaction(ctx context.Context, fn func(Store) error) error
}

type AdventurerRepo interface {
	Create(ctx context.Context, a *models.Adventurer) error
	GetByID(ctx context.Context, id uint) (*models.Adventurer, error)
	GetByUsername(ctx context.Context, username string) (*models.Adventurer, error)
	// GetForUpdate locks the row for the duration of the enclosing
	// transaction so concurrent XP grants for one adventurer serialize.
	GetForUpdate(ctx context.Context, id uint) (*models.Adventurer, error)
	Save(ctx context.Context, a *models.Adventurer) error
	TopByXP(ctx context.Context, limit int) ([]models.Adventurer, error)
}

type LedgerRepo interface {
	Append(ctx context.Context, entry *models.XpLedgerEntry) error
	ListByAdventurer(ctx context.Context, adventurerID uint, limit int) ([]models.XpLedgerEntry, error)
}

type BadgeRepo interface {
	Has(ctx context.Context, adventurerID uint, slug string) (bool, error)
	Award(ctx context.Context, award *models.AdventurerBadge) error
	ListByAdventurer(ctx context.Context, adventurerID uint) ([]models.AdventurerBadge, error)
}

type QuestRepo interface {
	GetQuest(ctx context.Context, ref string) (*models.Quest, error)
	UpsertQuest(ctx context.Context, q *models.Quest) error
	ListChain(ctx context.Context, chainSlug string) ([]models.Quest, error)

	GetAcceptance(ctx context.Context, adventurerID uint, ref string) (*models.QuestAcceptance, error)
	CreateAcceptance(ctx context.Context, qa *models.QuestAcceptance) error
	SaveAcceptance(ctx context.Context, qa *models.QuestAcceptance) error
	ListAcceptances(ctx context.Context, adventurerID uint) ([]models.QuestAcceptance, error)
	CountCompleted(ctx context.Context, adventurerID uint) (int64, error)
}

type CrateRepo interface {
	Create(ctx context.Context, crate *models.LootCrate) error
	GetByID(ctx context.Context, id string) (*models.LootCrate, error)
	Save(ctx context.Context, crate *models.LootCrate) error
	ListByAdventurer(ctx context.Context, adventurerID uint) ([]models.LootCrate, error)
}

type BossRepo interface {
	Create(ctx context.Context, boss *models.Boss) error
	// ActiveByProject returns the single active boss scoped to the project
	// (nil projectID selects the global boss).
	ActiveByProject(ctx context.Context, projectID *uint) (*models.Boss, error)
	Save(ctx context.Context, boss *models.Boss) error
	ListByStatus(ctx context.Context, status models.BossStatus) ([]models.Boss, error)
}
