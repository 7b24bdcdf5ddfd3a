package repository

import (
	"context"
	"errors"

	"github.com/questforge/questforge-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on a *gorm.DB (PostgreSQL in production,
// in-memory SQLite in handler tests).
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Adventurers() AdventurerRepo { return &gormAdventurers{db: s.db} }
func (s *GormStore) Ledger() LedgerRepo          { return &gormLedger{db: s.db} }
func (s *GormStore) Badges() BadgeRepo           { return &gormBadges{db: s.db} }
func (s *GormStore) Quests() QuestRepo           { return &gormQuests{db: s.db} }
func (s *GormStore) Crates() CrateRepo           { return &gormCrates{db: s.db} }
func (s *GormStore) Bosses() BossRepo            { return &gormBosses{db: s.db} }

func (s *GormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// --- Adventurers ---

type gormAdventurers struct {
	db *gorm.DB
}

func (r *gormAdventurers) Create(ctx context.Context, a *models.Adventurer) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *gormAdventurers) GetByID(ctx context.Context, id uint) (*models.Adventurer, error) {
	var a models.Adventurer
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *gormAdventurers) GetByUsername(ctx context.Context, username string) (*models.Adventurer, error) {
	var a models.Adventurer
	if err := r.db.WithContext(ctx).First(&a, "github_username = ?", username).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *gormAdventurers) GetForUpdate(ctx context.Context, id uint) (*models.Adventurer, error) {
	var a models.Adventurer
	// Row lock so concurrent grants for the same adventurer queue up
	// instead of losing updates. Different adventurers do not block.
	// SQLite (tests) has no SELECT FOR UPDATE; its writes serialize anyway.
	tx := r.db.WithContext(ctx)
	if tx.Dialector.Name() == "postgres" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := tx.First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *gormAdventurers) Save(ctx context.Context, a *models.Adventurer) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *gormAdventurers) TopByXP(ctx context.Context, limit int) ([]models.Adventurer, error) {
	var out []models.Adventurer
	err := r.db.WithContext(ctx).Order("xp_total desc").Limit(limit).Find(&out).Error
	return out, err
}

// --- Ledger ---

type gormLedger struct {
	db *gorm.DB
}

func (r *gormLedger) Append(ctx context.Context, entry *models.XpLedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *gormLedger) ListByAdventurer(ctx context.Context, adventurerID uint, limit int) ([]models.XpLedgerEntry, error) {
	var out []models.XpLedgerEntry
	err := r.db.WithContext(ctx).
		Where("adventurer_id = ?", adventurerID).
		Order("created_at desc").Limit(limit).Find(&out).Error
	return out, err
}

// --- Badges ---

type gormBadges struct {
	db *gorm.DB
}

func (r *gormBadges) Has(ctx context.Context, adventurerID uint, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AdventurerBadge{}).
		Where("adventurer_id = ? AND badge_slug = ?", adventurerID, slug).
		Count(&count).Error
	return count > 0, err
}

func (r *gormBadges) Award(ctx context.Context, award *models.AdventurerBadge) error {
	return r.db.WithContext(ctx).Create(award).Error
}

func (r *gormBadges) ListByAdventurer(ctx context.Context, adventurerID uint) ([]models.AdventurerBadge, error) {
	var out []models.AdventurerBadge
	err := r.db.WithContext(ctx).
		Where("adventurer_id = ?", adventurerID).
		Order("earned_at desc").Find(&out).Error
	return out, err
}

// --- Quests ---

type gormQuests struct {
	db *gorm.DB
}

func (r *gormQuests) GetQuest(ctx context.Context, ref string) (*models.Quest, error) {
	var q models.Quest
	if err := r.db.WithContext(ctx).First(&q, "ref = ?", ref).Error; err != nil {
		return nil, translate(err)
	}
	return &q, nil
}

func (r *gormQuests) UpsertQuest(ctx context.Context, q *models.Quest) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "ref"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "description", "xp", "rank_required", "chain_slug", "chain_step", "project_id", "updated_at",
		}),
	}).Create(q).Error
}

func (r *gormQuests) ListChain(ctx context.Context, chainSlug string) ([]models.Quest, error) {
	var out []models.Quest
	err := r.db.WithContext(ctx).
		Where("chain_slug = ?", chainSlug).
		Order("chain_step asc").Find(&out).Error
	return out, err
}

func (r *gormQuests) GetAcceptance(ctx context.Context, adventurerID uint, ref string) (*models.QuestAcceptance, error) {
	var qa models.QuestAcceptance
	if err := r.db.WithContext(ctx).
		First(&qa, "adventurer_id = ? AND quest_ref = ?", adventurerID, ref).Error; err != nil {
		return nil, translate(err)
	}
	return &qa, nil
}

func (r *gormQuests) CreateAcceptance(ctx context.Context, qa *models.QuestAcceptance) error {
	return r.db.WithContext(ctx).Create(qa).Error
}

func (r *gormQuests) SaveAcceptance(ctx context.Context, qa *models.QuestAcceptance) error {
	return r.db.WithContext(ctx).Save(qa).Error
}

func (r *gormQuests) ListAcceptances(ctx context.Context, adventurerID uint) ([]models.QuestAcceptance, error) {
	var out []models.QuestAcceptance
	err := r.db.WithContext(ctx).
		Where("adventurer_id = ?", adventurerID).
		Order("accepted_at desc").Find(&out).Error
	return out, err
}

func (r *gormQuests) CountCompleted(ctx context.Context, adventurerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.QuestAcceptance{}).
		Where("adventurer_id = ? AND status = ?", adventurerID, models.StatusCompleted).
		Count(&count).Error
	return count, err
}

// --- Crates ---

type gormCrates struct {
	db *gorm.DB
}

func (r *gormCrates) Create(ctx context.Context, crate *models.LootCrate) error {
	return r.db.WithContext(ctx).Create(crate).Error
}

func (r *gormCrates) GetByID(ctx context.Context, id string) (*models.LootCrate, error) {
	var crate models.LootCrate
	if err := r.db.WithContext(ctx).First(&crate, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &crate, nil
}

func (r *gormCrates) Save(ctx context.Context, crate *models.LootCrate) error {
	return r.db.WithContext(ctx).Save(crate).Error
}

func (r *gormCrates) ListByAdventurer(ctx context.Context, adventurerID uint) ([]models.LootCrate, error) {
	var out []models.LootCrate
	err := r.db.WithContext(ctx).
		Where("adventurer_id = ?", adventurerID).
		Order("awarded_at desc").Find(&out).Error
	return out, err
}

// --- Bosses ---

type gormBosses struct {
	db *gorm.DB
}

func (r *gormBosses) Create(ctx context.Context, boss *models.Boss) error {
	return r.db.WithContext(ctx).Create(boss).Error
}

func (r *gormBosses) ActiveByProject(ctx context.Context, projectID *uint) (*models.Boss, error) {
	var boss models.Boss
	q := r.db.WithContext(ctx).Where("status = ?", models.BossActive)
	if projectID == nil {
		q = q.Where("project_id IS NULL")
	} else {
		q = q.Where("project_id = ?", *projectID)
	}
	if err := q.First(&boss).Error; err != nil {
		return nil, translate(err)
	}
	return &boss, nil
}

func (r *gormBosses) Save(ctx context.Context, boss *models.Boss) error {
	return r.db.WithContext(ctx).Save(boss).Error
}

func (r *gormBosses) ListByStatus(ctx context.Context, status models.BossStatus) ([]models.Boss, error) {
	var out []models.Boss
	err := r.db.WithContext(ctx).Where("status = ?", status).Find(&out).Error
	return out, err
}
