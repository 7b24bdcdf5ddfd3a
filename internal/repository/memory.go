package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/questforge/questforge-backend/internal/models"
)

// MemoryStore is a mutex-guarded in-memory Store used by the engine unit
// tests. Transaction takes the global lock and snapshots all tables, so the
// primary path is atomic and a failing fn rolls everything back.
type MemoryStore struct {
	mu *sync.Mutex
	// true while inside a Transaction; repo calls then skip locking
	inTx bool

	data *memoryData
}

type memoryData struct {
	adventurers map[uint]models.Adventurer
	ledger      []models.XpLedgerEntry
	badges      map[uint][]models.AdventurerBadge
	quests      map[string]models.Quest
	acceptances map[uint]map[string]models.QuestAcceptance
	crates      map[string]models.LootCrate
	bosses      map[uint]models.Boss

	nextAdventurerID uint
	nextAcceptanceID uint
	nextBossID       uint
	nextLedgerID     uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu: &sync.Mutex{},
		data: &memoryData{
			adventurers:      make(map[uint]models.Adventurer),
			badges:           make(map[uint][]models.AdventurerBadge),
			quests:           make(map[string]models.Quest),
			acceptances:      make(map[uint]map[string]models.QuestAcceptance),
			crates:           make(map[string]models.LootCrate),
			bosses:           make(map[uint]models.Boss),
			nextAdventurerID: 1,
			nextAcceptanceID: 1,
			nextBossID:       1,
			nextLedgerID:     1,
		},
	}
}

func (s *MemoryStore) Adventurers() AdventurerRepo { return &memAdventurers{s} }
func (s *MemoryStore) Ledger() LedgerRepo          { return &memLedger{s} }
func (s *MemoryStore) Badges() BadgeRepo           { return &memBadges{s} }
func (s *MemoryStore) Quests() QuestRepo           { return &memQuests{s} }
func (s *MemoryStore) Crates() CrateRepo           { return &memCrates{s} }
func (s *MemoryStore) Bosses() BossRepo            { return &memBosses{s} }

func (s *MemoryStore) Transaction(ctx context.Context, fn func(Store) error) error {
	if s.inTx {
		// nested transactions share the outer one
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := &MemoryStore{mu: s.mu, inTx: true, data: s.data}
	if err := fn(tx); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

func (s *MemoryStore) lock() {
	if !s.inTx {
		s.mu.Lock()
	}
}

func (s *MemoryStore) unlock() {
	if !s.inTx {
		s.mu.Unlock()
	}
}

func (d *memoryData) clone() *memoryData {
	c := &memoryData{
		adventurers:      make(map[uint]models.Adventurer, len(d.adventurers)),
		ledger:           append([]models.XpLedgerEntry(nil), d.ledger...),
		badges:           make(map[uint][]models.AdventurerBadge, len(d.badges)),
		quests:           make(map[string]models.Quest, len(d.quests)),
		acceptances:      make(map[uint]map[string]models.QuestAcceptance, len(d.acceptances)),
		crates:           make(map[string]models.LootCrate, len(d.crates)),
		bosses:           make(map[uint]models.Boss, len(d.bosses)),
		nextAdventurerID: d.nextAdventurerID,
		nextAcceptanceID: d.nextAcceptanceID,
		nextBossID:       d.nextBossID,
		nextLedgerID:     d.nextLedgerID,
	}
	for k, v := range d.adventurers {
		c.adventurers[k] = v
	}
	for k, v := range d.badges {
		c.badges[k] = append([]models.AdventurerBadge(nil), v...)
	}
	for k, v := range d.quests {
		c.quests[k] = v
	}
	for k, v := range d.acceptances {
		inner := make(map[string]models.QuestAcceptance, len(v))
		for ref, qa := range v {
			inner[ref] = qa
		}
		c.acceptances[k] = inner
	}
	for k, v := range d.crates {
		c.crates[k] = v
	}
	for k, v := range d.bosses {
		c.bosses[k] = v
	}
	return c
}

// --- Adventurers ---

type memAdventurers struct {
	s *MemoryStore
}

func (r *memAdventurers) Create(ctx context.Context, a *models.Adventurer) error {
	r.s.lock()
	defer r.s.unlock()
	if a.ID == 0 {
		a.ID = r.s.data.nextAdventurerID
		r.s.data.nextAdventurerID++
	}
	if a.Level == 0 {
		a.Level = 1
	}
	if a.Rank == "" {
		a.Rank = models.RankIron
	}
	r.s.data.adventurers[a.ID] = *a
	return nil
}

func (r *memAdventurers) GetByID(ctx context.Context, id uint) (*models.Adventurer, error) {
	r.s.lock()
	defer r.s.unlock()
	a, ok := r.s.data.adventurers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (r *memAdventurers) GetByUsername(ctx context.Context, username string) (*models.Adventurer, error) {
	r.s.lock()
	defer r.s.unlock()
	for _, a := range r.s.data.adventurers {
		if a.GithubUsername == username {
			out := a
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memAdventurers) GetForUpdate(ctx context.Context, id uint) (*models.Adventurer, error) {
	// the transaction already holds the global lock
	return r.GetByID(ctx, id)
}

func (r *memAdventurers) Save(ctx context.Context, a *models.Adventurer) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.data.adventurers[a.ID]; !ok {
		return ErrNotFound
	}
	r.s.data.adventurers[a.ID] = *a
	return nil
}

func (r *memAdventurers) TopByXP(ctx context.Context, limit int) ([]models.Adventurer, error) {
	r.s.lock()
	defer r.s.unlock()
	out := make([]models.Adventurer, 0, len(r.s.data.adventurers))
	for _, a := range r.s.data.adventurers {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].XPTotal > out[j].XPTotal })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- Ledger ---

type memLedger struct {
	s *MemoryStore
}

func (r *memLedger) Append(ctx context.Context, entry *models.XpLedgerEntry) error {
	r.s.lock()
	defer r.s.unlock()
	entry.ID = r.s.data.nextLedgerID
	r.s.data.nextLedgerID++
	r.s.data.ledger = append(r.s.data.ledger, *entry)
	return nil
}

func (r *memLedger) ListByAdventurer(ctx context.Context, adventurerID uint, limit int) ([]models.XpLedgerEntry, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []models.XpLedgerEntry
	for i := len(r.s.data.ledger) - 1; i >= 0 && len(out) < limit; i-- {
		if r.s.data.ledger[i].AdventurerID == adventurerID {
			out = append(out, r.s.data.ledger[i])
		}
	}
	return out, nil
}

// --- Badges ---

type memBadges struct {
	s *MemoryStore
}

func (r *memBadges) Has(ctx context.Context, adventurerID uint, slug string) (bool, error) {
	r.s.lock()
	defer r.s.unlock()
	for _, b := range r.s.data.badges[adventurerID] {
		if b.BadgeSlug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBadges) Award(ctx context.Context, award *models.AdventurerBadge) error {
	r.s.lock()
	defer r.s.unlock()
	r.s.data.badges[award.AdventurerID] = append(r.s.data.badges[award.AdventurerID], *award)
	return nil
}

func (r *memBadges) ListByAdventurer(ctx context.Context, adventurerID uint) ([]models.AdventurerBadge, error) {
	r.s.lock()
	defer r.s.unlock()
	return append([]models.AdventurerBadge(nil), r.s.data.badges[adventurerID]...), nil
}

// --- Quests ---

type memQuests struct {
	s *MemoryStore
}

func (r *memQuests) GetQuest(ctx context.Context, ref string) (*models.Quest, error) {
	r.s.lock()
	defer r.s.unlock()
	q, ok := r.s.data.quests[ref]
	if !ok {
		return nil, ErrNotFound
	}
	return &q, nil
}

func (r *memQuests) UpsertQuest(ctx context.Context, q *models.Quest) error {
	r.s.lock()
	defer r.s.unlock()
	if existing, ok := r.s.data.quests[q.Ref]; ok {
		q.ID = existing.ID
	} else if q.ID == 0 {
		q.ID = uint(len(r.s.data.quests) + 1)
	}
	r.s.data.quests[q.Ref] = *q
	return nil
}

func (r *memQuests) ListChain(ctx context.Context, chainSlug string) ([]models.Quest, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []models.Quest
	for _, q := range r.s.data.quests {
		if q.ChainSlug == chainSlug {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChainStep < out[j].ChainStep })
	return out, nil
}

func (r *memQuests) GetAcceptance(ctx context.Context, adventurerID uint, ref string) (*models.QuestAcceptance, error) {
	r.s.lock()
	defer r.s.unlock()
	qa, ok := r.s.data.acceptances[adventurerID][ref]
	if !ok {
		return nil, ErrNotFound
	}
	return &qa, nil
}

func (r *memQuests) CreateAcceptance(ctx context.Context, qa *models.QuestAcceptance) error {
	r.s.lock()
	defer r.s.unlock()
	if r.s.data.acceptances[qa.AdventurerID] == nil {
		r.s.data.acceptances[qa.AdventurerID] = make(map[string]models.QuestAcceptance)
	}
	qa.ID = r.s.data.nextAcceptanceID
	r.s.data.nextAcceptanceID++
	r.s.data.acceptances[qa.AdventurerID][qa.QuestRef] = *qa
	return nil
}

func (r *memQuests) SaveAcceptance(ctx context.Context, qa *models.QuestAcceptance) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.data.acceptances[qa.AdventurerID][qa.QuestRef]; !ok {
		return ErrNotFound
	}
	r.s.data.acceptances[qa.AdventurerID][qa.QuestRef] = *qa
	return nil
}

func (r *memQuests) ListAcceptances(ctx context.Context, adventurerID uint) ([]models.QuestAcceptance, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []models.QuestAcceptance
	for _, qa := range r.s.data.acceptances[adventurerID] {
		out = append(out, qa)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memQuests) CountCompleted(ctx context.Context, adventurerID uint) (int64, error) {
	r.s.lock()
	defer r.s.unlock()
	var count int64
	for _, qa := range r.s.data.acceptances[adventurerID] {
		if qa.Status == models.StatusCompleted {
			count++
		}
	}
	return count, nil
}

// --- Crates ---

type memCrates struct {
	s *MemoryStore
}

func (r *memCrates) Create(ctx context.Context, crate *models.LootCrate) error {
	r.s.lock()
	defer r.s.unlock()
	r.s.data.crates[crate.ID] = *crate
	return nil
}

func (r *memCrates) GetByID(ctx context.Context, id string) (*models.LootCrate, error) {
	r.s.lock()
	defer r.s.unlock()
	crate, ok := r.s.data.crates[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &crate, nil
}

func (r *memCrates) Save(ctx context.Context, crate *models.LootCrate) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.data.crates[crate.ID]; !ok {
		return ErrNotFound
	}
	r.s.data.crates[crate.ID] = *crate
	return nil
}

func (r *memCrates) ListByAdventurer(ctx context.Context, adventurerID uint) ([]models.LootCrate, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []models.LootCrate
	for _, crate := range r.s.data.crates {
		if crate.AdventurerID == adventurerID {
			out = append(out, crate)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AwardedAt.After(out[j].AwardedAt) })
	return out, nil
}

// --- Bosses ---

type memBosses struct {
	s *MemoryStore
}

func (r *memBosses) Create(ctx context.Context, boss *models.Boss) error {
	r.s.lock()
	defer r.s.unlock()
	if boss.ID == 0 {
		boss.ID = r.s.data.nextBossID
		r.s.data.nextBossID++
	}
	r.s.data.bosses[boss.ID] = *boss
	return nil
}

func (r *memBosses) ActiveByProject(ctx context.Context, projectID *uint) (*models.Boss, error) {
	r.s.lock()
	defer r.s.unlock()
	for _, boss := range r.s.data.bosses {
		if boss.Status != models.BossActive {
			continue
		}
		if projectID == nil && boss.ProjectID == nil {
			out := boss
			return &out, nil
		}
		if projectID != nil && boss.ProjectID != nil && *boss.ProjectID == *projectID {
			out := boss
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memBosses) Save(ctx context.Context, boss *models.Boss) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.data.bosses[boss.ID]; !ok {
		return ErrNotFound
	}
	r.s.data.bosses[boss.ID] = *boss
	return nil
}

func (r *memBosses) ListByStatus(ctx context.Context, status models.BossStatus) ([]models.Boss, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []models.Boss
	for _, boss := range r.s.data.bosses {
		if boss.Status == status {
			out = append(out, boss)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
