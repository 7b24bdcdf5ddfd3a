package models

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Adventurer is the gamification profile of one contributor, distinct from
// any authentication account. XP total, level and rank only ever move up
// (negative XP grants clamp the total at zero and never lower the level).
type Adventurer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	GithubUsername string `gorm:"uniqueIndex" json:"githubUsername"`
	DisplayClass   string `gorm:"type:text;default:'adventurer'" json:"displayClass"`

	XPTotal int  `gorm:"column:xp_total;default:0" json:"xpTotal"`
	Level   int  `gorm:"default:1" json:"level"`
	Rank    Rank `gorm:"type:text;default:'Iron'" json:"rank"`

	EquippedTitle *string `json:"equippedTitle"`

	Role Role `gorm:"type:text;default:'USER'" json:"role"`
}

// XpLedgerEntry is the append-only audit trail behind the cached XP total.
// Rows are written once and never updated or deleted.
type XpLedgerEntry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AdventurerID uint      `gorm:"index" json:"adventurerId"`
	Amount       int       `json:"amount"`
	SourceType   string    `gorm:"type:text" json:"sourceType"` // quest, review, crate, merge, ...
	SourceRef    string    `json:"sourceRef"`
	CreatedAt    time.Time `json:"createdAt"`
}

// XP source types used by the engine.
const (
	XPSourceQuest  = "quest"
	XPSourceReview = "review"
	XPSourceCrate  = "crate"
	XPSourceMerge  = "merge"
)
