package models

import "time"

// Quest is a catalog entry describing one unit of work. The engine only
// consumes its ref, XP reward, optional rank gate and optional project link;
// chains are ordered groups of steps loaded by the admin bulk import.
type Quest struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Ref          string    `gorm:"uniqueIndex;type:text" json:"ref"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	XP           int       `json:"xp"`
	RankRequired *Rank     `gorm:"type:text" json:"rankRequired,omitempty"`
	ChainSlug    string    `gorm:"index;type:text" json:"chainSlug"`
	ChainStep    int       `json:"chainStep"`
	ProjectID    *uint     `json:"projectId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AcceptanceStatus is the state variable of one adventurer's engagement with
// one quest ref. Absence of a row means not started.
type AcceptanceStatus string

const (
	StatusAccepted  AcceptanceStatus = "accepted"
	StatusSubmitted AcceptanceStatus = "submitted"
	StatusCompleted AcceptanceStatus = "completed"
	StatusRejected  AcceptanceStatus = "rejected"
)

// QuestAcceptance is one adventurer's attempt at one quest ref.
// Unique per (adventurer_id, quest_ref).
type QuestAcceptance struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	AdventurerID uint             `gorm:"uniqueIndex:idx_adventurer_quest" json:"adventurerId"`
	QuestRef     string           `gorm:"uniqueIndex:idx_adventurer_quest;type:text" json:"questRef"`
	Status       AcceptanceStatus `gorm:"type:text" json:"status"`

	AcceptedAt  time.Time  `json:"acceptedAt"`
	SubmittedAt *time.Time `json:"submittedAt"`
	CompletedAt *time.Time `json:"completedAt"`

	ReviewerID  *uint   `json:"reviewerId"`
	ReviewNotes *string `json:"reviewNotes"`
}
