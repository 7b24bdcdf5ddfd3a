package models

import "time"

// Badge is a system badge definition. The unlock rule lives with the
// gamification engine; the definition is display data keyed by slug.
type Badge struct {
	Slug        string `gorm:"primaryKey;type:text" json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"` // Name of the Lucide icon
}

// AdventurerBadge records one earned badge. Unique per (adventurer, slug);
// awarded once and never removed.
type AdventurerBadge struct {
	AdventurerID uint      `gorm:"primaryKey" json:"adventurerId"`
	BadgeSlug    string    `gorm:"primaryKey;type:text" json:"badgeSlug"`
	Name         string    `json:"name"`
	EarnedAt     time.Time `json:"earnedAt"`
}
