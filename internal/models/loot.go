package models

import "time"

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

type CrateStatus string

const (
	CrateUnopened CrateStatus = "unopened"
	CrateOpened   CrateStatus = "opened"
)

// LootCrate is a randomized reward container. Contents stay null until the
// one-time open; the opened row keeps them for later display.
type LootCrate struct {
	ID           string      `gorm:"primaryKey;type:text" json:"id"`
	AdventurerID uint        `gorm:"index" json:"adventurerId"`
	Rarity       Rarity      `gorm:"type:text" json:"rarity"`
	Source       string      `json:"source"`
	Status       CrateStatus `gorm:"type:text;default:'unopened'" json:"status"`

	ContentsXP    *int    `json:"contentsXp"`
	ContentsBadge *string `gorm:"type:text" json:"contentsBadge"`
	ContentsTitle *string `gorm:"type:text" json:"contentsTitle"`

	AwardedAt time.Time  `json:"awardedAt"`
	OpenedAt  *time.Time `json:"openedAt"`
}
