package models

import "time"

type BossStatus string

const (
	BossActive      BossStatus = "active"
	BossStabilizing BossStatus = "stabilizing"
	BossDefeated    BossStatus = "defeated"
)

// Boss is a project-scoped health bar damaged by completed quest XP.
// A nil ProjectID makes it a global community boss. Damage only lands
// while the boss is active; the stabilizer worker brings defeated bosses
// back through stabilizing to active.
type Boss struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	ProjectID *uint      `gorm:"index" json:"projectId"`
	Name      string     `json:"name"`
	HPTotal   int        `gorm:"column:hp_total" json:"hpTotal"`
	HPCurrent int        `gorm:"column:hp_current" json:"hpCurrent"`
	Status    BossStatus `gorm:"type:text;default:'active'" json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
