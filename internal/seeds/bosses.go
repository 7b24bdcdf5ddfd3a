package seeds

import (
	"log"

	"github.com/questforge/questforge-backend/internal/database"
	"github.com/questforge/questforge-backend/internal/models"
)

// SeedBosses spawns the global community boss if none exists.
func SeedBosses() {
	var count int64
	database.DB.Model(&models.Boss{}).Where("project_id IS NULL").Count(&count)
	if count > 0 {
		return
	}

	boss := models.Boss{
		Name:      "The Backlog Hydra",
		HPTotal:   100000,
		HPCurrent: 100000,
		Status:    models.BossActive,
	}
	if err := database.DB.Create(&boss).Error; err != nil {
		log.Printf("Failed to spawn global boss: %v", err)
	} else {
		log.Printf("Global boss spawned: %s (%d HP)", boss.Name, boss.HPTotal)
	}
}
