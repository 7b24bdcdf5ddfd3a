package seeds

import (
	"log"

	"github.com/questforge/questforge-backend/internal/database"
	"github.com/questforge/questforge-backend/internal/models"
	"github.com/questforge/questforge-backend/pkg/utils"
)

// SeedBadges loads the display definitions for every badge the engine or
// the loot tables can award.
func SeedBadges() {
	log.Println("Seeding badge definitions...")

	badges := []models.Badge{
		{
			Name:        "High Five",
			Description: "Reached level 5.",
			Icon:        "hand",
		},
		{
			Name:        "Kilo-XP",
			Description: "Earned 1000 total XP.",
			Icon:        "zap",
		},
		{
			Name:        "Treasure Hunter",
			Description: "Found in a rare loot crate.",
			Icon:        "map",
		},
		{
			Name:        "Lucky Find",
			Description: "Found in a rare loot crate.",
			Icon:        "clover",
		},
		{
			Name:        "Epic Looter",
			Description: "Found in an epic loot crate.",
			Icon:        "gem",
		},
		{
			Name:        "Vault Breaker",
			Description: "Found in an epic loot crate.",
			Icon:        "lock-open",
		},
		{
			Name:        "Legend of the Forge",
			Description: "Found in a legendary loot crate.",
			Icon:        "flame",
		},
		{
			Name:        "Mythic Fortune",
			Description: "Found in a legendary loot crate.",
			Icon:        "sparkles",
		},
	}

	for _, b := range badges {
		b.Slug = utils.Slugify(b.Name)

		var existing models.Badge
		if err := database.DB.Where("slug = ?", b.Slug).First(&existing).Error; err == nil {
			continue
		}
		if err := database.DB.Create(&b).Error; err != nil {
			log.Printf("   Failed to create badge %s: %v", b.Name, err)
		} else {
			log.Printf("   Badge defined: %s", b.Name)
		}
	}
}
