package seeds

import (
	"log"

	"github.com/questforge/questforge-backend/internal/database"
	"github.com/questforge/questforge-backend/internal/models"
)

func rank(r models.Rank) *models.Rank { return &r }

// SeedQuests loads a starter quest chain so a fresh install has something
// to accept.
func SeedQuests() {
	log.Println("Seeding starter quest chain...")

	quests := []models.Quest{
		{
			Ref:         "onboarding-1",
			Title:       "First Steps",
			Description: "Claim a good-first-issue and open a pull request.",
			XP:          25,
			ChainSlug:   "onboarding",
			ChainStep:   1,
		},
		{
			Ref:         "onboarding-2",
			Title:       "Ship It",
			Description: "Get your first pull request merged.",
			XP:          50,
			ChainSlug:   "onboarding",
			ChainStep:   2,
		},
		{
			Ref:          "onboarding-3",
			Title:        "Trusted Hands",
			Description:  "Triage and reproduce a reported bug.",
			XP:           75,
			RankRequired: rank(models.RankSilver),
			ChainSlug:    "onboarding",
			ChainStep:    3,
		},
	}

	for _, q := range quests {
		var existing models.Quest
		if err := database.DB.Where("ref = ?", q.Ref).First(&existing).Error; err == nil {
			continue
		}
		if err := database.DB.Create(&q).Error; err != nil {
			log.Printf("   Failed to create quest %s: %v", q.Ref, err)
		} else {
			log.Printf("   Quest defined: %s", q.Ref)
		}
	}
}
