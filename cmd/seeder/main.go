package main

import (
	"log"

	"github.com/questforge/questforge-backend/internal/config"
	"github.com/questforge/questforge-backend/internal/database"
	"github.com/questforge/questforge-backend/internal/models"
	"github.com/questforge/questforge-backend/internal/seeds"
)

func main() {
	config.LoadConfig()
	database.Connect()

	log.Println("Running migrations (just in case)...")
	if err := database.DB.AutoMigrate(
		&models.Adventurer{},
		&models.XpLedgerEntry{},
		&models.Badge{},
		&models.AdventurerBadge{},
		&models.Quest{},
		&models.QuestAcceptance{},
		&models.LootCrate{},
		&models.Boss{},
	); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	seeds.SeedBadges()
	seeds.SeedQuests()
	seeds.SeedBosses()

	log.Println("Seeding complete!")
}
