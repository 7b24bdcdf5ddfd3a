package main

import (
	"log"
	"os"

	"github.com/questforge/questforge-backend/internal/config"
	"github.com/questforge/questforge-backend/internal/database"
	"github.com/questforge/questforge-backend/internal/models"
)

// Promotes an adventurer to the ADMIN role by GitHub username.
//
//	go run ./cmd/promote_admin <github-username>
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: promote_admin <github-username>")
	}
	username := os.Args[1]

	config.LoadConfig()
	database.Connect()

	var adv models.Adventurer
	if err := database.DB.First(&adv, "github_username = ?", username).Error; err != nil {
		log.Fatalf("Adventurer %q not found: %v", username, err)
	}

	adv.Role = models.RoleAdmin
	if err := database.DB.Save(&adv).Error; err != nil {
		log.Fatalf("Failed to promote %q: %v", username, err)
	}

	log.Printf("Promoted %q (id=%d) to ADMIN", username, adv.ID)
}
