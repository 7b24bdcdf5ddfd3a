package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/questforge/questforge-backend/internal/handlers"
	"github.com/questforge/questforge-backend/internal/middleware"
)

// Register wires all API routes onto the /api group.
func Register(api gin.IRouter) {
	// Public
	api.GET("/leaderboard", handlers.GetLeaderboard)
	api.GET("/projects/:id/boss", handlers.GetProjectBoss)
	api.GET("/adventurers/:username", handlers.GetAdventurer)
	api.GET("/quests/chains/:slug", handlers.GetQuestChain)

	// Webhooks (shared-secret, rate limited)
	api.POST("/webhooks/github", middleware.WebhookRateLimit(), handlers.GithubWebhook)

	// Authenticated
	auth := api.Group("")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.GET("/adventurers/me", handlers.GetMe)
		auth.GET("/adventurers/me/progress", handlers.GetRankProgress)
		auth.GET("/adventurers/me/ledger", handlers.GetLedger)
		auth.GET("/adventurers/me/badges", handlers.GetMyBadges)
		auth.POST("/adventurers/me/title", handlers.EquipTitle)

		auth.GET("/quests/mine", handlers.GetMyQuests)
		auth.POST("/quests/:ref/accept", handlers.AcceptQuest)
		auth.POST("/quests/:ref/submit", handlers.SubmitQuest)
		auth.POST("/quests/:ref/complete", handlers.CompleteQuest)
		auth.POST("/quests/:ref/review", handlers.ReviewQuest)

		auth.GET("/crates", handlers.ListCrates)
		auth.POST("/crates/:id/open", handlers.OpenCrate)
	}

	// Admin
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("/quests/import", handlers.ImportQuestChains)
		admin.POST("/bosses", handlers.SpawnBoss)
	}
}
