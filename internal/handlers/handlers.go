package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/questforge/questforge-backend/internal/middleware"
	"github.com/questforge/questforge-backend/internal/repository"
	"github.com/questforge/questforge-backend/internal/services"
	apperrors "github.com/questforge/questforge-backend/pkg/errors"
	"github.com/questforge/questforge-backend/pkg/logger"
)

// Shared service instances, wired once at startup (and per-test in tests).
var (
	store       repository.Store
	adventurers *services.AdventurerService
	engine      *services.GamificationEngine
	ranks       *services.RankService
	bosses      *services.BossService
	quests      *services.QuestLifecycle
	crates      *services.LootCrateEngine
	board       *services.LeaderboardService
)

// Init wires the engine services onto a Store.
func Init(s repository.Store) {
	store = s
	adventurers = services.NewAdventurerService(s)
	engine = services.NewGamificationEngine(s, services.DefaultBadgeRules())
	ranks = services.NewRankService(s)
	bosses = services.NewBossService(s)
	quests = services.NewQuestLifecycle(s, engine, ranks, bosses)
	crates = services.NewLootCrateEngine(s, engine)
	board = services.NewLeaderboardService(s)
}

// Bosses exposes the boss service for the scheduler wiring in main.
func Bosses() *services.BossService {
	return bosses
}

// callerID pulls the authenticated adventurer id set by the auth middleware.
func callerID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(middleware.ContextAdventurerID)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	id, ok := v.(uint)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return id, true
}

// respondError maps engine errors onto HTTP responses.
func respondError(c *gin.Context, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		c.JSON(appErr.Code, gin.H{"error": appErr.Message, "kind": appErr.Kind})
		return
	}
	logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("unhandled handler error")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
}
