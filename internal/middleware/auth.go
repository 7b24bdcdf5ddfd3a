package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/questforge/questforge-backend/internal/database"
	"github.com/questforge/questforge-backend/internal/models"
	"github.com/questforge/questforge-backend/pkg/utils"
)

// ContextAdventurerID is the gin context key the auth middleware sets.
const ContextAdventurerID = "adventurerId"

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// Verify the adventurer profile still exists
		var adv models.Adventurer
		if err := database.DB.Select("id").First(&adv, "id = ?", claims.AdventurerID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Adventurer not found"})
			c.Abort()
			return
		}

		c.Set(ContextAdventurerID, claims.AdventurerID)
		c.Next()
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		adventurerID, exists := c.Get(ContextAdventurerID)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		var adv models.Adventurer
		if err := database.DB.First(&adv, "id = ?", adventurerID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Adventurer not found"})
			c.Abort()
			return
		}

		if adv.Role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
