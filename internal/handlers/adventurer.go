package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetMe GET /adventurers/me
func GetMe(c *gin.Context) {
	adventurerID, ok := callerID(c)
	if !ok {
		return
	}

	adv, err := adventurers.GetByID(c.Request.Context(), adventurerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"adventurer": adv})
}

// GetAdventurer GET /adventurers/:username
func GetAdventurer(c *gin.Context) {
	adv, err := adventurers.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}

	badges, err := store.Badges().ListByAdventurer(c.Request.Context(), adv.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"adventurer": adv, "badges": badges})
}

// GetRankProgress GET /adventurers/me/progress
func GetRankProgress(c *gin.Context) {
	adventurerID, ok := callerID(c)
	if !ok {
		return
	}

	progress, err := ranks.Progress(c.Request.Context(), adventurerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// GetLedger GET /adventurers/me/ledger
func GetLedger(c *gin.Context) {
	adventurerID, ok := callerID(c)
	if !ok {
		return
	}

	entries, err := store.Ledger().ListByAdventurer(c.Request.Context(), adventurerID, 50)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// GetMyBadges GET /adventurers/me/badges
func GetMyBadges(c *gin.Context) {
	adventurerID, ok := callerID(c)
	if !ok {
		return
	}

	badges, err := store.Badges().ListByAdventurer(c.Request.Context(), adventurerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"badges": badges})
}

type equipTitleRequest struct {
	Title string `json:"title"`
}

// EquipTitle POST /adventurers/me/title
func EquipTitle(c *gin.Context) {
	adventurerID, ok := callerID(c)
	if !ok {
		return
	}

	var req equipTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required", "kind": "validation"})
		return
	}

	if err := adventurers.EquipTitle(c.Request.Context(), adventurerID, req.Title); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"equipped": req.Title})
}
