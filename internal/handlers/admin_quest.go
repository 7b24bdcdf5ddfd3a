package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/questforge/questforge-backend/internal/models"
	"github.com/questforge/questforge-backend/pkg/utils"
)

type questImportStep struct {
	Ref          string       `json:"ref"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	XP           int          `json:"xp"`
	RankRequired *models.Rank `json:"rankRequired"`
	ProjectID    *uint        `json:"projectId"`
}

type questImportRequest struct {
	Chain string            `json:"chain"`
	Steps []questImportStep `json:"steps"`
}

// ImportQuestChains POST /admin/quests/import
// Bulk-loads a quest chain into the catalog: ordered steps with title,
// description, XP and optional rank gate. Existing refs are updated.
func ImportQuestChains(c *gin.Context) {
	var req questImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "kind": "validation"})
		return
	}
	if req.Chain == "" || len(req.Steps) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chain and steps are required", "kind": "validation"})
		return
	}

	chainSlug := utils.Slugify(req.Chain)
	imported := 0
	for i, step := range req.Steps {
		if step.Ref == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "every step needs a ref", "kind": "validation"})
			return
		}
		if step.RankRequired != nil && !step.RankRequired.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown rank " + string(*step.RankRequired), "kind": "validation"})
			return
		}

		quest := &models.Quest{
			Ref:          step.Ref,
			Title:        step.Title,
			Description:  step.Description,
			XP:           step.XP,
			RankRequired: step.RankRequired,
			ChainSlug:    chainSlug,
			ChainStep:    i + 1,
			ProjectID:    step.ProjectID,
		}
		if err := store.Quests().UpsertQuest(c.Request.Context(), quest); err != nil {
			respondError(c, err)
			return
		}
		imported++
	}

	c.JSON(http.StatusOK, gin.H{"chain": chainSlug, "imported": imported})
}

// GetQuestChain GET /quests/chains/:slug
func GetQuestChain(c *gin.Context) {
	steps, err := store.Quests().ListChain(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"steps": steps})
}
