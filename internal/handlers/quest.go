package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AcceptQuest POST /quests/:ref/accept
func AcceptQuest(c *gin.Context) {
	adventurerID, ok := callerID(c)
	if !ok {
		return
	}

	qa, err := quests.Accept(c.Request.Context(), adventurerID, c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"acceptance": qa})
}

// SubmitQuest POST /quests/:ref/submit
func SubmitQuest(c *gin.Context) {
	adventurerID, ok := callerID(c)
	if !ok {
		return
	}

	qa, err := quests.Submit(c.Request.Context(), adventurerID, c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"acceptance": qa})
}

type completeQuestRequest struct {
	AdventurerID *uint `json:"adventurerId"`
	XP           int   `json:"xp"`
}

// CompleteQuest POST /quests/:ref/complete
// Admin/self-service completion of a submitted quest.
func CompleteQuest(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	var req completeQuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "kind": "validation"})
		return
	}
	if req.AdventurerID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "adventurerId is required", "kind": "validation"})
		return
	}

	result, err := quests.Complete(c.Request.Context(), *req.AdventurerID, c.Param("ref"), req.XP, &caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type reviewQuestRequest struct {
	AdventurerID *uint  `json:"adventurerId"`
	Approved     bool   `json:"approved"`
	ReviewNotes  string `json:"reviewNotes"`
	XP           int    `json:"xp"`
}

// ReviewQuest POST /quests/:ref/review
// Peer review of a submitted quest: approve completes, reject parks it.
func ReviewQuest(c *gin.Context) {
	reviewerID, ok := callerID(c)
	if !ok {
		return
	}

	var req reviewQuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "kind": "validation"})
		return
	}
	if req.AdventurerID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "adventurerId is required", "kind": "validation"})
		return
	}

	result, err := quests.Review(c.Request.Context(), reviewerID, *req.AdventurerID, c.Param("ref"), req.Approved, req.ReviewNotes, req.XP)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetMyQuests GET /quests/mine
func GetMyQuests(c *gin.Context) {
	adventurerID, ok := callerID(c)
	if !ok {
		return
	}

	acceptances, err := store.Quests().ListAcceptances(c.Request.Context(), adventurerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"acceptances": acceptances})
}
