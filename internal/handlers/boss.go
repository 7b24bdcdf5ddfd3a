package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetProjectBoss GET /projects/:id/boss
func GetProjectBoss(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id", "kind": "validation"})
		return
	}
	projectID := uint(id)

	boss, err := bosses.GetActive(c.Request.Context(), &projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"boss": boss})
}

type spawnBossRequest struct {
	ProjectID *uint  `json:"projectId"`
	Name      string `json:"name"`
	HPTotal   int    `json:"hpTotal"`
}

// SpawnBoss POST /admin/bosses
func SpawnBoss(c *gin.Context) {
	var req spawnBossRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "kind": "validation"})
		return
	}

	boss, err := bosses.Spawn(c.Request.Context(), req.ProjectID, req.Name, req.HPTotal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"boss": boss})
}
