package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListCrates GET /crates
func ListCrates(c *gin.Context) {
	adventurerID, ok := callerID(c)
	if !ok {
		return
	}

	list, err := store.Crates().ListByAdventurer(c.Request.Context(), adventurerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"crates": list})
}

// OpenCrate POST /crates/:id/open
func OpenCrate(c *gin.Context) {
	adventurerID, ok := callerID(c)
	if !ok {
		return
	}

	contents, err := crates.OpenCrate(c.Request.Context(), c.Param("id"), adventurerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contents": contents})
}
