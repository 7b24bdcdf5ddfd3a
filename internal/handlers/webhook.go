package handlers

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/questforge/questforge-backend/internal/config"
	"github.com/questforge/questforge-backend/internal/models"
	"github.com/questforge/questforge-backend/internal/services"
	"github.com/questforge/questforge-backend/pkg/logger"
)

type githubWebhookPayload struct {
	Action      string `json:"action"`
	PullRequest struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
		Merged bool   `json:"merged"`
		User   struct {
			Login string `json:"login"`
		} `json:"user"`
	} `json:"pull_request"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
}

// GithubWebhook POST /webhooks/github
// Merged pull requests grant XP and a loot crate, creating the adventurer
// profile on first contact.
func GithubWebhook(c *gin.Context) {
	secret := c.GetHeader("X-Webhook-Secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(config.AppConfig.WebhookSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
		return
	}

	var payload githubWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload", "kind": "validation"})
		return
	}

	if payload.Action != "closed" || !payload.PullRequest.Merged {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	ctx := c.Request.Context()
	adv, err := adventurers.ResolveOrCreate(ctx, payload.PullRequest.User.Login)
	if err != nil {
		respondError(c, err)
		return
	}

	sourceRef := fmt.Sprintf("%s#%d", payload.Repository.FullName, payload.PullRequest.Number)
	award, err := engine.AwardXP(ctx, adv.ID, config.AppConfig.MergeXP, models.XPSourceMerge, sourceRef)
	if err != nil {
		respondError(c, err)
		return
	}

	// merged PRs also drop a crate; a failed drop never fails the webhook
	var crate *models.LootCrate
	services.BestEffort("merge crate award", func() error {
		var crateErr error
		crate, crateErr = crates.AwardCrate(ctx, adv.ID, "pr_merge:"+sourceRef)
		return crateErr
	})

	logger.Info().
		Str("github_username", adv.GithubUsername).
		Str("pr", sourceRef).
		Int("xp", config.AppConfig.MergeXP).
		Msg("merged PR rewarded")

	c.JSON(http.StatusOK, gin.H{
		"adventurer": adv,
		"award":      award,
		"crate":      crate,
	})
}
