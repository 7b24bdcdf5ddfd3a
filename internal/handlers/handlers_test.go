package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/questforge/questforge-backend/internal/config"
	"github.com/questforge/questforge-backend/internal/middleware"
	"github.com/questforge/questforge-backend/internal/models"
	"github.com/questforge/questforge-backend/internal/repository"
	"github.com/questforge/questforge-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTest boots an isolated in-memory SQLite database and wires the
// handler services onto it.
func setupTest(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	config.AppConfig = &config.Config{
		JWTSecret:     "test-secret",
		WebhookSecret: "hook-secret",
		MergeXP:       50,
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Adventurer{},
		&models.XpLedgerEntry{},
		&models.Badge{},
		&models.AdventurerBadge{},
		&models.Quest{},
		&models.QuestAcceptance{},
		&models.LootCrate{},
		&models.Boss{},
	))

	Init(repository.NewGormStore(db))
	return db
}

// testRouter registers the handler routes behind a stub that injects the
// authenticated adventurer id. adventurerID 0 means anonymous.
func testRouter(adventurerID uint) *gin.Engine {
	r := gin.New()
	if adventurerID != 0 {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.ContextAdventurerID, adventurerID)
		})
	}

	api := r.Group("/api")
	api.GET("/leaderboard", GetLeaderboard)
	api.GET("/projects/:id/boss", GetProjectBoss)
	api.GET("/adventurers/:username", GetAdventurer)
	api.GET("/quests/chains/:slug", GetQuestChain)
	api.POST("/webhooks/github", GithubWebhook)

	api.GET("/adventurers/me", GetMe)
	api.GET("/adventurers/me/progress", GetRankProgress)
	api.GET("/adventurers/me/ledger", GetLedger)
	api.GET("/adventurers/me/badges", GetMyBadges)
	api.POST("/adventurers/me/title", EquipTitle)

	api.GET("/quests/mine", GetMyQuests)
	api.POST("/quests/:ref/accept", AcceptQuest)
	api.POST("/quests/:ref/submit", SubmitQuest)
	api.POST("/quests/:ref/complete", CompleteQuest)
	api.POST("/quests/:ref/review", ReviewQuest)

	api.GET("/crates", ListCrates)
	api.POST("/crates/:id/open", OpenCrate)

	api.POST("/admin/quests/import", ImportQuestChains)
	api.POST("/admin/bosses", SpawnBoss)

	return r
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewBuffer(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createAdventurer(t *testing.T, db *gorm.DB, username string, rank models.Rank) *models.Adventurer {
	t.Helper()
	adv := &models.Adventurer{
		GithubUsername: username,
		DisplayClass:   "adventurer",
		Level:          1,
		Rank:           rank,
	}
	require.NoError(t, db.Create(adv).Error)
	return adv
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestQuestFlowOverHTTP(t *testing.T) {
	db := setupTest(t)
	adv := createAdventurer(t, db, "alice", models.RankIron)
	r := testRouter(adv.ID)

	w := doRequest(r, http.MethodPost, "/api/quests/org-repo-42/accept", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(r, http.MethodPost, "/api/quests/org-repo-42/submit", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(r, http.MethodPost, "/api/quests/org-repo-42/complete", gin.H{
		"adventurerId": adv.ID,
		"xp":           150,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reloaded models.Adventurer
	require.NoError(t, db.First(&reloaded, adv.ID).Error)
	assert.Equal(t, 150, reloaded.XPTotal)
	assert.Equal(t, 2, reloaded.Level)

	w = doRequest(r, http.MethodGet, "/api/quests/mine", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	acceptances := body["acceptances"].([]any)
	require.Len(t, acceptances, 1)
	assert.Equal(t, "completed", acceptances[0].(map[string]any)["status"])
}

func TestSubmitWithoutAccept(t *testing.T) {
	db := setupTest(t)
	adv := createAdventurer(t, db, "alice", models.RankIron)
	r := testRouter(adv.ID)

	w := doRequest(r, http.MethodPost, "/api/quests/unknown/submit", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAcceptQuest_RankGated(t *testing.T) {
	db := setupTest(t)
	adv := createAdventurer(t, db, "alice", models.RankIron)
	silver := models.RankSilver
	require.NoError(t, db.Create(&models.Quest{
		Ref:          "gated",
		Title:        "Gated",
		XP:           100,
		RankRequired: &silver,
	}).Error)
	r := testRouter(adv.ID)

	w := doRequest(r, http.MethodPost, "/api/quests/gated/accept", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", decodeBody(t, w)["kind"])
}

func TestCompleteQuest_MissingAdventurerID(t *testing.T) {
	db := setupTest(t)
	adv := createAdventurer(t, db, "alice", models.RankIron)
	r := testRouter(adv.ID)

	w := doRequest(r, http.MethodPost, "/api/quests/x/complete", gin.H{"xp": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReviewQuestOverHTTP(t *testing.T) {
	db := setupTest(t)
	owner := createAdventurer(t, db, "alice", models.RankIron)
	reviewer := createAdventurer(t, db, "bob", models.RankSilver)

	ownerRouter := testRouter(owner.ID)
	w := doRequest(ownerRouter, http.MethodPost, "/api/quests/org-repo-7/accept", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(ownerRouter, http.MethodPost, "/api/quests/org-repo-7/submit", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// owner cannot approve their own work
	w = doRequest(ownerRouter, http.MethodPost, "/api/quests/org-repo-7/review", gin.H{
		"adventurerId": owner.ID,
		"approved":     true,
		"xp":           100,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	reviewerRouter := testRouter(reviewer.ID)
	w = doRequest(reviewerRouter, http.MethodPost, "/api/quests/org-repo-7/review", gin.H{
		"adventurerId": owner.ID,
		"approved":     true,
		"reviewNotes":  "ship it",
		"xp":           100,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reloadedOwner, reloadedReviewer models.Adventurer
	require.NoError(t, db.First(&reloadedOwner, owner.ID).Error)
	require.NoError(t, db.First(&reloadedReviewer, reviewer.ID).Error)
	assert.Equal(t, 100, reloadedOwner.XPTotal)
	assert.Equal(t, 10, reloadedReviewer.XPTotal)
}

func TestOpenCrateOverHTTP(t *testing.T) {
	db := setupTest(t)
	adv := createAdventurer(t, db, "alice", models.RankIron)
	r := testRouter(adv.ID)

	crate, err := crates.AwardCrate(context.Background(), adv.ID, "test")
	require.NoError(t, err)

	w := doRequest(r, http.MethodGet, "/api/crates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["crates"].([]any), 1)

	w = doRequest(r, http.MethodPost, "/api/crates/"+crate.ID+"/open", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	contents := decodeBody(t, w)["contents"].(map[string]any)
	assert.Greater(t, contents["xp"].(float64), float64(0))

	// one-time open
	w = doRequest(r, http.MethodPost, "/api/crates/"+crate.ID+"/open", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invalid_state", decodeBody(t, w)["kind"])
}

func TestOpenCrate_NotYours(t *testing.T) {
	db := setupTest(t)
	owner := createAdventurer(t, db, "alice", models.RankIron)
	thief := createAdventurer(t, db, "mallory", models.RankIron)

	crate, err := crates.AwardCrate(context.Background(), owner.ID, "test")
	require.NoError(t, err)

	r := testRouter(thief.ID)
	w := doRequest(r, http.MethodPost, "/api/crates/"+crate.ID+"/open", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGithubWebhook(t *testing.T) {
	db := setupTest(t)
	r := testRouter(0)

	merged := gin.H{
		"action": "closed",
		"pull_request": gin.H{
			"number": 42,
			"title":  "Add feature",
			"merged": true,
			"user":   gin.H{"login": "newcomer"},
		},
		"repository": gin.H{"full_name": "org/repo"},
	}

	// wrong secret
	b, _ := json.Marshal(merged)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/github", bytes.NewBuffer(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Secret", "wrong")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// closed but not merged is ignored
	notMerged := gin.H{
		"action":       "closed",
		"pull_request": gin.H{"number": 43, "merged": false, "user": gin.H{"login": "newcomer"}},
		"repository":   gin.H{"full_name": "org/repo"},
	}
	b, _ = json.Marshal(notMerged)
	req = httptest.NewRequest(http.MethodPost, "/api/webhooks/github", bytes.NewBuffer(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Secret", "hook-secret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ignored", decodeBody(t, w)["status"])

	// a merged PR creates the profile, grants XP and drops a crate
	b, _ = json.Marshal(merged)
	req = httptest.NewRequest(http.MethodPost, "/api/webhooks/github", bytes.NewBuffer(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Secret", "hook-secret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var adv models.Adventurer
	require.NoError(t, db.First(&adv, "github_username = ?", "newcomer").Error)
	assert.Equal(t, 50, adv.XPTotal)

	var crateCount int64
	require.NoError(t, db.Model(&models.LootCrate{}).Where("adventurer_id = ?", adv.ID).Count(&crateCount).Error)
	assert.Equal(t, int64(1), crateCount)
}

func TestLeaderboardOverHTTP(t *testing.T) {
	db := setupTest(t)
	for username, xp := range map[string]int{"alice": 300, "bob": 900, "carol": 150} {
		adv := createAdventurer(t, db, username, models.RankIron)
		adv.XPTotal = xp
		require.NoError(t, db.Save(adv).Error)
	}
	r := testRouter(0)

	w := doRequest(r, http.MethodGet, "/api/leaderboard?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decodeBody(t, w)["leaderboard"].([]any)
	require.Len(t, entries, 2)
	assert.Equal(t, "bob", entries[0].(map[string]any)["githubUsername"])
	assert.Equal(t, "alice", entries[1].(map[string]any)["githubUsername"])
}

func TestImportAndGetQuestChain(t *testing.T) {
	db := setupTest(t)
	_ = createAdventurer(t, db, "admin", models.RankDiamond)
	r := testRouter(1)

	w := doRequest(r, http.MethodPost, "/api/admin/quests/import", gin.H{
		"chain": "Onboarding Trail",
		"steps": []gin.H{
			{"ref": "trail-1", "title": "First Steps", "xp": 25},
			{"ref": "trail-2", "title": "Getting Serious", "xp": 75, "rankRequired": "Silver"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "onboarding-trail", body["chain"])
	assert.Equal(t, float64(2), body["imported"])

	w = doRequest(r, http.MethodGet, "/api/quests/chains/onboarding-trail", nil)
	require.Equal(t, http.StatusOK, w.Code)
	steps := decodeBody(t, w)["steps"].([]any)
	require.Len(t, steps, 2)
	assert.Equal(t, "trail-1", steps[0].(map[string]any)["ref"])
	assert.Equal(t, "trail-2", steps[1].(map[string]any)["ref"])
}

func TestImportQuestChain_UnknownRank(t *testing.T) {
	setupTest(t)
	r := testRouter(1)

	w := doRequest(r, http.MethodPost, "/api/admin/quests/import", gin.H{
		"chain": "Broken",
		"steps": []gin.H{{"ref": "x", "rankRequired": "mythril"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAdventurerProfile(t *testing.T) {
	db := setupTest(t)
	adv := createAdventurer(t, db, "alice", models.RankSilver)
	require.NoError(t, db.Create(&models.AdventurerBadge{
		AdventurerID: adv.ID,
		BadgeSlug:    "high-five",
		Name:         "High Five",
	}).Error)
	r := testRouter(0)

	w := doRequest(r, http.MethodGet, "/api/adventurers/alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "alice", body["adventurer"].(map[string]any)["githubUsername"])
	assert.Len(t, body["badges"].([]any), 1)

	w = doRequest(r, http.MethodGet, "/api/adventurers/nobody", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRankProgressOverHTTP(t *testing.T) {
	db := setupTest(t)
	adv := createAdventurer(t, db, "alice", models.RankIron)
	adv.XPTotal = 75
	require.NoError(t, db.Save(adv).Error)
	r := testRouter(adv.ID)

	w := doRequest(r, http.MethodGet, "/api/adventurers/me/progress", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Iron", body["current_rank"])
	assert.Equal(t, "Silver", body["next_rank"])
	assert.Equal(t, float64(3), body["quests_needed"])
	assert.Equal(t, float64(75), body["xp_needed"])
}

func TestSpawnAndGetBoss(t *testing.T) {
	setupTest(t)
	r := testRouter(1)

	w := doRequest(r, http.MethodPost, "/api/admin/bosses", gin.H{
		"projectId": 7,
		"name":      "The Backlog Hydra",
		"hpTotal":   1000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doRequest(r, http.MethodGet, "/api/projects/7/boss", nil)
	require.Equal(t, http.StatusOK, w.Code)
	boss := decodeBody(t, w)["boss"].(map[string]any)
	assert.Equal(t, "The Backlog Hydra", boss["name"])
	assert.Equal(t, float64(1000), boss["hpCurrent"])

	w = doRequest(r, http.MethodGet, "/api/projects/99/boss", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodGet, "/api/projects/not-a-number/boss", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnauthenticatedRequests(t *testing.T) {
	setupTest(t)
	r := testRouter(0)

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/adventurers/me"},
		{http.MethodGet, "/api/quests/mine"},
		{http.MethodPost, "/api/quests/x/accept"},
		{http.MethodGet, "/api/crates"},
	} {
		w := doRequest(r, route.method, route.path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}
}
