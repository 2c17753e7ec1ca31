package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kortney-lee/feed-engine/app/cfg"
	"github.com/kortney-lee/feed-engine/app/database"
	"github.com/kortney-lee/feed-engine/app/ingest"
)

func NewHandler(coordinator CoordinatorInterface) *Handler {
	return &Handler{coordinator: coordinator}
}

// writeEngineError maps coordinator errors onto HTTP statuses.
func writeEngineError(c *gin.Context, operation string, err error) {
	switch {
	case errors.Is(err, ingest.ErrNotReady):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Engine not initialized yet"})
	case errors.Is(err, ingest.ErrCycleInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "Polling cycle already in progress"})
	default:
		slog.Error("Request failed", "operation", operation, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func intQuery(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}

// GetArticles serves the flattened article view across all active feeds,
// newest first. Filterable by category, country and feed id.
func (h *Handler) GetArticles(c *gin.Context) {
	filter := database.ArticleFilter{
		Category:    c.Query("category"),
		CountryCode: c.Query("country"),
		FeedID:      int64(intQuery(c, "feed_id")),
		Limit:       intQuery(c, "limit"),
	}

	articles, err := h.coordinator.ListArticles(filter)
	if err != nil {
		writeEngineError(c, "list_articles", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": articles,
		"total":    len(articles),
	})
}

// ListFeeds serves the registered feeds with their polling state.
func (h *Handler) ListFeeds(c *gin.Context) {
	filter := database.ListFilter{
		Category:    c.Query("category"),
		CountryCode: c.Query("country"),
		OnlyActive:  c.Query("active") == "true",
		Limit:       intQuery(c, "limit"),
	}

	feeds, err := h.coordinator.ListFeeds(filter)
	if err != nil {
		writeEngineError(c, "list_feeds", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feeds": feeds,
		"total": len(feeds),
	})
}

// RegisterFeed adds a feed URL to the store. Registering a known URL is a
// no-op and returns the existing feed.
func (h *Handler) RegisterFeed(c *gin.Context) {
	var req registerFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid feed URL"})
		return
	}

	f, err := h.coordinator.RegisterFeed(req.URL, req.Title, req.Category, req.CountryCode)
	if err != nil {
		writeEngineError(c, "register_feed", err)
		return
	}

	c.JSON(http.StatusCreated, f)
}

// TriggerPoll runs one polling cycle synchronously and returns its summary.
func (h *Handler) TriggerPoll(c *gin.Context) {
	summary, err := h.coordinator.TriggerPollCycle(c.Request.Context())
	if err != nil {
		writeEngineError(c, "trigger_poll", err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// SeedFeeds registers the curated feed catalogue.
func (h *Handler) SeedFeeds(c *gin.Context) {
	added, existing, err := h.coordinator.SeedCuratedFeeds()
	if err != nil {
		writeEngineError(c, "seed_feeds", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"added":    added,
		"existing": existing,
	})
}

// GetStats serves aggregate feed and article counts.
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.coordinator.FeedStats()
	if err != nil {
		writeEngineError(c, "get_stats", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   cfg.Get().Version,
	}

	if stats, err := h.coordinator.FeedStats(); err == nil {
		health["status"] = "ok"
		health["feeds"] = stats.TotalFeeds
		health["active_feeds"] = stats.ActiveFeeds
	} else if errors.Is(err, ingest.ErrNotReady) {
		health["status"] = "starting"
	} else {
		health["status"] = "degraded"
	}

	c.JSON(http.StatusOK, health)
}
