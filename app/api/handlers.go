package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rpgmp3/rpgstats/app/database"
	"github.com/rpgmp3/rpgstats/app/source"
	"github.com/rpgmp3/rpgstats/app/tasks"
)

const defaultStatsLimit = 20

func NewHandler(configCache *source.ConfigCache, postRepo database.PostRepository,
	sourceRepo database.SourceRepository, statsRepo database.StatsRepository,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		postRepo:    postRepo,
		sourceRepo:  sourceRepo,
		statsRepo:   statsRepo,
		configCache: configCache,
		scheduler:   scheduler,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if postCount, err := h.postRepo.GetPostCount(); err == nil {
		health["posts"] = postCount
	}

	if sourceCount, err := h.sourceRepo.GetSourceCount(); err == nil {
		health["sources"] = sourceCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	summary, err := h.statsRepo.GetSummary()
	if err != nil {
		slog.Error("Database error", "operation", "get_summary", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *Handler) GetGroupStats(c *gin.Context) {
	groups, err := h.statsRepo.TopGroupsByHours(statsLimit(c))
	if err != nil {
		slog.Error("Database error", "operation", "top_groups", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"groups": groups,
		"total":  len(groups),
	})
}

func (h *Handler) GetAuthorStats(c *gin.Context) {
	authors, err := h.statsRepo.TopAuthorsByHours(statsLimit(c))
	if err != nil {
		slog.Error("Database error", "operation", "top_authors", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"authors": authors,
		"total":   len(authors),
	})
}

func (h *Handler) GetSystemStats(c *gin.Context) {
	var systems []database.SystemHours
	var err error

	// Ranking by session count is an alternative view of the same data
	if c.Query("by") == "count" {
		systems, err = h.statsRepo.TopSystemsByCount(statsLimit(c))
	} else {
		systems, err = h.statsRepo.TopSystemsByHours(statsLimit(c))
	}

	if err != nil {
		slog.Error("Database error", "operation", "top_systems", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"systems": systems,
		"total":   len(systems),
	})
}

func (h *Handler) GetCampaignStats(c *gin.Context) {
	campaigns, err := h.statsRepo.TopCampaignsByHours(statsLimit(c))
	if err != nil {
		slog.Error("Database error", "operation", "top_campaigns", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"campaigns": campaigns,
		"total":     len(campaigns),
	})
}

func (h *Handler) GetGroupSystemStats(c *gin.Context) {
	pairs, err := h.statsRepo.TopGroupSystemPairs(statsLimit(c))
	if err != nil {
		slog.Error("Database error", "operation", "top_group_system_pairs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"pairs": pairs,
		"total": len(pairs),
	})
}

func (h *Handler) GetGroupCampaignStats(c *gin.Context) {
	pairs, err := h.statsRepo.TopGroupCampaignPairs(statsLimit(c))
	if err != nil {
		slog.Error("Database error", "operation", "top_group_campaign_pairs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"pairs": pairs,
		"total": len(pairs),
	})
}

func (h *Handler) GetMissingDurations(c *gin.Context) {
	posts, err := h.statsRepo.MissingDurationPosts(statsLimit(c))
	if err != nil {
		slog.Error("Database error", "operation", "missing_durations", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"posts": posts,
		"total": len(posts),
	})
}

func (h *Handler) APIListSources(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	sources := make([]map[string]interface{}, 0, len(configs))

	for _, sourceConfig := range configs {
		sourceInfo := map[string]interface{}{
			"name":             sourceConfig.Name,
			"url":              sourceConfig.URL,
			"type":             sourceConfig.Type,
			"enabled":          sourceConfig.Settings.Enabled,
			"refresh_interval": (time.Duration(sourceConfig.Settings.RefreshInterval) * time.Second).String(),
		}

		if src, err := h.sourceRepo.GetSource(sourceConfig.Name); err == nil && src != nil {
			sourceInfo["last_fetched_at"] = src.LastFetchedAt
			sourceInfo["next_fetch_at"] = src.NextFetchAt
			sourceInfo["updated_at"] = src.UpdatedAt
		}

		sources = append(sources, sourceInfo)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": sources,
		"total":   len(sources),
	})
}

func (h *Handler) APITriggerExtraction(c *gin.Context) {
	if err := h.scheduler.EnqueueExtractPostsTask(); err != nil {
		slog.Error("Error enqueueing extraction task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue extraction task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Extraction task enqueued successfully",
	})
}

func statsLimit(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return defaultStatsLimit
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return defaultStatsLimit
	}

	return limit
}
