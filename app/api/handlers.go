package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/rss-relay/app/rejects"
	"github.com/lysyi3m/rss-relay/app/tasks"
)

func NewHandler(configs ConfigProvider, history *tasks.RunHistory, rejectLog rejects.Log,
	scheduler tasks.TaskSchedulerInterface, dryRun bool) *Handler {
	return &Handler{
		configs:   configs,
		history:   history,
		rejectLog: rejectLog,
		scheduler: scheduler,
		dryRun:    dryRun,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	feedConfig := h.configs.Config()

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"feeds":     len(feedConfig.Feeds),
		"keywords":  len(feedConfig.Keywords),
		"channels":  len(feedConfig.Channels),
		"dry_run":   h.dryRun,
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	response := statsResponse{RunStats: h.history.Stats()}

	if counter, ok := h.rejectLog.(ReasonCounter); ok {
		counts, err := counter.CountByReason(c.Request.Context())
		if err != nil {
			slog.Error("Failed to count reject records", "error", err)
		} else {
			response.RejectsByReason = counts
		}
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) APIListRejects(c *gin.Context) {
	limit := defaultRejectsLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(parsed, maxRejectsLimit)
	}

	records, err := h.rejectLog.List(c.Request.Context(), limit)
	if err != nil {
		slog.Error("Failed to list reject records", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read reject log"})
		return
	}

	if records == nil {
		records = []rejects.Record{}
	}

	c.JSON(http.StatusOK, gin.H{
		"rejects": records,
		"total":   len(records),
	})
}

func (h *Handler) APITriggerRun(c *gin.Context) {
	err := h.scheduler.EnqueueRun(tasks.TriggerAPI)
	if errors.Is(err, tasks.ErrQueueFull) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":   "Run already pending",
			"details": err.Error(),
		})
		return
	}
	if err != nil {
		slog.Error("Error enqueueing pipeline run", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to enqueue run",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Pipeline run enqueued",
	})
}
