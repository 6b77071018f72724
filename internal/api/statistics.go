package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nutritheous/backend/internal/service"
)

type StatisticsHandler struct {
	stats *service.StatisticsService
}

func NewStatisticsHandler(stats *service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{stats: stats}
}

// Daily returns per-day nutrition totals for the requested range.
func (h *StatisticsHandler) Daily(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	start, end, err := parseRange(c.Query("start"), c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	daily, err := h.stats.GetDailyNutritionStats(c.Request.Context(), userID, start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, daily)
}

// Summary returns averages and the meal type distribution for the range.
func (h *StatisticsHandler) Summary(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	start, end, err := parseRange(c.Query("start"), c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.stats.GetNutritionSummary(c.Request.Context(), userID, start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Periodic returns the rolling week/month/half-year summaries.
func (h *StatisticsHandler) Periodic(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.stats.GetPeriodicSummaryStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
