package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/camp-ops-api/internal/middleware"
	"github.com/noah-isme/camp-ops-api/internal/service"
	appErrors "github.com/noah-isme/camp-ops-api/pkg/errors"
	"github.com/noah-isme/camp-ops-api/pkg/response"
)

// AnalyticsHandler exposes schedule analytics and system metrics snapshots.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Schedule godoc
// @Summary Schedule analytics for a session
// @Description Aggregate fill rate, facility utilization, activity distribution, and staffing gaps over the grid
// @Tags Analytics
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id}/analytics/schedule [get]
func (h *AnalyticsHandler) Schedule(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	analytics, cacheHit, err := h.analytics.ScheduleAnalytics(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, analytics, nil, meta)
}

// System godoc
// @Summary System metrics snapshot
// @Description Aggregated request, cache, database, and solver counters
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/system [get]
func (h *AnalyticsHandler) System(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	metrics := h.analytics.SystemMetrics()
	middleware.SetCacheHit(c, false)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, metrics, nil, meta)
}
