package admin

import (
	"strconv"

	"github.com/cellar-next/internal/http/response"
	"github.com/cellar-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetStats 后台总览统计
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.DashboardService.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.stats_failed", err)
		return
	}
	response.Success(c, stats)
}

// GetAnalytics 最近 N 天的分析数据，默认 30 天
func (h *Handler) GetAnalytics(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	data, err := h.DashboardService.Analytics(c.Request.Context(), service.NormalizeDashboardDays(days))
	if err != nil {
		respondError(c, response.CodeInternal, "error.analytics_failed", err)
		return
	}
	response.Success(c, data)
}
