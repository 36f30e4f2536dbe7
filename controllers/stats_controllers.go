package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/scan-order/services"
	"github.com/yeremiapane/scan-order/utils"
)

type StatsController struct {
	Stats *services.StatsService
}

func NewStatsController(stats *services.StatsService) *StatsController {
	return &StatsController{Stats: stats}
}

// GetTenantStats returns branch/table counts and today's and this month's revenue.
func (sc *StatsController) GetTenantStats(c *gin.Context) {
	stats, err := sc.Stats.TenantStats(c.Request.Context(), tenantOf(c), c.Param("tenant_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tenant statistics", stats)
}

func (sc *StatsController) GetCashbackSettings(c *gin.Context) {
	settings, err := sc.Stats.CashbackSettings(c.Request.Context(), tenantOf(c), c.Param("tenant_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cashback settings", settings)
}

func (sc *StatsController) UpdateCashbackSettings(c *gin.Context) {
	var req struct {
		CashbackPercent *decimal.Decimal `json:"cashback_percent" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	settings, err := sc.Stats.UpdateCashbackSettings(c.Request.Context(), tenantOf(c), c.Param("tenant_id"), *req.CashbackPercent)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cashback settings updated", settings)
}
