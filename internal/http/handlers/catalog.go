package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetCatalog returns the reference data the client renders: level
// ladder, characters with their ladders, booster tiers, daily-login
// table and wheel items. Served from the cache.
func (h *Handler) GetCatalog(c *gin.Context) {
	snap, err := h.Catalog.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"levels":                snap.Levels,
		"characters":            snap.Characters,
		"energy_limit_boosters": snap.EnergyLimitBoosters,
		"click_power_boosters":  snap.ClickPowerBoosters,
		"daily_login_rewards":   snap.DailyLoginRewards,
		"wheel_items":           snap.WheelItems,
	})
}

// GetSettings exposes the client-relevant settings subset.
func (h *Handler) GetSettings(c *gin.Context) {
	snap, err := h.Catalog.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog unavailable"})
		return
	}

	s := snap.Settings
	c.JSON(http.StatusOK, gin.H{
		"telegram_channel_id":            s.TelegramChannelID,
		"max_daily_energy_replenishment": s.MaxDailyEnergyReplenishment,
		"max_offline_profit_hours":       s.MaxOfflineProfitHours,
		"referral_reward":                s.ReferralReward,
		"daily_reward":                   s.DailyReward,
	})
}
