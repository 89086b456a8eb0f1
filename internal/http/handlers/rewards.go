package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ClaimDailyLogin advances the login streak and credits the day's
// reward.
func (h *Handler) ClaimDailyLogin(c *gin.Context) {
	tgID, ok := getTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.RewardService.ClaimDailyLogin(c.Request.Context(), tgID)
	if err != nil {
		respondError(c, err)
		return
	}
	rewardClaims.WithLabelValues("daily_login").Inc()
	c.JSON(http.StatusOK, result)
}

// GetDailyStatus reports which daily claims are still available today.
func (h *Handler) GetDailyStatus(c *gin.Context) {
	tgID, ok := getTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	status, err := h.RewardService.GetDailyStatus(c.Request.Context(), tgID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// ClaimDailyReward credits the fixed once-per-day reward.
func (h *Handler) ClaimDailyReward(c *gin.Context) {
	tgID, ok := getTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.RewardService.ClaimDailyReward(c.Request.Context(), tgID)
	if err != nil {
		respondError(c, err)
		return
	}
	rewardClaims.WithLabelValues("daily_reward").Inc()
	c.JSON(http.StatusOK, result)
}

// ClaimEnergyReplenishment refills energy to the limit, bounded per
// day.
func (h *Handler) ClaimEnergyReplenishment(c *gin.Context) {
	tgID, ok := getTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.RewardService.ClaimEnergyReplenishment(c.Request.Context(), tgID)
	if err != nil {
		respondError(c, err)
		return
	}
	rewardClaims.WithLabelValues("energy_replenishment").Inc()
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// SpinWheel draws a weighted-random wheel item and applies its reward.
func (h *Handler) SpinWheel(c *gin.Context) {
	tgID, ok := getTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.RewardService.SpinWheel(c.Request.Context(), tgID)
	if err != nil {
		respondError(c, err)
		return
	}
	rewardClaims.WithLabelValues("wheel_spin").Inc()
	c.JSON(http.StatusOK, result)
}

// ListTasks returns all tasks with the caller's completion flags.
func (h *Handler) ListTasks(c *gin.Context) {
	tgID, ok := getTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	tasks, err := h.RewardService.ListTasks(c.Request.Context(), tgID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// CompleteTask verifies the task requirement and credits its reward
// exactly once.
func (h *Handler) CompleteTask(c *gin.Context) {
	tgID, ok := getTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || taskID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	result, err := h.RewardService.CompleteTask(c.Request.Context(), tgID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	rewardClaims.WithLabelValues("task").Inc()
	c.JSON(http.StatusOK, result)
}
