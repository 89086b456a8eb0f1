package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"clicker_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

// Me reconciles elapsed time and returns the full user state.
func (h *Handler) Me(c *gin.Context) {
	tgID, ok := getTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.UserService.Me(c.Request.Context(), tgID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type SyncRequest struct {
	Clicks     int   `json:"clicks"`
	ClientTime int64 `json:"client_time"` // unix milliseconds
}

// Sync applies a batch of client-reported clicks plus elapsed-time
// regeneration and profit.
func (h *Handler) Sync(c *gin.Context) {
	tgID, ok := getTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req SyncRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if req.Clicks < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "clicks must be non-negative"})
		return
	}

	result, err := h.UserService.Sync(c.Request.Context(), tgID, req.Clicks, time.UnixMilli(req.ClientTime))
	if err != nil {
		if errors.Is(err, service.ErrClockOutOfTolerance) {
			syncRejections.WithLabelValues("clock_out_of_tolerance").Inc()
		}
		respondError(c, err)
		return
	}
	if result.Reason != "" {
		syncRejections.WithLabelValues(result.Reason).Inc()
	}
	c.JSON(http.StatusOK, result)
}

// Referrals lists users brought in by the caller.
func (h *Handler) Referrals(c *gin.Context) {
	tgID, ok := getTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	referred, err := h.UserService.Referrals(c.Request.Context(), tgID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"referrals": referred, "count": len(referred)})
}

// Leaderboard returns the top users by balance.
func (h *Handler) Leaderboard(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	entries, err := h.UserService.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
