package handlers

import (
	"net/http"

	"clicker_webapp/internal/domain"

	"github.com/gin-gonic/gin"
)

type BoosterUpgradeRequest struct {
	Type string `json:"type"` // energy_limit | click_power
}

// UpgradeBooster advances one booster type by one tier.
func (h *Handler) UpgradeBooster(c *gin.Context) {
	tgID, ok := getTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req BoosterUpgradeRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	boosterType := domain.BoosterType(req.Type)
	if boosterType != domain.BoosterEnergyLimit && boosterType != domain.BoosterClickPower {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown booster type"})
		return
	}

	user, err := h.UpgradeService.UpgradeBooster(c.Request.Context(), tgID, boosterType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetBoosterStatus returns both booster ladders with upgrade prices.
func (h *Handler) GetBoosterStatus(c *gin.Context) {
	tgID, ok := getTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	status, err := h.UpgradeService.GetBoosterStatus(c.Request.Context(), tgID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

type CharacterRequest struct {
	Rank int `json:"rank"`
}

// UnlockCharacter buys the next character in rank order.
func (h *Handler) UnlockCharacter(c *gin.Context) {
	tgID, ok := getTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CharacterRequest
	if err := c.BindJSON(&req); err != nil || req.Rank <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	user, err := h.UpgradeService.UnlockCharacter(c.Request.Context(), tgID, req.Rank)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// LevelUpCharacter advances the frontier character one ladder level.
func (h *Handler) LevelUpCharacter(c *gin.Context) {
	tgID, ok := getTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CharacterRequest
	if err := c.BindJSON(&req); err != nil || req.Rank <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	user, err := h.UpgradeService.LevelUpCharacter(c.Request.Context(), tgID, req.Rank)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// SelectCharacter switches which owned character contributes profit.
func (h *Handler) SelectCharacter(c *gin.Context) {
	tgID, ok := getTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CharacterRequest
	if err := c.BindJSON(&req); err != nil || req.Rank <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	user, err := h.UpgradeService.SelectCharacter(c.Request.Context(), tgID, req.Rank)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
