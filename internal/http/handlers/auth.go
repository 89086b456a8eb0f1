package handlers

import (
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"clicker_webapp/internal/service"
	"clicker_webapp/internal/telegram"

	"github.com/gin-gonic/gin"
)

type AuthRequest struct {
	InitData string `json:"init_data"`
}

// Auth validates Telegram WebApp init data, creates the account on
// first contact (crediting the referrer if a code is present) and
// issues a session token.
func (h *Handler) Auth(c *gin.Context) {
	var req AuthRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if len(req.InitData) > 4096 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "init_data too long"})
		return
	}

	in, ok := h.parseInitData(req.InitData)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or stale telegram data"})
		return
	}
	in.IP = c.ClientIP()
	in.Country = c.GetHeader("CF-IPCountry")

	user, err := h.UserService.GetOrCreate(c.Request.Context(), *in)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := service.GenerateJWT(user.TgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// parseInitData extracts the user payload and optional referral start
// param from validated init data. DEV_MODE=true skips the HMAC check
// for local frontend work.
func (h *Handler) parseInitData(initData string) (*service.AuthInput, bool) {
	values, ok := service.ValidateTelegramInitData(initData, h.BotToken)
	if !ok {
		if os.Getenv("DEV_MODE") != "true" {
			return nil, false
		}
		parsed, err := url.ParseQuery(initData)
		if err != nil {
			return nil, false
		}
		values = parsed
	}

	tgUser, err := telegram.ParseUser(values)
	if err != nil {
		return nil, false
	}

	in := &service.AuthInput{
		TgID:      tgUser.ID,
		FirstName: tgUser.FirstName,
	}
	if tgUser.LastName != "" {
		in.LastName = &tgUser.LastName
	}
	if tgUser.Username != "" {
		in.Username = &tgUser.Username
	}
	if tgUser.PhotoURL != "" {
		in.PhotoURL = &tgUser.PhotoURL
	}

	// Referral links look like t.me/<bot>?startapp=ref_<tg_id>.
	if start := values.Get("start_param"); strings.HasPrefix(start, "ref_") {
		if id, err := strconv.ParseInt(strings.TrimPrefix(start, "ref_"), 10, 64); err == nil && id > 0 {
			in.ReferrerTgID = &id
		}
	}
	return in, true
}
