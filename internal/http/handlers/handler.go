package handlers

import (
	"errors"
	"net/http"

	"clicker_webapp/internal/catalog"
	"clicker_webapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB             *pgxpool.Pool
	BotToken       string
	Catalog        *catalog.Store
	UserService    *service.UserService
	RewardService  *service.RewardService
	UpgradeService *service.UpgradeService
}

func NewHandler(db *pgxpool.Pool, botToken string, store *catalog.Store, membership service.ChannelMembershipChecker) *Handler {
	return &Handler{
		DB:             db,
		BotToken:       botToken,
		Catalog:        store,
		UserService:    service.NewUserService(db, store),
		RewardService:  service.NewRewardService(db, store, membership),
		UpgradeService: service.NewUpgradeService(db, store),
	}
}

// getTgID извлекает tg_id из контекста Gin
func getTgID(c interface{ Get(string) (any, bool) }) (int64, bool) {
	val, ok := c.Get("tg_id")
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// respondError maps service errors onto HTTP statuses: validation
// rejections are 400, transient/collaborator failures 503.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, service.ErrUserBanned):
		c.JSON(http.StatusForbidden, gin.H{"error": "user is banned"})
	case errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})

	case errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrMaxLevelReached),
		errors.Is(err, service.ErrWrongUnlockOrder),
		errors.Is(err, service.ErrCharacterNotMaxed),
		errors.Is(err, service.ErrCharacterNotOwned),
		errors.Is(err, service.ErrCharacterNotLeveled),
		errors.Is(err, service.ErrAlreadyClaimedToday),
		errors.Is(err, service.ErrEnergyAlreadyFull),
		errors.Is(err, service.ErrReplenishmentTooSoon),
		errors.Is(err, service.ErrReplenishmentLimit),
		errors.Is(err, service.ErrTaskAlreadyCompleted),
		errors.Is(err, service.ErrTaskRequirementsNotMet),
		errors.Is(err, service.ErrClockOutOfTolerance):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrTryAgain),
		errors.Is(err, service.ErrVerificationUnavailable),
		errors.Is(err, service.ErrCatalogMisconfigured),
		errors.Is(err, service.ErrStreakTableExhausted):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
