package http

import (
	"os"
	"strconv"
	"time"

	"clicker_webapp/internal/catalog"
	"clicker_webapp/internal/http/handlers"
	"clicker_webapp/internal/http/middleware"
	"clicker_webapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RouteConfig carries the per-user throttling knobs into the router.
type RouteConfig struct {
	SyncRateLimit  int
	SyncRateWindow time.Duration
}

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, botToken string, version string,
	store *catalog.Store, membership service.ChannelMembershipChecker, rc RouteConfig) {

	h := handlers.NewHandler(db, botToken, store, membership)
	healthHandler := handlers.NewHealthHandler(db, version)

	// read limits from env, with safe defaults
	apiRateLimit := 60
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateLimit = n
		}
	}
	apiRateWindow := time.Minute
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateWindow = time.Duration(n) * time.Second
		}
	}

	authRateLimit := 5
	if v := os.Getenv("AUTH_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			authRateLimit = n
		}
	}
	authRateWindow := time.Minute
	if v := os.Getenv("AUTH_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			authRateWindow = time.Duration(n) * time.Second
		}
	}

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(apiRateLimit, apiRateWindow))

	// Auth
	v1.POST("/auth", middleware.RedisRateLimit(authRateLimit, authRateWindow), h.Auth)

	// Catalog (public, cached)
	v1.GET("/catalog", h.GetCatalog)
	v1.GET("/settings", h.GetSettings)
	v1.GET("/leaderboard", h.Leaderboard)

	// User state
	v1.GET("/user/me", middleware.JWT(), h.Me)
	v1.GET("/user/referrals", middleware.JWT(), h.Referrals)

	// Click sync (per-user throttled on top of the IP limiter)
	syncRL := middleware.UserRateLimit(rc.SyncRateLimit, rc.SyncRateWindow)
	v1.POST("/user/sync", middleware.JWT(), syncRL, h.Sync)

	// Claims
	v1.GET("/user/dailies", middleware.JWT(), h.GetDailyStatus)
	v1.POST("/user/daily-login/claim", middleware.JWT(), h.ClaimDailyLogin)
	v1.POST("/user/daily-reward/claim", middleware.JWT(), h.ClaimDailyReward)
	v1.POST("/user/energy/replenish", middleware.JWT(), h.ClaimEnergyReplenishment)

	// Fortune wheel
	v1.POST("/user/wheel/spin", middleware.JWT(), h.SpinWheel)

	// Tasks
	v1.GET("/tasks", middleware.JWT(), h.ListTasks)
	v1.POST("/tasks/:id/complete", middleware.JWT(), h.CompleteTask)

	// Purchases
	v1.GET("/boosters/status", middleware.JWT(), h.GetBoosterStatus)
	v1.POST("/boosters/upgrade", middleware.JWT(), h.UpgradeBooster)
	v1.POST("/characters/unlock", middleware.JWT(), h.UnlockCharacter)
	v1.POST("/characters/level-up", middleware.JWT(), h.LevelUpCharacter)
	v1.POST("/characters/select", middleware.JWT(), h.SelectCharacter)
}
