package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clicker_webapp/internal/bot"
	"clicker_webapp/internal/catalog"
	"clicker_webapp/internal/config"
	"clicker_webapp/internal/db"
	httpServer "clicker_webapp/internal/http"
	"clicker_webapp/internal/http/middleware"
	"clicker_webapp/internal/logger"
	"clicker_webapp/internal/repository"
	"clicker_webapp/internal/service"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT()

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	store := catalog.NewStore(
		repository.NewLevelRepository(dbPool),
		repository.NewCharacterRepository(dbPool),
		repository.NewBoosterRepository(dbPool),
		repository.NewRewardRepository(dbPool),
		repository.NewWheelRepository(dbPool),
		repository.NewSettingsRepository(dbPool),
	)

	// One authorized client serves both the membership checks and the
	// admin bot.
	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Fatal("failed to authorize bot", "error", err)
	}
	membership := bot.NewMembershipClient(botAPI)

	var adminBot *bot.AdminBot
	if cfg.AdminBotEnabled && len(cfg.AdminTelegramIDs) > 0 {
		adminService := service.NewAdminService(dbPool, store)
		userService := service.NewUserService(dbPool, store)
		adminBot = bot.NewAdminBot(botAPI, adminService, userService, cfg.AdminTelegramIDs)
		go adminBot.Start()
	}

	r := gin.Default()

	// CORS for production (frontend on different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer.RegisterRoutes(r, dbPool, cfg.BotToken, version, store, membership, httpServer.RouteConfig{
		SyncRateLimit:  cfg.SyncRateLimit,
		SyncRateWindow: time.Duration(cfg.SyncRateWindow) * time.Second,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	if adminBot != nil {
		adminBot.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
