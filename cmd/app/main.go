package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"gift-collectibles-backend/internal/common/cache"
	"gift-collectibles-backend/internal/common/config"
	"gift-collectibles-backend/internal/common/logger"
	"gift-collectibles-backend/internal/common/middleware"
	"gift-collectibles-backend/internal/features/gift/catalog"
	giftHTTP "gift-collectibles-backend/internal/features/gift/delivery/http"
	giftRepo "gift-collectibles-backend/internal/features/gift/repository/postgres"
	giftService "gift-collectibles-backend/internal/features/gift/service"
	giveawayHTTP "gift-collectibles-backend/internal/features/giveaway/delivery/http"
	giveawayRepo "gift-collectibles-backend/internal/features/giveaway/repository/postgres"
	giveawayService "gift-collectibles-backend/internal/features/giveaway/service"
	"gift-collectibles-backend/internal/platform/postgres"
	"gift-collectibles-backend/internal/platform/redis"
	"gift-collectibles-backend/internal/platform/telegram"
)

func main() {
	cfg := config.Load()
	logger.Init("gift-collectibles-backend", cfg.Debug)

	ctx := context.Background()

	postgresClient, err := postgres.NewClient(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer postgresClient.Close()

	redisClient, err := redis.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	cacheService := cache.NewService(redisClient)

	// Repositories
	giftRepository := giftRepo.NewPostgresRepository(postgresClient.DB())
	giveawayRepository := giveawayRepo.NewPostgresRepository(postgresClient.DB())

	// Trait catalog: remote when configured, static otherwise, cached
	// either way.
	var catalogProvider catalog.Provider
	if cfg.Catalog.BaseURL != "" {
		catalogProvider = catalog.NewHTTPProvider(cfg.Catalog.BaseURL)
	} else {
		catalogProvider = catalog.NewStaticProvider(nil)
		logger.Warn().Msg("No catalog URL configured, upgrades will fail until one is set")
	}
	catalogProvider = catalog.NewCachedProvider(catalogProvider, cacheService, cfg.Catalog.CacheTTL)

	telegramClient := telegram.NewClient(cfg.Telegram.BotToken)
	clock := giveawayService.SystemClock()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Services
	giftSvc := giftService.NewGiftService(giftRepository, catalogProvider, rng)
	giveawaySvc := giveawayService.NewGiveawayService(
		giveawayRepository, telegramClient, clock, cfg.Scheduler.AnnouncementInterval)
	completionSvc := giveawayService.NewCompletionService(
		giveawayRepository, giftRepository, telegramClient, clock, rng)

	scheduler := giveawayService.NewScheduler(
		giveawayRepository, completionSvc, clock,
		cfg.Scheduler.TickInterval, cfg.Scheduler.StaleProcessingAge)
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP surface
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log.Logger))
	router.Use(middleware.ErrorHandler(log.Logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", "init_data"}
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.TelegramInitData(cfg.Telegram.BotToken))
	giftHTTP.NewGiftHandler(giftSvc).RegisterRoutes(v1)
	giveawayHTTP.NewGiveawayHandler(giveawaySvc).RegisterRoutes(v1)

	registerProbes(router, postgresClient, redisClient)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

func registerProbes(router *gin.Engine, pg *postgres.Client, rd *redis.Client) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "gift-collectibles-backend",
		})
	})

	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := pg.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unready",
				"error":  "postgres unavailable",
			})
			return
		}
		if err := rd.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unready",
				"error":  "redis unavailable",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   "gift-collectibles-backend",
		})
	})
}
