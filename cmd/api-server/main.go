package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"manhwahub/database"
	"manhwahub/internal/cache"
	"manhwahub/internal/config"
	"manhwahub/internal/httpapi/handler"
	"manhwahub/internal/httpapi/middleware"
	"manhwahub/internal/httpapi/repository"
	"manhwahub/internal/httpapi/service"
	"manhwahub/internal/ingestion/images"
	"manhwahub/internal/ingestion/reconcile"
	"manhwahub/internal/ingestion/sheets"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("could not connect to database", "error", err)
		os.Exit(1)
	}

	// redis is optional; without it caching is disabled and the sync lock is
	// in-process only
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Error("could not connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
	} else {
		logger.Warn("REDIS_ADDR not set, running without cache")
	}
	refCache := cache.NewReferenceCache(redisClient, time.Duration(cfg.CacheTTL)*time.Second)
	syncLock := cache.NewSyncLock(redisClient)

	// repositories
	manhwaRepo := repository.NewManhwaRepository(db)
	referenceRepo := repository.NewReferenceRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	syncRepo := repository.NewSyncRepo(db)

	// ingestion
	sheetsClient := sheets.NewClient(cfg.SheetsAPIKey, cfg.SheetsID, logger)
	syncer := reconcile.NewSyncer(syncRepo, reconcile.DefaultCategoryAliases, logger)
	imageClient := images.NewClient(cfg.ImageAPIURL, cfg.ImageAPIClientID)
	imageUpdater := images.NewUpdater(manhwaRepo, imageClient, logger)

	// services
	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg)
	manhwaService := service.NewManhwaService(manhwaRepo, referenceRepo, refCache, logger)
	referenceService := service.NewReferenceService(referenceRepo)
	progressService := service.NewProgressService(progressRepo, manhwaRepo)
	syncService := service.NewSyncService(sheetsClient, syncer, imageUpdater, syncLock, refCache, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(logger))
	r.Use(gin.Recovery())

	handler.NewHealthHandler(db).RegisterRoutes(r)

	api := r.Group("/api")
	handler.NewAuthHandler(authService, cfg).RegisterRoutes(api.Group("/auth"))
	handler.NewManhwaHandler(manhwaService).RegisterRoutes(api.Group("/manhwas"))
	handler.NewReferenceHandler(referenceService).RegisterRoutes(api)

	progressGroup := api.Group("/progress", middleware.AuthMiddleware(authService))
	handler.NewProgressHandler(progressService).RegisterRoutes(progressGroup)

	maintenance := api.Group("/", middleware.APIKeyMiddleware(cfg.SyncAPIKey))
	handler.NewSyncHandler(syncService).RegisterRoutes(maintenance)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("server starting", "addr", addr, "env", cfg.GoEnv)
	if err := r.Run(addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(h)
}
