package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"animehub/database"
	"animehub/internal/api/handler"
	"animehub/internal/api/middleware"
	"animehub/internal/api/repository"
	"animehub/internal/api/service"
	"animehub/internal/catalog"
	"animehub/internal/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := context.Background()

	// Database (gorm for the account store, pgx pool for the search query)
	db, err := database.Connect(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	pool, err := database.NewPgxPool(ctx, cfg)
	if err != nil {
		log.Fatalf("could not create pgx pool: %v", err)
	}
	defer pool.Close()

	// Redis backs the rate limiter counters; the API runs without it
	var rdb *redis.Client
	if opts, err := redis.ParseURL(cfg.RedisURL); err != nil {
		logger.Warn("invalid redis url, rate limiting disabled", "error", err)
	} else {
		if cfg.RedisPassword != "" {
			opts.Password = cfg.RedisPassword
		}
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, rate limiting disabled", "error", err)
			rdb = nil
		}
	}

	// Google federated login is optional; without a client id the endpoint
	// rejects every token
	var google service.IdentityVerifier
	if cfg.GoogleClientID != "" {
		google, err = service.NewGoogleVerifier(ctx, cfg.GoogleClientID)
		if err != nil {
			logger.Warn("google login disabled", "error", err)
		}
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	searchRepo := repository.NewUserSearchRepository(pool)

	// Services
	authService := service.NewAuthService(userRepo, refreshTokenRepo, google, cfg)
	listService := service.NewListService(userRepo)
	profileService := service.NewProfileService(userRepo, searchRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, profileService, int64(cfg.AccessTokenTTL.Seconds()))
	userHandler := handler.NewUserHandler(listService, profileService, authService, logger, !cfg.IsProduction())
	catalogHandler := handler.NewCatalogHandler(catalog.NewClient(cfg.CatalogAPIURL), logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	api := r.Group("/api")
	api.Use(middleware.RateLimiter(rdb, cfg.APIRateLimit, cfg.APIRateWindow, "api", logger))

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimiter(rdb, cfg.AuthRateLimit, cfg.AuthRateWindow, "auth", logger))
	authHandler.RegisterRoutes(authGroup)

	userHandler.RegisterRoutes(api.Group("/user"))
	catalogHandler.RegisterRoutes(api.Group("/catalog"))

	r.GET("/api/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("API server listening", "addr", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
