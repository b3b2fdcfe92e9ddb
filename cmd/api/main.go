package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/peerev/peer-review-api/api/swagger"
	"github.com/peerev/peer-review-api/internal/handler"
	"github.com/peerev/peer-review-api/internal/middleware"
	"github.com/peerev/peer-review-api/internal/repository"
	"github.com/peerev/peer-review-api/internal/service"
	"github.com/peerev/peer-review-api/pkg/cache"
	"github.com/peerev/peer-review-api/pkg/config"
	"github.com/peerev/peer-review-api/pkg/database"
	"github.com/peerev/peer-review-api/pkg/export"
	"github.com/peerev/peer-review-api/pkg/logger"
	corsmiddleware "github.com/peerev/peer-review-api/pkg/middleware/cors"
	reqidmiddleware "github.com/peerev/peer-review-api/pkg/middleware/requestid"
	"github.com/peerev/peer-review-api/pkg/storage"
)

// @title Peer Review API
// @version 1.0.0
// @description Peer review assignment platform with gamified scoring
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	// Redis is optional: the leaderboard falls back to the database when the
	// cache is unavailable.
	var cacheSvc *service.CacheService
	if redisClient, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Leaderboard.CacheTTL, logr, false)
	} else {
		defer redisClient.Close() //nolint:errcheck
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Leaderboard.CacheTTL, logr, cfg.Leaderboard.CacheEnabled)
	}

	store, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	gamificationSvc := service.NewGamificationService(userRepo, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "peer-review-api",
	})
	assignmentSvc := service.NewAssignmentService(assignmentRepo, userRepo, store, validate, logr, service.AssignmentServiceConfig{
		MaxFileSizeBytes: cfg.Uploads.MaxFileSizeBytes,
	})
	reviewSvc := service.NewReviewService(reviewRepo, assignmentRepo, gamificationSvc, validate, logr)
	userSvc := service.NewUserService(userRepo, cacheSvc, logr)
	instructorSvc := service.NewInstructorService(assignmentRepo, reviewRepo, validate, logr)
	adminSvc := service.NewAdminService(userRepo, reviewRepo, validate, logr)

	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.RouterDeps{
		AuthService: authSvc,
		Auth:        handler.NewAuthHandler(authSvc),
		Assignments: handler.NewAssignmentHandler(assignmentSvc),
		Reviews:     handler.NewReviewHandler(reviewSvc),
		Users:       handler.NewUserHandler(userSvc),
		Instructor:  handler.NewInstructorHandler(instructorSvc, export.NewCSVExporter(), export.NewPDFExporter()),
		Admin:       handler.NewAdminHandler(adminSvc),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
