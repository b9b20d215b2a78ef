// Package main runs the Pulse reporting HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pulse-reports/backend/config"
	"github.com/pulse-reports/backend/internal/auth"
	"github.com/pulse-reports/backend/internal/exports"
	"github.com/pulse-reports/backend/internal/middleware"
	"github.com/pulse-reports/backend/internal/reports"
	"github.com/pulse-reports/backend/internal/tenants"
	"github.com/pulse-reports/backend/pkg/database"
	"github.com/pulse-reports/backend/pkg/queue"
	"github.com/pulse-reports/backend/pkg/redis"
	"github.com/pulse-reports/backend/pkg/response"
	"github.com/pulse-reports/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	s3Client, err := storage.NewS3(ctx, storage.S3Config{
		Region:               cfg.AWS.Region,
		AccessKeyID:          cfg.AWS.AccessKeyID,
		SecretAccessKey:      cfg.AWS.SecretAccessKey,
		ExportsBucket:        cfg.AWS.ExportsBucket,
		PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
	}, logger)
	if err != nil {
		logger.Fatal("s3", zap.Error(err))
	}

	tokens := auth.NewTokenService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpireHours)*time.Hour)
	revocations := auth.NewRevocationStore(rdb.Client)

	// Auth
	userRepo := auth.NewRepository(pool)
	tenantRepo := tenants.NewRepository(pool)
	authHandler := auth.NewHandler(userRepo, tenantRepo, tokens, revocations, logger)

	// Tenants
	tenantHandler := tenants.NewHandler(tenantRepo)

	// Reports
	reportRepo := reports.NewRepository(pool)
	reportHandler := reports.NewHandler(reportRepo)

	// Exports
	exportRepo := exports.NewRepository(pool)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	exportHandler := exports.NewHandler(exportRepo, jobQueue, s3Client, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/login", authHandler.Login)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(tokens, revocations, logger))
	{
		api.POST("/auth/logout", authHandler.Logout)

		// Tenant of the authenticated user
		api.GET("/tenant", tenantHandler.GetCurrent)
		api.GET("/me", authHandler.Me)

		// Users (admin only)
		api.GET("/users", middleware.RequireAdmin(), authHandler.ListUsers)

		// Reports
		api.GET("/reports", reportHandler.List)
		api.POST("/reports", reportHandler.Create)
		api.GET("/reports/:id", reportHandler.GetByID)
		api.PATCH("/reports/:id", reportHandler.Update)
		api.DELETE("/reports/:id", reportHandler.Delete)

		// Exports
		api.POST("/reports/export", exportHandler.Create)
		api.GET("/exports", exportHandler.List)
		api.GET("/exports/:id/download-url", exportHandler.DownloadURL)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
