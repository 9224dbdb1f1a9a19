package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nongdanviet/nongdanviet-backend/config"
	"github.com/nongdanviet/nongdanviet-backend/internal/app/controller"
	"github.com/nongdanviet/nongdanviet-backend/internal/app/repository"
	"github.com/nongdanviet/nongdanviet-backend/internal/app/service"
	"github.com/nongdanviet/nongdanviet-backend/internal/db"
	"github.com/nongdanviet/nongdanviet-backend/internal/middleware"
	"github.com/nongdanviet/nongdanviet-backend/internal/realtime"
	"github.com/nongdanviet/nongdanviet-backend/internal/router"
	"github.com/nongdanviet/nongdanviet-backend/internal/scheduler"
	"github.com/nongdanviet/nongdanviet-backend/internal/storage"
	"github.com/nongdanviet/nongdanviet-backend/pkg/logger"
	"github.com/nongdanviet/nongdanviet-backend/pkg/mailer"
	"github.com/nongdanviet/nongdanviet-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting NongDanViet Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis (cache chỉ số độ mặn + thu hồi token); lỗi không chặn khởi động
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, continuing without cache", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer redis.Close()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	verificationRepo := repository.NewVerificationRepository(db.GetDB())
	transactionRepo := repository.NewTransactionRepository(db.GetDB())
	followRepo := repository.NewFollowRepository(db.GetDB())
	salinityRepo := repository.NewSalinityRepository(db.GetDB())
	passwordResetRepo := repository.NewPasswordResetRepository(db.GetDB())

	// Hub cảnh báo thời gian thực
	hub := realtime.NewHub()
	go hub.Run()

	// Shared infrastructure
	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)
	appMailer := mailer.New(cfg.SMTP)

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	verificationService := service.NewVerificationService(verificationRepo, userRepo, transactionRepo)
	followService := service.NewFollowService(followRepo, userRepo)
	salinityService := service.NewSalinityService(
		salinityRepo,
		service.SalinityThresholds{
			Watch:  cfg.Salinity.WatchThreshold,
			Danger: cfg.Salinity.DangerThreshold,
		},
		hub,
	)
	analyticsService := service.NewAnalyticsService(verificationRepo, salinityRepo)
	passwordResetService := service.NewPasswordResetService(passwordResetRepo, userRepo, appMailer)

	// Initialize controllers
	authController := controller.NewAuthController(authService, passwordResetService)
	verificationController := controller.NewVerificationController(verificationService, s3Storage)
	followController := controller.NewFollowController(followService)
	salinityController := controller.NewSalinityController(salinityService)
	analyticsController := controller.NewAnalyticsController(analyticsService)
	uploadController := controller.NewUploadController(s3Storage)
	contactController := controller.NewContactController(appMailer)
	websocketController := controller.NewWebSocketController(hub)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Scheduler: quét trạm đo định kỳ + dọn token hết hạn
	salinityScheduler := scheduler.NewSalinityScheduler(
		salinityService,
		passwordResetService,
		cfg.Salinity.CheckSchedule,
	)
	if err := salinityScheduler.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", err)
	}
	defer salinityScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		verificationController,
		followController,
		salinityController,
		analyticsController,
		uploadController,
		contactController,
		websocketController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
