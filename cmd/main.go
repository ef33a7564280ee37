package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	configs "github.com/curasense/auth-service/config"
	"github.com/curasense/auth-service/internal/handler"
	"github.com/curasense/auth-service/internal/middleware"
	"github.com/curasense/auth-service/internal/repository"
	"github.com/curasense/auth-service/internal/router"
	"github.com/curasense/auth-service/internal/service"
	"github.com/curasense/auth-service/pkg/database"
	"github.com/curasense/auth-service/pkg/logger"
	"github.com/curasense/auth-service/pkg/redis"
	"github.com/curasense/auth-service/pkg/validation"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	if err := logger.InitLogger(config.App.Environment); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
		zap.String("version", version),
	)

	if config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := validation.RegisterCustomRules(); err != nil {
		logger.GetLogger().Fatal("Failed to register validation rules", zap.Error(err))
	}

	db, err := database.NewPostgresDB(database.Config{
		Host:            config.Database.Host,
		Port:            config.Database.Port,
		User:            config.Database.User,
		Password:        config.Database.Password,
		Database:        config.Database.Name,
		SSLMode:         config.Database.SSLMode,
		MaxIdleConns:    config.Database.MaxIdleConns,
		MaxOpenConns:    config.Database.MaxOpenConns,
		ConnMaxLifetime: config.Database.ConnMaxLifetime,
		ConnMaxIdleTime: config.Database.ConnMaxIdleTime,
	})
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	redisClient := redis.NewClient(redis.Config{
		Addr:         config.RedisAddress(),
		Password:     config.Redis.Password,
		DB:           config.Redis.Database,
		Enabled:      config.Redis.Enabled,
		PoolSize:     config.Redis.PoolSize,
		MinIdleConns: config.Redis.MinIdleConns,
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
	})
	defer redisClient.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	resetTokenRepo := repository.NewResetTokenRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// Services
	hasher := service.NewPasswordHasher(config.Security.BcryptCost)
	tokenService := service.NewTokenService(config.JWT.Secret, config.JWT.AccessTokenTTL)
	sessionService := service.NewSessionService(sessionRepo, tokenService, config.JWT.RefreshTokenTTL)
	lockoutGuard := service.NewLockoutGuard(userRepo, config.Security.LockoutThreshold, config.Security.LockoutDuration)
	auditService := service.NewAuditService(auditRepo)
	authService := service.NewAuthService(userRepo, hasher, tokenService, sessionService, lockoutGuard, auditService)
	resetService := service.NewPasswordResetService(resetTokenRepo, userRepo, hasher, auditService, config.Security.ResetTokenTTL)
	profileCache := service.NewProfileCache(redisClient)
	userService := service.NewUserService(userRepo, hasher, sessionService, profileCache, auditService)
	cleanupWorker := service.NewCleanupWorker(sessionRepo, resetTokenRepo, config.Security.CleanupInterval)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, resetService, sessionService, userService, config.Security.CookieSecure)
	userHandler := handler.NewUserHandler(userService)
	adminHandler := handler.NewAdminHandler(cleanupWorker)
	healthHandler := handler.NewHealthHandler(db, redisClient, version)

	jwtMiddleware := middleware.NewJWTMiddleware(authService)

	engine := router.NewRouter(
		authHandler,
		userHandler,
		adminHandler,
		healthHandler,
		jwtMiddleware,
		config,
	).SetupRoutes()

	workerCtx, stopWorker := context.WithCancel(context.Background())
	go cleanupWorker.Run(workerCtx)

	srv := &http.Server{
		Addr:         ":" + config.App.Port,
		Handler:      engine,
		ReadTimeout:  config.App.Timeout,
		WriteTimeout: config.App.Timeout,
	}

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.GetLogger().Info("Shutting down server...")
	stopWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.GetLogger().Error("Forced shutdown", zap.Error(err))
	}

	logger.GetLogger().Info("Server stopped")
}
