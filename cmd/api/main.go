package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"smart-certify/certify-backend/internal/auth"
	"smart-certify/certify-backend/internal/certificates"
	"smart-certify/certify-backend/internal/config"
	"smart-certify/certify-backend/internal/letters"
	"smart-certify/certify-backend/internal/logging"
	"smart-certify/certify-backend/internal/middleware"
	"smart-certify/certify-backend/internal/notifications"
	"smart-certify/certify-backend/internal/notifications/websocket"
	"smart-certify/certify-backend/internal/requests"
)

const (
	serviceName = "Smart Certify Backend"
	version     = "1.0.0"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := openDatabase(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if cfg.Database.AutoMigrate {
		if err := requests.AutoMigrate(db); err != nil {
			logger.Fatal("Failed to migrate requests", zap.Error(err))
		}
		if err := auth.AutoMigrate(db); err != nil {
			logger.Fatal("Failed to migrate accounts", zap.Error(err))
		}
	}
	logger.Info("Database connection established", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))

	generator, err := certificates.NewGenerator(cfg.Certificates.GeneratorOptions(), logger)
	if err != nil {
		logger.Fatal("Failed to initialize certificate generator", zap.Error(err))
	}

	// Notifications
	publisher := notifications.NewMulti(logger)
	var wsManager *websocket.Manager
	if cfg.Notifications.WebSocket {
		wsManager = websocket.NewManager(cfg.Server.AllowedOrigins, logger)
		defer wsManager.Close()
		publisher.Add("websocket", wsManager)
	}
	if cfg.Notifications.SNSTopicARN != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Storage.Region))
		if err != nil {
			logger.Fatal("Failed to load AWS config", zap.Error(err))
		}
		publisher.Add("sns", notifications.NewSNSPublisher(sns.NewFromConfig(awsCfg), cfg.Notifications.SNSTopicARN))
	}
	logger.Info("Notification channels ready", zap.Strings("channels", publisher.Channels()))

	// Accounts
	tokens, err := auth.NewTokenIssuer(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	if err != nil {
		logger.Fatal("Failed to initialize token issuer", zap.Error(err))
	}
	authService := auth.NewService(auth.NewRepository(db), tokens, cfg.Security.BcryptCost, logger)
	authHandler := auth.NewHandler(authService, logger)

	// Certificate requests
	requestService := requests.NewService(requests.NewRepository(db), generator, publisher, logger)
	requestHandler := requests.NewHandler(requestService, logger)

	letterHandler := letters.NewHandler(newDrafter(cfg.Letters, logger), logger)

	// Setup Router
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.Server.AllowedOrigins),
	)
	router.NoRoute(middleware.NotFound())

	verifyLimiter := middleware.NewRateLimiter(cfg.Security.VerifyRateLimit)

	api := router.Group("/api")
	{
		authHandler.RegisterRoutes(api, verifyLimiter.Middleware())
		requestHandler.RegisterRoutes(api, auth.RequireAdmin(tokens))
		letterHandler.RegisterRoutes(api)
		if wsManager != nil {
			websocket.RegisterRoutes(api, wsManager)
		}

		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":    "OK",
				"timestamp": time.Now().UTC(),
				"service":   serviceName,
				"version":   version,
			})
		})
	}

	router.Static(requests.CertificatesPath, generator.OutputDir())

	// Start Server
	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("addr", srv.Addr),
		zap.String("certificates_dir", generator.OutputDir()))

	// Graceful Shutdown
	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info("Server exiting")
}

func openDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseURL()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// newDrafter uses the chat completions deployment when one is configured and
// the built-in template otherwise.
func newDrafter(cfg config.LettersConfig, logger *zap.Logger) letters.Drafter {
	if cfg.Endpoint == "" {
		logger.Warn("No letter endpoint configured, using template drafts")
		return letters.NewTemplateDrafter()
	}

	client, err := letters.NewAzureClient(letters.AzureConfig{
		Endpoint:    cfg.Endpoint,
		APIKey:      cfg.APIKey,
		Deployment:  cfg.Deployment,
		APIVersion:  cfg.APIVersion,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
	})
	if err != nil {
		logger.Fatal("Invalid letter drafting config", zap.Error(err))
	}
	return client
}
