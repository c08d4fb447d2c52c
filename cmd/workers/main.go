package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"smart-certify/certify-backend/internal/certificates/maintenance"
	"smart-certify/certify-backend/internal/config"
	"smart-certify/certify-backend/internal/logging"
	"smart-certify/certify-backend/pkg/storage"
)

// jobTimeout bounds a single sweep or archive run
const jobTimeout = 10 * time.Minute

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := logging.New(cfg.Logging.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	scheduler := maintenance.NewScheduler(jobTimeout, logger)

	sweeper := maintenance.NewSweeper(cfg.Certificates.OutputDir, cfg.Certificates.TempMaxAge, logger)
	err = scheduler.Add("temp-sweep", cfg.Certificates.TempSweepSchedule, func(ctx context.Context) error {
		_, err := sweeper.Sweep(ctx)
		return err
	})
	if err != nil {
		logger.Fatal("Failed to schedule temp sweep", zap.Error(err))
	}

	if cfg.Storage.Bucket != "" {
		store, err := storage.NewS3Client(ctx, storage.S3Config{
			Region:   cfg.Storage.Region,
			Endpoint: cfg.Storage.Endpoint,
		})
		if err != nil {
			logger.Fatal("Failed to create S3 client", zap.Error(err))
		}

		archiver := maintenance.NewArchiver(cfg.Certificates.OutputDir, store, cfg.Storage.Bucket, cfg.Storage.Prefix, logger)
		err = scheduler.Add("archive", cfg.Certificates.ArchiveSchedule, func(ctx context.Context) error {
			_, err := archiver.Archive(ctx)
			return err
		})
		if err != nil {
			logger.Fatal("Failed to schedule archive", zap.Error(err))
		}
	} else {
		logger.Info("No archive bucket configured, archive job disabled")
	}

	// Catch up before waiting for the first tick.
	scheduler.RunAll(ctx)

	if err := scheduler.Start(ctx); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}
	logger.Info("Maintenance worker started", zap.String("certificates_dir", cfg.Certificates.OutputDir))

	<-sigChan
	logger.Info("Shutdown signal received")
	cancel()
	scheduler.Stop()

	logger.Info("Maintenance worker stopped")
}
