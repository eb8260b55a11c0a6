package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ahorrapp/internal/amqp"
	"ahorrapp/internal/cache"
	"ahorrapp/internal/config"
	apphttp "ahorrapp/internal/http"
	"ahorrapp/internal/images"
	"ahorrapp/internal/log"
	"ahorrapp/internal/services"
	"ahorrapp/internal/storage"
)

func main() {
	// Load .env for local development, ignore errors in production
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
	} else {
		logger.Warn("AMQP disabled, wallet totals will only update on reconcile")
	}

	var imageStore services.ImageStore
	if cfg.ImagesEnabled() {
		imageStore = images.NewClient(images.Config{
			CloudName:    cfg.ImageCloudName,
			UploadPreset: cfg.ImageUploadPreset,
			APIKey:       cfg.ImageAPIKey,
			APISecret:    cfg.ImageAPISecret,
		})
		logger.Info("Hosted image client initialized", "cloud_name", cfg.ImageCloudName)
	} else {
		logger.Info("Hosted images disabled")
	}

	summaries := cache.NewSummaryCache(1024, 5*time.Minute)
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if removed := summaries.Sweep(); removed > 0 {
					logger.Debug("Summary cache swept", "removed", removed)
				}
			case <-sweepDone:
				return
			}
		}
	}()
	defer close(sweepDone)

	txSvc := services.NewTransactionService(repo, publisher, summaries, cfg.BudgetLimit)
	walletSvc := services.NewWalletService(repo, imageStore, summaries)
	userSvc := services.NewUserService(repo, imageStore)

	srv := apphttp.NewServer(":"+cfg.Port, txSvc, walletSvc, userSvc, logger.WithComponent(log.ComponentHTTP), cfg.RequestsPerMinute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting ahorrapp server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
