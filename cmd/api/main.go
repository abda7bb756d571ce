package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"walletpay-backend/internal/app"
	"walletpay-backend/internal/config"
	"walletpay-backend/pkg/logger"
	"walletpay-backend/pkg/validator"
)

func main() {
	logger.Init()

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment variables", nil)
	}

	cfg := config.New()
	validator.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize application", map[string]interface{}{
			"error": err.Error(),
		})
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("Server stopped unexpectedly", map[string]interface{}{
				"error": err.Error(),
			})
		}
	case sig := <-quit:
		logger.Info("Shutdown signal received", map[string]interface{}{
			"signal": sig.String(),
		})
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, "Graceful shutdown failed", nil)
	}

	logger.Info("Server stopped", nil)
}
