package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ringslot/internal/config"
	"ringslot/internal/db"
	"ringslot/internal/email"
	"ringslot/internal/logger"
	"ringslot/internal/server"
)

// @title RingSlot API
// @version 1.0
// @description API for the boxing studio booking system.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey TokenAuth
// @in header
// @name X-Auth-Token
func main() {
	logger.Init()
	defer logger.Sync()
	logger.Info("starting ringslot")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("failed to run migrations: %v", err)
	}
	logger.Info("migrations completed")

	emailService := email.New(
		cfg.EmailFrom,
		cfg.EmailFromName,
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPass,
		cfg.RedisAddr,
	)
	defer emailService.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go emailService.Start(ctx)

	srv := server.New(database, cfg, emailService)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("server error: %v", err)
	}

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("error during server shutdown: %v", err)
	}

	logger.Info("server stopped")
}
