package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chefmate/internal/app"
	"chefmate/internal/config"
	"chefmate/internal/logging"
	"chefmate/internal/telegram"

	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if err := cfg.RequireTelegram(); err != nil {
		logger.Fatal("invalid telegram config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Stores, metrics and clipper
	rt, err := app.Start(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to start", zap.Error(err))
	}
	defer rt.Close()

	// 3. Telegram Bot
	var (
		usage    telegram.UsageReader
		sessions telegram.Sessions
	)
	if rt.Metrics != nil {
		usage = rt.Metrics
		sessions = telegram.NewSessionRepository(rt.Metrics.DB(), telegram.SessionTTL)
	} else {
		logger.Warn("metrics database unavailable, listing numbers are kept in memory")
	}
	bot, err := telegram.NewBot(cfg, rt.App, rt.Clipper, usage, sessions, logger.Named("telegram"))
	if err != nil {
		logger.Fatal("failed to initialize telegram bot", zap.Error(err))
	}
	go bot.CleanupSessions(ctx, 0)

	mux := http.NewServeMux()
	bot.RegisterHandlers(mux)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 4. Server with graceful shutdown
	go func() {
		logger.Info("telegram bot server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
}
