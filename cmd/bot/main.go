package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"calorie-vision/config"
	telegram "calorie-vision/internal/api"
	"calorie-vision/internal/container"
	"calorie-vision/internal/infrastructure/storage"
	"calorie-vision/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	lg, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	// Таблица калорийности: при ошибке работаем с пустой
	table := container.LoadCalorieTable(cfg.CaloriesDBPath, lg)

	detector, closeDetector, err := container.NewDetector(cfg, table, lg)
	if err != nil {
		lg.Fatal("failed to create detector", zap.String("backend", cfg.DetectorBackend), zap.Error(err))
	}
	defer func() {
		if err := closeDetector(); err != nil {
			lg.Warn("close detector", zap.Error(err))
		}
	}()

	// Собираем сервисы приложения
	appContainer, err := container.New(storage.NewMemorySessionRepository(), detector, table, cfg.OutputDir, lg)
	if err != nil {
		lg.Fatal("failed to build container", zap.Error(err))
	}

	bot, err := telegram.NewBot(cfg.TelegramToken, appContainer, lg.Named("bot"))
	if err != nil {
		lg.Fatal("failed to create bot", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lg.Info("bot is running", zap.String("backend", cfg.DetectorBackend))
	if err := bot.Run(ctx); err != nil {
		lg.Error("bot stopped", zap.Error(err))
	}
	lg.Info("bot stopped")
}
