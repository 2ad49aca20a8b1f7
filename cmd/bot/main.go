package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go-cvbot-backend/internal/config"
	"go-cvbot-backend/internal/database"
	"go-cvbot-backend/internal/flow"
	"go-cvbot-backend/internal/logger"
	"go-cvbot-backend/internal/review"
	"go-cvbot-backend/internal/session"
	"go-cvbot-backend/internal/store"
	"go-cvbot-backend/internal/telegram"
	"go-cvbot-backend/internal/watcher"

	"go.uber.org/zap"
)

func main() {
	//load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	lg, err := logger.New(cfg.JSONLog, cfg.Debug)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//pick stores: Postgres when configured, in-memory otherwise
	var profiles store.ProfileStore
	var orders store.OrderStore
	if cfg.DatabaseURL != "" {
		repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			lg.Fatal("database connection failed", zap.Error(err))
		}
		defer repo.Close()
		profiles, orders = repo, repo
		lg.Info("connected to database")
	} else {
		mem := store.NewMemory()
		profiles, orders = mem, mem
		lg.Warn("DATABASE_URL not set, using in-memory stores")
	}

	//init telegram bot
	bot, err := telegram.NewBot(ctx, cfg.TelegramToken)
	if err != nil {
		lg.Fatal("failed to init Telegram bot", zap.Error(err))
	}
	lg.Info("telegram bot initialized", zap.String("bot", bot.Self()))

	reg := session.NewRegistry()
	handoff := review.NewHandoff(lg, bot, orders, reg, cfg.ReviewChannelID)
	engine := flow.NewEngine(lg, bot, profiles, orders, reg, handoff, cfg.MaxFileSizeBytes)

	//status watcher runs beside the dispatcher, sharing only the registry
	w := watcher.New(lg, bot, orders, reg, cfg.SweepInterval())
	go w.Run(ctx)

	dispatcher := telegram.NewDispatcher(lg, bot, engine, handoff, reg, cfg.ReviewChannelID)
	dispatcher.Run(ctx)
}
