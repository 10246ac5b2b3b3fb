// Package main contains the entrypoint for the archive bot.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/telearchive/indexbot/internal/bot"
	"github.com/telearchive/indexbot/internal/bot/handlers"
	"github.com/telearchive/indexbot/internal/bot/tasks"
	"github.com/telearchive/indexbot/internal/config"
	"github.com/telearchive/indexbot/internal/database"
	"github.com/telearchive/indexbot/internal/logger"
	"github.com/telearchive/indexbot/internal/sampler"
	"github.com/telearchive/indexbot/internal/search"
	"github.com/telearchive/indexbot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all components, starts the bot, and blocks until shutdown.
// Returns the process exit code.
func run(ctx context.Context) int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to open database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)

	store := database.NewStore(db, log)
	engine := search.NewEngine(store, log)
	smp := sampler.New(engine, log, sampler.Config{
		RandomAttempts:   cfg.Random.Attempts,
		QuestionAttempts: cfg.Quiz.QuestionAttempts,
		AnswerAttempts:   cfg.Quiz.AnswerAttempts,
		WrongAnswerCount: cfg.Quiz.WrongAnswerCount,
		MinTextLength:    cfg.Quiz.MinTextLength,
		Cooldown:         cfg.Quiz.Cooldown,
	})

	hDeps := handlers.HandlerDeps{
		Logger:  log,
		Config:  cfg,
		Store:   store,
		Engine:  engine,
		Sampler: smp,
	}
	tDeps := tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log), handlers.GroupOnly(hDeps)),
		tgbot.WithDefaultHandler(handlers.NewRecordHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cfg.Telegram.BotInfo, err = telegram.ResolveBotInfo(ctx, tg, log)
	if err != nil {
		log.Error("Failed to resolve bot identity", "error", err)
		return 1
	}

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, cfg, store, tg, sched)

	runErr := app.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	// Let async log output flush before the process exits.
	time.Sleep(time.Second)
	return 0
}
