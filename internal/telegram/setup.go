// Package telegram handles Telegram bot construction and handler registration.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/telearchive/indexbot/internal/bot/handlers"
)

// NewTelegramBot creates a Telegram bot instance using the go-telegram/bot
// library. Options carry the middleware chain and the default record handler.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created")
	return b, nil
}

// ResolveBotInfo fetches the bot's own identity. The username is needed to
// strip @mention suffixes from commands before parsing their arguments.
func ResolveBotInfo(ctx context.Context, b *bot.Bot, logger *slog.Logger) (*models.User, error) {
	me, err := b.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve bot identity: %w", err)
	}

	if logger != nil {
		logger.InfoContext(ctx, "Bot identity resolved",
			"component", "telegram_bot", "username", me.Username, "id", me.ID)
	}
	return me, nil
}

// RegisterHandlers registers the handler map with the bot instance. Global
// middleware is installed at bot construction time, so registration here is a
// straight pass over the map.
func RegisterHandlers(b *bot.Bot, logger *slog.Logger, registeredHandlers map[string]handlers.RegisteredHandler) error {
	if b == nil {
		return fmt.Errorf("bot instance cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "handler_registry")

	for name, regHandler := range registeredHandlers {
		if regHandler.Handler == nil {
			log.Warn("Skipping registration for nil handler", "name", name)
			continue
		}

		b.RegisterHandler(regHandler.HandlerType, regHandler.Pattern, regHandler.MatchType, regHandler.Handler)
		log.Debug("Registered handler", "name", name, "pattern", regHandler.Pattern)
	}

	log.Info("Registered Telegram handlers", "count", len(registeredHandlers))
	return nil
}
