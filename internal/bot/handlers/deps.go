package handlers

import (
	"log/slog"

	"github.com/telearchive/indexbot/internal/config"
	"github.com/telearchive/indexbot/internal/database"
	"github.com/telearchive/indexbot/internal/sampler"
	"github.com/telearchive/indexbot/internal/search"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger  *slog.Logger
	Config  *config.Config
	Store   database.Store
	Engine  *search.Engine
	Sampler *sampler.Sampler
}

// botName returns the bot's @username, used to strip mention suffixes from
// command text.
func (d HandlerDeps) botName() string {
	if d.Config.Telegram.BotInfo == nil {
		return ""
	}
	return "@" + d.Config.Telegram.BotInfo.Username
}
