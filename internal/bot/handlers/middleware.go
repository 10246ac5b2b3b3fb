// Package handlers contains Telegram bot command and callback handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// GroupOnly creates a middleware that silently drops any update not
// originating from the configured archive group. The bot serves exactly one
// chat; everything else is noise.
func GroupOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			groupID := deps.Config.Telegram.GroupID

			var chatID int64
			switch {
			case update.Message != nil:
				chatID = update.Message.Chat.ID
			case update.CallbackQuery != nil:
				if update.CallbackQuery.Message.Message != nil {
					chatID = update.CallbackQuery.Message.Message.Chat.ID
				} else if update.CallbackQuery.Message.InaccessibleMessage != nil {
					chatID = update.CallbackQuery.Message.InaccessibleMessage.Chat.ID
				}
			default:
				return
			}

			if chatID != groupID {
				deps.Logger.DebugContext(ctx, "Dropping update from foreign chat",
					"chat_id", chatID, "group_id", groupID)
				return
			}

			next(ctx, b, update)
		}
	}
}
