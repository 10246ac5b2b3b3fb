package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const sampleFailedText = "Failed to fetch random message at this time, please try again."

// NewRandomHandler creates the handler for /random: an archive view of a
// randomly drawn past message.
func NewRandomHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
		msg := update.Message
		if msg == nil {
			return
		}
		RecordIncoming(ctx, deps, msg)

		record, err := deps.Sampler.RandomQuote(ctx, int64(msg.ID))
		if err != nil {
			deps.Logger.DebugContext(ctx, "Random quote unavailable", "error", err)
			replyText(ctx, b, deps, msg, sampleFailedText)
			return
		}

		replyHTML(ctx, b, deps, msg, record.ArchiveText(deps.Config.Telegram.GroupLinkID()), nil)
	}
}
