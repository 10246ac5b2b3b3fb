package handlers

import (
	"context"
	"strconv"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const archiveUsageText = "Usage:\n" +
	"\t/viewarchive {message id}: View archive for message with that id\n"

const archiveNotFoundText = "Can't find a chat message with this id, it might be a system message, a deleted message, or a unarchived bot message."

// NewViewArchiveHandler creates the handler for /viewarchive.
func NewViewArchiveHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
		msg := update.Message
		if msg == nil {
			return
		}
		RecordIncoming(ctx, deps, msg)

		arg := strings.NewReplacer("/viewarchive", "", deps.botName(), "").Replace(msg.Text)
		targetID, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil {
			replyText(ctx, b, deps, msg, archiveUsageText)
			return
		}

		if targetID > int64(msg.ID) {
			replyText(ctx, b, deps, msg, "This is a future message, time travel support is not available at this moment.")
			return
		}
		if targetID == int64(msg.ID) {
			replyText(ctx, b, deps, msg, "You are sending this exact message.")
			return
		}

		record, err := deps.Engine.Lookup(ctx, targetID)
		if err != nil {
			deps.Logger.ErrorContext(ctx, "Archive lookup failed",
				"target_id", targetID, "error", err)
			replyText(ctx, b, deps, msg, searchFailedText)
			return
		}
		if record == nil {
			replyText(ctx, b, deps, msg, archiveNotFoundText)
			return
		}

		replyHTML(ctx, b, deps, msg, record.ArchiveText(deps.Config.Telegram.GroupLinkID()), nil)
	}
}
