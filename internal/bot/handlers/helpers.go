package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const searchFailedText = "Error encountered when searching, contact administrator to check log."

func boolPtr(v bool) *bool { return &v }

// replyText sends a plain-text reply to msg. Send failures are logged, not
// propagated; there is nobody upstream to handle them.
func replyText(ctx context.Context, b *tgbot.Bot, deps HandlerDeps, msg *models.Message, text string) {
	_, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:          msg.Chat.ID,
		Text:            text,
		ReplyParameters: &models.ReplyParameters{MessageID: msg.ID},
	})
	if err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to send reply",
			"chat_id", msg.Chat.ID, "error", err)
	}
}

// replyHTML sends an HTML-formatted reply to msg with link previews disabled.
// keyboard may be nil.
func replyHTML(ctx context.Context, b *tgbot.Bot, deps HandlerDeps, msg *models.Message, text string, keyboard models.ReplyMarkup) {
	_, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:             msg.Chat.ID,
		Text:               text,
		ParseMode:          models.ParseModeHTML,
		ReplyParameters:    &models.ReplyParameters{MessageID: msg.ID},
		ReplyMarkup:        keyboard,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: boolPtr(true)},
	})
	if err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to send reply",
			"chat_id", msg.Chat.ID, "error", err)
	}
}

// editHTML rewrites a previously sent bot message in place, keeping the HTML
// parse mode and disabled previews of the original. keyboard may be nil.
func editHTML(ctx context.Context, b *tgbot.Bot, deps HandlerDeps, msg *models.Message, text string, keyboard models.ReplyMarkup) {
	_, err := b.EditMessageText(ctx, &tgbot.EditMessageTextParams{
		ChatID:             msg.Chat.ID,
		MessageID:          msg.ID,
		Text:               text,
		ParseMode:          models.ParseModeHTML,
		ReplyMarkup:        keyboard,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: boolPtr(true)},
	})
	if err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to edit message",
			"chat_id", msg.Chat.ID, "message_id", msg.ID, "error", err)
	}
}
