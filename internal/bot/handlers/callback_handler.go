package handlers

import (
	"context"
	"strconv"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/telearchive/indexbot/internal/search"
)

// NewCallbackHandler creates the handler for inline keyboard callbacks on
// search result messages. Data is either "p<n>" to re-run the search at page
// n, or a bare message id to swap the result list for that message's archive
// view. Both edits need the original /search message, still attached as the
// result's reply target, to reconstruct the query.
func NewCallbackHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
		cb := update.CallbackQuery

		if _, err := b.AnswerCallbackQuery(ctx, &tgbot.AnswerCallbackQueryParams{
			CallbackQueryID: cb.ID,
		}); err != nil {
			deps.Logger.DebugContext(ctx, "Failed to answer callback query", "error", err)
		}

		msg := cb.Message.Message
		if msg == nil {
			// Result message too old for the API to hand back; nothing to edit.
			deps.Logger.DebugContext(ctx, "Callback on inaccessible message", "data", cb.Data)
			return
		}

		if msg.ReplyToMessage == nil {
			editHTML(ctx, b, deps, msg, "Failed: Original query message does not exist anymore.", nil)
			return
		}

		if pageData, ok := strings.CutPrefix(cb.Data, "p"); ok {
			targetPage, err := strconv.Atoi(pageData)
			if err != nil {
				deps.Logger.ErrorContext(ctx, "Bad page callback data", "data", cb.Data)
				return
			}

			term, forceFullText, forceSubstring := search.ParseTerm(msg.ReplyToMessage.Text, deps.botName())
			page, err := deps.Engine.Search(ctx, term, targetPage, forceFullText, forceSubstring)
			if err != nil {
				editHTML(ctx, b, deps, msg, searchFailedText, nil)
				return
			}

			editHTML(ctx, b, deps, msg, page.RenderHTML(), MakeResultKeyboard(page))
			return
		}

		targetID, err := strconv.ParseInt(cb.Data, 10, 64)
		if err != nil {
			deps.Logger.ErrorContext(ctx, "Bad callback data", "data", cb.Data)
			return
		}

		record, err := deps.Engine.Lookup(ctx, targetID)
		if err != nil {
			deps.Logger.ErrorContext(ctx, "Archive lookup failed",
				"target_id", targetID, "error", err)
			editHTML(ctx, b, deps, msg, searchFailedText, nil)
			return
		}
		if record == nil {
			editHTML(ctx, b, deps, msg, archiveNotFoundText, nil)
			return
		}

		editHTML(ctx, b, deps, msg, record.ArchiveText(deps.Config.Telegram.GroupLinkID()), nil)
	}
}
