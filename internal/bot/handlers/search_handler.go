package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/telearchive/indexbot/internal/search"
)

const searchUsageText = "Usage:\n" +
	"\t/search {term}: Search message that contains {term}\n" +
	"\t/searchfts5 {term}: Search message that contains {term}, force FTS5\n" +
	"\t/searchlike {term}: Search message that contains {term}, force LIKE\n"

// NewSearchHandler creates the handler for /search, /searchfts5 and
// /searchlike. It runs page zero; later pages arrive as callback queries.
// Search commands are not archived.
func NewSearchHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
		msg := update.Message
		if msg == nil {
			return
		}

		term, forceFullText, forceSubstring := search.ParseTerm(msg.Text, deps.botName())
		if term == "" {
			replyText(ctx, b, deps, msg, searchUsageText)
			return
		}

		page, err := deps.Engine.Search(ctx, term, 0, forceFullText, forceSubstring)
		if err != nil {
			replyText(ctx, b, deps, msg, searchFailedText)
			return
		}

		if len(page.Entries) == 0 {
			replyText(ctx, b, deps, msg, "No result found, try another search term or force a search method.")
			return
		}

		replyHTML(ctx, b, deps, msg, page.RenderHTML(), MakeResultKeyboard(page))
	}
}
