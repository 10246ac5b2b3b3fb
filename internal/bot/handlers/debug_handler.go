package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewDebugHandler creates the handler for /debug: a liveness check that
// echoes the effective sampler settings and the archive size.
func NewDebugHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
		msg := update.Message
		if msg == nil {
			return
		}
		RecordIncoming(ctx, deps, msg)

		var sb strings.Builder
		sb.WriteString("<b>Debug Message</b>\n")
		sb.WriteString("If you can see this message, the bot can see you and has access to the Internet.\n")
		fmt.Fprintf(&sb, "random attempts: %d\n", deps.Config.Random.Attempts)
		fmt.Fprintf(&sb, "quiz question attempts: %d\n", deps.Config.Quiz.QuestionAttempts)
		fmt.Fprintf(&sb, "quiz answer attempts: %d\n", deps.Config.Quiz.AnswerAttempts)
		fmt.Fprintf(&sb, "quiz wrong answer count: %d\n", deps.Config.Quiz.WrongAnswerCount)
		fmt.Fprintf(&sb, "quiz minimum text length: %d\n", deps.Config.Quiz.MinTextLength)
		fmt.Fprintf(&sb, "quiz cooldown: %s\n", deps.Config.Quiz.Cooldown)

		if count, err := deps.Store.CountMessages(ctx); err == nil {
			fmt.Fprintf(&sb, "archived messages: %d\n", count)
		} else {
			deps.Logger.ErrorContext(ctx, "Failed to count messages", "error", err)
		}

		replyHTML(ctx, b, deps, msg, sb.String(), nil)
	}
}
