package handlers

import (
	"context"
	"errors"
	"fmt"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/telearchive/indexbot/internal/sampler"
)

// NewWhoSaidHandler creates the handler for /whosaid: an anonymous-free quiz
// poll asking who authored a randomly drawn archived quote. Requests inside
// the cooldown window are dropped without a reply.
func NewWhoSaidHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
		msg := update.Message
		if msg == nil {
			return
		}
		RecordIncoming(ctx, deps, msg)

		quiz, err := deps.Sampler.Quiz(ctx, int64(msg.ID))
		switch {
		case errors.Is(err, sampler.ErrCooldown):
			return
		case errors.Is(err, sampler.ErrNotEnoughAnswers):
			replyText(ctx, b, deps, msg, "Failed to generate enough answer at this time, please try again.")
			return
		case err != nil:
			deps.Logger.DebugContext(ctx, "Quiz unavailable", "error", err)
			replyText(ctx, b, deps, msg, sampleFailedText)
			return
		}

		cooldownSeconds := int(deps.Config.Quiz.Cooldown.Seconds())

		question := fmt.Sprintf("<code>Who said this?</code>\n\n%s\n\n"+
			"<code>Answer in the quiz below. Cooldown: %ds\n"+
			"If you find this quiz interesting, please 👍 it!</code>",
			quiz.Question.QuizText(), cooldownSeconds)
		replyHTML(ctx, b, deps, msg, question, nil)

		options := make([]models.InputPollOption, len(quiz.Options))
		for i, name := range quiz.Options {
			options[i] = models.InputPollOption{Text: name}
		}

		_, err = b.SendPoll(ctx, &tgbot.SendPollParams{
			ChatID:               msg.Chat.ID,
			Question:             "Who said this?",
			Options:              options,
			Type:                 "quiz",
			CorrectOptionID:      quiz.CorrectIndex,
			Explanation:          quiz.Question.QuizExplanation(deps.Config.Telegram.GroupLinkID()),
			ExplanationParseMode: string(models.ParseModeHTML),
			OpenPeriod:           cooldownSeconds,
			IsAnonymous:          boolPtr(false),
		})
		if err != nil {
			deps.Logger.ErrorContext(ctx, "Failed to send quiz poll",
				"chat_id", msg.Chat.ID, "error", err)
		}
	}
}
