package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/telearchive/indexbot/internal/database"
)

// NewRecordHandler creates the default handler: every group message that no
// command handler claims is archived. Search commands never reach it and are
// therefore the only messages deliberately left out of the archive.
func NewRecordHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
		if update.Message == nil {
			return
		}
		RecordIncoming(ctx, deps, update.Message)
	}
}

// RecordIncoming archives one incoming message. Command handlers other than
// search call it before doing their own work, so commands land in the archive
// too. Failures are logged and swallowed; losing one record must not take the
// handler down.
func RecordIncoming(ctx context.Context, deps HandlerDeps, msg *models.Message) {
	record := &database.Message{
		ID:            int64(msg.ID),
		Date:          time.Unix(int64(msg.Date), 0),
		FromName:      senderName(msg.From),
		Text:          contentText(msg),
		ForwardedFrom: forwardedFrom(msg),
	}
	if msg.From != nil {
		record.FromID = msg.From.ID
	}
	if msg.ReplyToMessage != nil {
		record.ReplyToID = int64(msg.ReplyToMessage.ID)
	}

	if err := deps.Store.InsertMessage(ctx, record); err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to archive message",
			"message_id", record.ID, "error", err)
		return
	}

	deps.Logger.DebugContext(ctx, "Message archived",
		"message_id", record.ID, "from_id", record.FromID)
}

func senderName(from *models.User) string {
	if from == nil {
		return database.DeletedAccountName
	}
	return strings.TrimSpace(from.FirstName + " " + from.LastName)
}

// contentText normalizes message content into the archived text. Non-text
// payloads become bracketed placeholders so they stay searchable by kind.
func contentText(msg *models.Message) string {
	switch {
	case msg.Text != "":
		return msg.Text
	case msg.Animation != nil:
		return "[Media animation]"
	case msg.Photo != nil:
		return "[Photo]"
	case msg.Audio != nil:
		return "[Audio]"
	case msg.Video != nil:
		return "[Media video_file]"
	case msg.Voice != nil:
		return "[Media voice_message]"
	case msg.Document != nil:
		return "[File]"
	case msg.Sticker != nil:
		return fmt.Sprintf("[Sticker %s]", msg.Sticker.Emoji)
	case msg.Location != nil:
		return fmt.Sprintf("[Location longitude: %v latitude: %v]",
			msg.Location.Longitude, msg.Location.Latitude)
	case msg.Game != nil:
		return fmt.Sprintf("[Game %s]", msg.Game.Title)
	case msg.Poll != nil:
		var sb strings.Builder
		fmt.Fprintf(&sb, "[Poll %s]\n", msg.Poll.Question)
		fmt.Fprintf(&sb, "[Total Voters %d]\n", msg.Poll.TotalVoterCount)
		for _, option := range msg.Poll.Options {
			fmt.Fprintf(&sb, "[Option %s - %d votes]\n", option.Text, option.VoterCount)
		}
		return sb.String()
	case msg.Dice != nil:
		return fmt.Sprintf("[Dice %s value=%d]", msg.Dice.Emoji, msg.Dice.Value)
	default:
		return "[Unknown Message Type]"
	}
}

// forwardedFrom resolves a display name for the forward origin, or "" for a
// message that was not forwarded.
func forwardedFrom(msg *models.Message) string {
	origin := msg.ForwardOrigin
	if origin == nil {
		return ""
	}

	switch origin.Type {
	case models.MessageOriginTypeUser:
		u := origin.MessageOriginUser.SenderUser
		return strings.TrimSpace(u.FirstName + " " + u.LastName)
	case models.MessageOriginTypeHiddenUser:
		return origin.MessageOriginHiddenUser.SenderUserName
	case models.MessageOriginTypeChat:
		return origin.MessageOriginChat.SenderChat.Title
	case models.MessageOriginTypeChannel:
		return origin.MessageOriginChannel.Chat.Title
	default:
		return ""
	}
}
