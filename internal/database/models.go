package database

import (
	"fmt"
	"strings"
	"time"
)

// DeletedAccountName is the sentinel author name stored for messages whose
// author's account no longer resolves to a real user.
const DeletedAccountName = "[deleted account]"

// Message represents one archived group chat message. Records are written
// once at ingestion and never mutated. Non-text content is stored as a
// bracketed placeholder in Text (e.g. "[Photo]", "[Sticker 😀]").
type Message struct {
	ID            int64     `db:"id"`
	Date          time.Time `db:"date"`
	FromName      string    `db:"from_name"`
	FromID        int64     `db:"from_id"`
	Text          string    `db:"text"`
	ReplyToID     int64     `db:"reply_to_message_id"`
	ForwardedFrom string    `db:"forwarded_from"`
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// EscapeHTML escapes user-supplied text for embedding in Telegram HTML markup.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// SearchListItem renders the message as a one-line search result entry.
func (m *Message) SearchListItem() string {
	return fmt.Sprintf("<b>%s(%s): </b>%s",
		EscapeHTML(m.FromName), m.Date.Format("2006-01-02"), EscapeHTML(m.Text))
}

// ArchiveText renders the full archive view of the message, including
// sender, timestamp and deep links into the group identified by groupLinkID.
func (m *Message) ArchiveText(groupLinkID int64) string {
	var sb strings.Builder

	sb.WriteString("<code>=== Message Archive ===</code>\n")
	sb.WriteString("\n")
	sb.WriteString(EscapeHTML(m.Text))
	sb.WriteString("\n\n")

	sb.WriteString("<code>=== Message Info ===</code>\n")
	fmt.Fprintf(&sb, "<code>USR:</code> %s\n", EscapeHTML(m.FromName))
	fmt.Fprintf(&sb, "<code>D/T:</code> %s\n", m.Date.Format("2006-01-02T15:04:05"))
	fmt.Fprintf(&sb, "<code>UID:</code> %d\n", m.FromID)
	fmt.Fprintf(&sb, "<code>MID:</code> <a href=\"https://t.me/c/%d/%d\">%d</a>\n", groupLinkID, m.ID, m.ID)

	if m.ReplyToID != 0 {
		fmt.Fprintf(&sb, "<code>REP:</code> <a href=\"https://t.me/c/%d/%d\">%d</a>\n", groupLinkID, m.ReplyToID, m.ReplyToID)
	}
	if m.ForwardedFrom != "" {
		fmt.Fprintf(&sb, "<code>FWD:</code> %s\n", EscapeHTML(m.ForwardedFrom))
	}

	return sb.String()
}

// QuizText renders the quoted message text for a "who said this" question.
func (m *Message) QuizText() string {
	return EscapeHTML(m.Text)
}

// QuizExplanation renders the quiz answer reveal, naming the author and
// linking back to the archived message.
func (m *Message) QuizExplanation(groupLinkID int64) string {
	return fmt.Sprintf("This was said by %s at %s.\n<code>MID:</code> <a href=\"https://t.me/c/%d/%d\">%d</a>",
		EscapeHTML(m.FromName), m.Date.Format("2006-01-02T15:04:05"), groupLinkID, m.ID, m.ID)
}
