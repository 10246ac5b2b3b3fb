// Package importer loads a Telegram JSON chat export into the archive. It
// normalizes heterogeneous entry content into the record text field and
// bulk-loads the store in one transaction.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/telearchive/indexbot/internal/database"
)

// exportDateLayout is the timestamp format used by Telegram desktop exports.
const exportDateLayout = "2006-01-02T15:04:05"

// Importer parses an export document and writes it to the Store.
type Importer struct {
	store  database.Store
	logger *slog.Logger
}

// New creates an importer writing to the given store.
func New(store database.Store, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Importer{
		store:  store,
		logger: logger.With("component", "importer"),
	}
}

// Run imports the export document at path. Service entries are skipped;
// every "message" entry is normalized and inserted. Any row failure aborts
// the whole import with no partial commit.
func (i *Importer) Run(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read export file: %w", err)
	}

	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		return fmt.Errorf("failed to parse export file: %w", err)
	}

	i.logger.InfoContext(ctx, "Export parsed",
		"path", path, "entries", len(export.Messages))

	records := make([]*database.Message, 0, len(export.Messages))
	skipped := 0
	for idx := range export.Messages {
		entry := &export.Messages[idx]
		if entry.Type != "message" {
			skipped++
			continue
		}

		record, err := toRecord(entry)
		if err != nil {
			return fmt.Errorf("failed to convert entry %d: %w", entry.ID, err)
		}
		records = append(records, record)
	}

	if err := i.store.ImportMessages(ctx, records); err != nil {
		return err
	}

	i.logger.InfoContext(ctx, "Import finished",
		"imported", len(records), "skipped", skipped)
	return nil
}

// toRecord normalizes one export entry into an archive record.
func toRecord(entry *ExportMessage) (*database.Message, error) {
	date, err := time.Parse(exportDateLayout, entry.Date)
	if err != nil {
		return nil, fmt.Errorf("bad date %q: %w", entry.Date, err)
	}

	fromID, err := parseFromID(entry.FromID)
	if err != nil {
		return nil, err
	}

	fromName := database.DeletedAccountName
	if entry.From != nil {
		fromName = *entry.From
	}

	forwardedFrom := ""
	if entry.ForwardedFrom != nil {
		forwardedFrom = *entry.ForwardedFrom
	}

	return &database.Message{
		ID:            entry.ID,
		Date:          date,
		FromName:      fromName,
		FromID:        fromID,
		Text:          normalizeText(entry),
		ReplyToID:     entry.ReplyToMessageID,
		ForwardedFrom: forwardedFrom,
	}, nil
}

// parseFromID strips the export's "user"/"channel" prefix from the author id.
func parseFromID(raw string) (int64, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(raw, "user"), "channel")
	if trimmed == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad from_id %q: %w", raw, err)
	}
	return id, nil
}

// normalizeText produces the record text for an entry. Entries with literal
// text keep it (compound fragments concatenated in order); entries without
// are described by a bracketed placeholder derived from their payload.
func normalizeText(entry *ExportMessage) string {
	if text := flattenText(entry.Text); text != "" {
		return text
	}

	switch {
	case entry.StickerEmoji != nil:
		return fmt.Sprintf("[Sticker %s]", *entry.StickerEmoji)
	case entry.MediaType != nil:
		return fmt.Sprintf("[Media %s]", *entry.MediaType)
	case entry.Photo != nil:
		return "[Photo]"
	case entry.File != nil:
		return "[File]"
	case entry.GameTitle != nil:
		return fmt.Sprintf("[Game %s]", *entry.GameTitle)
	case entry.Poll != nil:
		var sb strings.Builder
		fmt.Fprintf(&sb, "[Poll %s]\n", entry.Poll.Question)
		fmt.Fprintf(&sb, "[Total Voters %d]\n", entry.Poll.TotalVoters)
		for _, answer := range entry.Poll.Answers {
			fmt.Fprintf(&sb, "[Option %s - %d votes]\n", answer.Text, answer.Voters)
		}
		return sb.String()
	case entry.Location != nil:
		return fmt.Sprintf("[Location longitude: %v latitude: %v]",
			entry.Location.Longitude, entry.Location.Latitude)
	default:
		return "[Unknown Message Type]"
	}
}

// flattenText concatenates the export's text field, which is either a plain
// string or a list of fragments: bare strings interleaved with {type, text}
// objects. A fragment that parses as neither keeps its raw serialized form.
func flattenText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}

	var fragments []json.RawMessage
	if err := json.Unmarshal(raw, &fragments); err != nil {
		return string(raw)
	}

	var sb strings.Builder
	for _, fragment := range fragments {
		var s string
		if err := json.Unmarshal(fragment, &s); err == nil {
			sb.WriteString(s)
			continue
		}

		var element struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}
		if err := json.Unmarshal(fragment, &element); err == nil {
			sb.WriteString(element.Text)
			continue
		}

		sb.WriteString(string(fragment))
	}
	return sb.String()
}
