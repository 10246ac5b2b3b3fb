package importer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/telearchive/indexbot/internal/database"
)

// captureStore records the batch handed to ImportMessages.
type captureStore struct {
	database.Store

	imported []*database.Message
	err      error
}

func (c *captureStore) ImportMessages(_ context.Context, messages []*database.Message) error {
	c.imported = messages
	return c.err
}

func writeExport(t *testing.T, doc string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "export.json")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("failed to write export file: %v", err)
	}
	return path
}

func TestRunSkipsServiceEntries(t *testing.T) {
	t.Parallel()

	doc := `{
		"name": "test group",
		"id": 1234,
		"messages": [
			{"id": 1, "type": "service", "date": "2023-05-01T10:00:00", "from_id": "user1", "text": ""},
			{"id": 2, "type": "message", "date": "2023-05-01T10:01:00", "from": "Alice", "from_id": "user101", "text": "hello"},
			{"id": 3, "type": "message", "date": "2023-05-01T10:02:00", "from": "Bob", "from_id": "user102", "text": "world"}
		]
	}`

	store := &captureStore{}
	if err := New(store, nil).Run(context.Background(), writeExport(t, doc)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(store.imported) != 2 {
		t.Fatalf("expected 2 imported records, got %d", len(store.imported))
	}
	if store.imported[0].ID != 2 || store.imported[1].ID != 3 {
		t.Errorf("unexpected record ids: %d, %d", store.imported[0].ID, store.imported[1].ID)
	}
	if store.imported[0].FromName != "Alice" || store.imported[0].FromID != 101 {
		t.Errorf("unexpected author: %+v", store.imported[0])
	}
}

func TestRunFailsOnBadDate(t *testing.T) {
	t.Parallel()

	doc := `{
		"messages": [
			{"id": 7, "type": "message", "date": "yesterday", "from": "Alice", "from_id": "user101", "text": "hello"}
		]
	}`

	store := &captureStore{}
	err := New(store, nil).Run(context.Background(), writeExport(t, doc))
	if err == nil {
		t.Fatal("expected error for malformed date")
	}
	if store.imported != nil {
		t.Error("expected no import attempt after conversion failure")
	}
}

func TestToRecordDeletedAccount(t *testing.T) {
	t.Parallel()

	entry := &ExportMessage{
		ID:     5,
		Type:   "message",
		Date:   "2023-05-01T10:00:00",
		FromID: "user101",
		Text:   json.RawMessage(`"orphaned text"`),
	}

	got, err := toRecord(entry)
	if err != nil {
		t.Fatalf("toRecord failed: %v", err)
	}
	if got.FromName != database.DeletedAccountName {
		t.Errorf("expected sentinel author, got %q", got.FromName)
	}
}

func TestParseFromID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    int64
		wantErr bool
	}{
		{name: "user prefix", raw: "user12345", want: 12345},
		{name: "channel prefix", raw: "channel999", want: 999},
		{name: "bare number", raw: "42", want: 42},
		{name: "empty", raw: "", want: 0},
		{name: "garbage", raw: "userabc", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseFromID(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Errorf("parseFromID(%q) expected error", tc.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFromID(%q) failed: %v", tc.raw, err)
			}
			if got != tc.want {
				t.Errorf("parseFromID(%q) = %d, want %d", tc.raw, got, tc.want)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	stringPtr := func(s string) *string { return &s }

	tests := []struct {
		name  string
		entry ExportMessage
		want  string
	}{
		{
			name:  "plain text",
			entry: ExportMessage{Text: json.RawMessage(`"hello world"`)},
			want:  "hello world",
		},
		{
			name:  "compound fragments",
			entry: ExportMessage{Text: json.RawMessage(`["hello ", {"type": "bold", "text": "world"}]`)},
			want:  "hello world",
		},
		{
			name:  "text wins over payload",
			entry: ExportMessage{Text: json.RawMessage(`"caption"`), Photo: stringPtr("photos/1.jpg")},
			want:  "caption",
		},
		{
			name:  "sticker",
			entry: ExportMessage{Text: json.RawMessage(`""`), StickerEmoji: stringPtr("😀")},
			want:  "[Sticker 😀]",
		},
		{
			name:  "media type",
			entry: ExportMessage{Text: json.RawMessage(`""`), MediaType: stringPtr("voice_message")},
			want:  "[Media voice_message]",
		},
		{
			name:  "photo",
			entry: ExportMessage{Text: json.RawMessage(`""`), Photo: stringPtr("photos/1.jpg")},
			want:  "[Photo]",
		},
		{
			name:  "file",
			entry: ExportMessage{Text: json.RawMessage(`""`), File: stringPtr("files/a.pdf")},
			want:  "[File]",
		},
		{
			name:  "game",
			entry: ExportMessage{Text: json.RawMessage(`""`), GameTitle: stringPtr("Tetris")},
			want:  "[Game Tetris]",
		},
		{
			name: "poll",
			entry: ExportMessage{Text: json.RawMessage(`""`), Poll: &ExportPoll{
				Question:    "lunch?",
				TotalVoters: 3,
				Answers: []ExportPollAnswer{
					{Text: "pizza", Voters: 2},
					{Text: "sushi", Voters: 1},
				},
			}},
			want: "[Poll lunch?]\n[Total Voters 3]\n[Option pizza - 2 votes]\n[Option sushi - 1 votes]\n",
		},
		{
			name:  "location",
			entry: ExportMessage{Text: json.RawMessage(`""`), Location: &ExportLocation{Longitude: 13.4, Latitude: 52.5}},
			want:  "[Location longitude: 13.4 latitude: 52.5]",
		},
		{
			name:  "unknown",
			entry: ExportMessage{Text: json.RawMessage(`""`)},
			want:  "[Unknown Message Type]",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := normalizeText(&tc.entry); got != tc.want {
				t.Errorf("normalizeText() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFlattenText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plain string", raw: `"hello"`, want: "hello"},
		{name: "empty", raw: `""`, want: ""},
		{name: "fragments in order", raw: `["a", {"type": "code", "text": "b"}, "c"]`, want: "abc"},
		{name: "only objects", raw: `[{"type": "link", "text": "https://example.com"}]`, want: "https://example.com"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := flattenText(json.RawMessage(tc.raw)); got != tc.want {
				t.Errorf("flattenText(%s) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}
