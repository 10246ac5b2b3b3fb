// Package database_test tests the archive store against a real SQLite file.
package database_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/telearchive/indexbot/internal/database"
)

func newTestStore(t *testing.T) (database.Store, *sqlx.DB) {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	return database.NewStore(db, nil), db
}

func testMessage(id int64, text string) *database.Message {
	return &database.Message{
		ID:       id,
		Date:     time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC),
		FromName: "Alice Smith",
		FromID:   1001,
		Text:     text,
	}
}

func TestInsertAndGetRoundTrip(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	want := &database.Message{
		ID:            42,
		Date:          time.Date(2023, 5, 1, 12, 30, 15, 0, time.UTC),
		FromName:      "Bob Jones",
		FromID:        2002,
		Text:          "hello archive",
		ReplyToID:     41,
		ForwardedFrom: "Carol",
	}

	if err := store.InsertMessage(ctx, want); err != nil {
		t.Fatalf("InsertMessage failed: %v", err)
	}

	got, err := store.GetMessageByID(ctx, 42)
	if err != nil {
		t.Fatalf("GetMessageByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("GetMessageByID returned nil for existing message")
	}

	if got.ID != want.ID ||
		got.FromName != want.FromName ||
		got.FromID != want.FromID ||
		got.Text != want.Text ||
		got.ReplyToID != want.ReplyToID ||
		got.ForwardedFrom != want.ForwardedFrom {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
	if got.Date.Unix() != want.Date.Unix() {
		t.Errorf("date mismatch: got %v, want %v", got.Date, want.Date)
	}
}

func TestGetMessageByIDMissing(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)

	got, err := store.GetMessageByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("GetMessageByID failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing id, got %+v", got)
	}
}

func TestInsertMessageAtomicity(t *testing.T) {
	t.Parallel()

	store, db := newTestStore(t)
	ctx := context.Background()

	// Break the second statement of the transaction: the row insert then
	// succeeds but the index insert cannot.
	if _, err := db.Exec(`DROP TABLE search;`); err != nil {
		t.Fatalf("failed to drop search table: %v", err)
	}

	if err := store.InsertMessage(ctx, testMessage(1, "orphan")); err == nil {
		t.Fatal("expected insert to fail without search table")
	}

	count, err := store.CountMessages(ctx)
	if err != nil {
		t.Fatalf("CountMessages failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected rollback to leave 0 messages, got %d", count)
	}
}

func TestImportMessages(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	records := []*database.Message{
		testMessage(1, "the quick brown fox"),
		testMessage(2, "jumped over"),
		testMessage(3, "the lazy dog"),
	}
	if err := store.ImportMessages(ctx, records); err != nil {
		t.Fatalf("ImportMessages failed: %v", err)
	}

	count, err := store.CountMessages(ctx)
	if err != nil {
		t.Fatalf("CountMessages failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 messages, got %d", count)
	}

	hits, err := store.SearchText(ctx, "lazy", 0, 10)
	if err != nil {
		t.Fatalf("SearchText failed: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != 3 {
		t.Errorf("expected full-text hit on message 3, got %+v", hits)
	}
}

func TestImportMessagesAbortsOnDuplicate(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.InsertMessage(ctx, testMessage(5, "already here")); err != nil {
		t.Fatalf("InsertMessage failed: %v", err)
	}

	records := []*database.Message{
		testMessage(6, "new row"),
		testMessage(5, "duplicate id"),
	}
	if err := store.ImportMessages(ctx, records); err == nil {
		t.Fatal("expected import to fail on duplicate id")
	}

	count, err := store.CountMessages(ctx)
	if err != nil {
		t.Fatalf("CountMessages failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected aborted import to leave 1 message, got %d", count)
	}

	// The pre-existing row must still be findable through the index.
	hits, err := store.SearchText(ctx, "already", 0, 10)
	if err != nil {
		t.Fatalf("SearchText failed: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != 5 {
		t.Errorf("expected index to retain message 5, got %+v", hits)
	}
}

func TestSearchLikeCaseInsensitive(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.InsertMessage(ctx, testMessage(1, "Hello World")); err != nil {
		t.Fatalf("InsertMessage failed: %v", err)
	}

	hits, err := store.SearchLike(ctx, "hello w", 0, 10)
	if err != nil {
		t.Fatalf("SearchLike failed: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != 1 {
		t.Errorf("expected case-insensitive substring hit, got %+v", hits)
	}
}

func TestSearchLikePagination(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	records := make([]*database.Message, 0, 25)
	for i := int64(1); i <= 25; i++ {
		records = append(records, testMessage(i, fmt.Sprintf("needle number %d", i)))
	}
	if err := store.ImportMessages(ctx, records); err != nil {
		t.Fatalf("ImportMessages failed: %v", err)
	}

	page0, err := store.SearchLike(ctx, "needle", 0, 10)
	if err != nil {
		t.Fatalf("SearchLike page 0 failed: %v", err)
	}
	if len(page0) != 10 {
		t.Fatalf("expected 10 hits on page 0, got %d", len(page0))
	}
	if page0[0].ID != 25 || page0[9].ID != 16 {
		t.Errorf("expected ids 25..16 on page 0, got %d..%d", page0[0].ID, page0[9].ID)
	}

	page2, err := store.SearchLike(ctx, "needle", 20, 10)
	if err != nil {
		t.Fatalf("SearchLike page 2 failed: %v", err)
	}
	if len(page2) != 5 {
		t.Errorf("expected 5 hits on page 2, got %d", len(page2))
	}

	empty, err := store.SearchLike(ctx, "needle", 30, 10)
	if err != nil {
		t.Fatalf("SearchLike past end failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty page past the end, got %d hits", len(empty))
	}
}

func TestRunMaintenance(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.InsertMessage(ctx, testMessage(1, "some content")); err != nil {
		t.Fatalf("InsertMessage failed: %v", err)
	}

	if err := store.RunMaintenance(ctx); err != nil {
		t.Fatalf("RunMaintenance failed: %v", err)
	}

	// Index still answers queries after the optimize/vacuum pass.
	hits, err := store.SearchText(ctx, "content", 0, 10)
	if err != nil {
		t.Fatalf("SearchText failed: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("expected 1 hit after maintenance, got %d", len(hits))
	}
}
