package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// Store defines the data access interface for the message archive.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// InsertMessage atomically appends one record to the messages table and
	// one row to the full-text index. Both succeed or both are rolled back.
	InsertMessage(ctx context.Context, message *Message) error

	// GetMessageByID retrieves a record by id. Returns nil, nil if not found.
	GetMessageByID(ctx context.Context, id int64) (*Message, error)

	// SearchText executes a ranked full-text match against the search index,
	// ordered by relevance rank then id descending.
	SearchText(ctx context.Context, term string, offset, limit int) ([]Message, error)

	// SearchLike executes a case-insensitive substring match, ordered by id
	// descending.
	SearchLike(ctx context.Context, term string, offset, limit int) ([]Message, error)

	// ImportMessages bulk-loads records in a single transaction: all rows are
	// inserted into the messages table, then the full-text index is rebuilt
	// from the table in one pass. Any row failure aborts the whole import.
	ImportMessages(ctx context.Context, messages []*Message) error

	// CountMessages returns the number of archived records.
	CountMessages(ctx context.Context) (int64, error)

	// RunMaintenance compacts the full-text index and vacuums the database.
	RunMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

const messageColumns = `id, date, from_name, from_id, text, reply_to_message_id, forwarded_from`

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InsertMessage appends one record to the archive and its full-text index
// in a single transaction.
func (s *sqlxStore) InsertMessage(ctx context.Context, message *Message) error {
	if message == nil {
		return fmt.Errorf("cannot insert nil message")
	}
	if message.ID == 0 {
		return fmt.Errorf("message must have a non-zero id")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for message insert",
			"message_id", message.ID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				if !errors.Is(rollbackErr, sql.ErrTxDone) {
					s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
				}
			}
		}
	}()

	const insertQuery = `
        INSERT INTO messages (id, date, from_name, from_id, text, reply_to_message_id, forwarded_from)
        VALUES (:id, :date, :from_name, :from_id, :text, :reply_to_message_id, :forwarded_from);
    `
	if _, err := tx.NamedExecContext(ctx, insertQuery, message); err != nil {
		s.logger.ErrorContext(ctx, "Error inserting message", "message_id", message.ID, "error", err)
		return fmt.Errorf("failed to insert message %d: %w", message.ID, err)
	}

	const indexQuery = `INSERT INTO search (id, text) VALUES (?, ?);`
	if _, err := tx.ExecContext(ctx, indexQuery, message.ID, message.Text); err != nil {
		s.logger.ErrorContext(ctx, "Error indexing message", "message_id", message.ID, "error", err)
		return fmt.Errorf("failed to index message %d: %w", message.ID, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit message insert", "message_id", message.ID, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Message archived", "message_id", message.ID)
	return nil
}

// GetMessageByID retrieves a record by id. Returns nil, nil if not found;
// a dangling reply reference therefore resolves to "not found", not an error.
func (s *sqlxStore) GetMessageByID(ctx context.Context, id int64) (*Message, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var message Message
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = ?`

	err := s.db.GetContext(ctx, &message, query, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting message by id", "message_id", id, "error", err)
		return nil, fmt.Errorf("failed to get message %d: %w", id, err)
	}

	return &message, nil
}

// SearchText runs a ranked FTS5 match. The term is passed through to the
// MATCH operator, so FTS5 query syntax restrictions apply to it.
func (s *sqlxStore) SearchText(ctx context.Context, term string, offset, limit int) ([]Message, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var messages []Message
	query := `
        SELECT msgs.id, msgs.date, msgs.from_name, msgs.from_id, msgs.text,
               msgs.reply_to_message_id, msgs.forwarded_from
        FROM messages AS msgs
        INNER JOIN (
            SELECT id
            FROM search
            WHERE search MATCH ?
            ORDER BY rank, id DESC
            LIMIT ? OFFSET ?
        ) AS hits ON msgs.id = hits.id;
    `

	err := s.db.SelectContext(ctx, &messages, query, term, limit, offset)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error running full-text search",
			"term", term, "offset", offset, "error", err)
		return nil, fmt.Errorf("full-text search for %q failed: %w", term, err)
	}

	return messages, nil
}

// SearchLike runs a case-insensitive substring match ordered by recency.
func (s *sqlxStore) SearchLike(ctx context.Context, term string, offset, limit int) ([]Message, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var messages []Message
	query := `
        SELECT ` + messageColumns + `
        FROM messages
        WHERE text LIKE ? COLLATE NOCASE
        ORDER BY id DESC
        LIMIT ? OFFSET ?;
    `

	err := s.db.SelectContext(ctx, &messages, query, "%"+term+"%", limit, offset)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error running substring search",
			"term", term, "offset", offset, "error", err)
		return nil, fmt.Errorf("substring search for %q failed: %w", term, err)
	}

	return messages, nil
}

// ImportMessages bulk-loads records inside one transaction. Row inserts run
// first; the full-text index is then rebuilt from the messages table in a
// single pass so both tables stay row-count consistent. A failing row aborts
// the entire import with no partial commit.
func (s *sqlxStore) ImportMessages(ctx context.Context, messages []*Message) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin import transaction", "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				if !errors.Is(rollbackErr, sql.ErrTxDone) {
					s.logger.WarnContext(ctx, "Error rolling back import transaction", "error", rollbackErr)
				}
			}
		}
	}()

	const insertQuery = `
        INSERT INTO messages (id, date, from_name, from_id, text, reply_to_message_id, forwarded_from)
        VALUES (:id, :date, :from_name, :from_id, :text, :reply_to_message_id, :forwarded_from);
    `
	stmt, err := tx.PrepareNamedContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare import statement: %w", err)
	}
	defer stmt.Close()

	for _, message := range messages {
		if _, err := stmt.ExecContext(ctx, message); err != nil {
			s.logger.ErrorContext(ctx, "Import aborted on row failure",
				"message_id", message.ID, "error", err)
			return fmt.Errorf("failed to import message %d: %w", message.ID, err)
		}
	}

	// Rebuild the index from the table rather than per row; this keeps the
	// index consistent even when importing into a non-empty archive.
	if _, err := tx.ExecContext(ctx, `DELETE FROM search;`); err != nil {
		return fmt.Errorf("failed to clear search index: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO search (id, text) SELECT id, text FROM messages;`); err != nil {
		return fmt.Errorf("failed to rebuild search index: %w", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit import transaction", "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.InfoContext(ctx, "Import committed", "rows", len(messages))
	return nil
}

// CountMessages returns the number of archived records.
func (s *sqlxStore) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages`); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

// RunMaintenance merges the FTS index b-tree and vacuums the database.
// VACUUM must run outside a transaction in SQLite.
func (s *sqlxStore) RunMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance")

	if _, err := s.db.ExecContext(ctx, `INSERT INTO search (search) VALUES ('optimize');`); err != nil {
		s.logger.ErrorContext(ctx, "Search index optimize failed", "error", err)
		return fmt.Errorf("failed to optimize search index: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `VACUUM;`); err != nil {
		s.logger.ErrorContext(ctx, "VACUUM failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance completed")
	return nil
}
