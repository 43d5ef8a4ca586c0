package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed sql/schema.sql
var schemaSQL string

//go:embed sql/queries.sql
var queriesSQL string

var sqliteQueries = parseQueries(queriesSQL)

// SQLiteStore persists conversations in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
	// SQLite allows a single writer; concurrent sessions queue here rather
	// than failing with SQLITE_BUSY.
	writeMu sync.Mutex
}

var _ ConversationStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open conversation database: %w", err)
	}

	s, err := NewSQLiteStoreWithDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStoreWithDB wraps an existing connection.
// This is primarily used for testing.
func NewSQLiteStoreWithDB(db *sql.DB) (*SQLiteStore, error) {
	// One connection keeps ":memory:" databases alive and shared.
	db.SetMaxOpenConns(1)
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) FetchAll(ctx context.Context) ([]ConversationRecord, error) {
	rows, err := s.db.QueryContext(ctx, sqliteQueries["SelectAllConversations"])
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()
	return scanSQLiteRecords(rows)
}

func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]ConversationRecord, error) {
	rows, err := s.db.QueryContext(ctx, sqliteQueries["SelectRecentConversations"], limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent conversations: %w", err)
	}
	defer rows.Close()
	return scanSQLiteRecords(rows)
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, sqliteQueries["CountConversations"]).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count conversations: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Append(ctx context.Context, prompt, response string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.db.ExecContext(ctx, sqliteQueries["InsertConversation"], prompt, response, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteMostRecent(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.db.ExecContext(ctx, sqliteQueries["DeleteMostRecentConversation"]); err != nil {
		return fmt.Errorf("failed to delete latest conversation: %w", err)
	}
	return nil
}

func scanSQLiteRecords(rows *sql.Rows) ([]ConversationRecord, error) {
	var records []ConversationRecord
	for rows.Next() {
		var rec ConversationRecord
		var createdAtUnix int64
		if err := rows.Scan(&rec.ID, &rec.Prompt, &rec.Response, &createdAtUnix); err != nil {
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		rec.CreatedAt = time.Unix(createdAtUnix, 0)
		records = append(records, rec)
	}
	return records, rows.Err()
}
