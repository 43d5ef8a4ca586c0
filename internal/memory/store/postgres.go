package store

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed sql/postgres_schema.sql
var postgresSchemaSQL string

//go:embed sql/postgres_queries.sql
var postgresQueriesSQL string

var postgresQueries = parseQueries(postgresQueriesSQL)

// PostgresStore persists conversations in Postgres. Postgres serializes
// concurrent writers itself, so no client-side lock is needed.
type PostgresStore struct {
	db *pgxpool.Pool
}

var _ ConversationStore = (*PostgresStore)(nil)

// NewPostgresStore connects to Postgres and ensures the table exists.
func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	if _, err := db.Exec(ctx, postgresSchemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) FetchAll(ctx context.Context) ([]ConversationRecord, error) {
	rows, err := p.db.Query(ctx, postgresQueries["SelectAllConversations"])
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	return collectPostgresRecords(rows)
}

func (p *PostgresStore) Recent(ctx context.Context, limit int) ([]ConversationRecord, error) {
	rows, err := p.db.Query(ctx, postgresQueries["SelectRecentConversations"], limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent conversations: %w", err)
	}
	return collectPostgresRecords(rows)
}

func (p *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := p.db.QueryRow(ctx, postgresQueries["CountConversations"]).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count conversations: %w", err)
	}
	return n, nil
}

func (p *PostgresStore) Append(ctx context.Context, prompt, response string) error {
	if _, err := p.db.Exec(ctx, postgresQueries["InsertConversation"], prompt, response, time.Now()); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

func (p *PostgresStore) DeleteMostRecent(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, postgresQueries["DeleteMostRecentConversation"]); err != nil {
		return fmt.Errorf("failed to delete latest conversation: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (p *PostgresStore) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	p.db.Close()
	return nil
}

func collectPostgresRecords(rows pgx.Rows) ([]ConversationRecord, error) {
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ConversationRecord, error) {
		var rec ConversationRecord
		err := row.Scan(&rec.ID, &rec.Prompt, &rec.Response, &rec.CreatedAt)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan conversation rows: %w", err)
	}
	return records, nil
}
