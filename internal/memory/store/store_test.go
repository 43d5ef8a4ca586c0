package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/austiecodes/vera/internal/utils"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	s, err := NewSQLiteStoreWithDB(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestParseQueriesSplitsNamedBlocks(t *testing.T) {
	got := parseQueries("-- name: A\nSELECT 1;\n\n-- name: B\nSELECT 2;\n")
	if got["A"] != "SELECT 1;" || got["B"] != "SELECT 2;" {
		t.Fatalf("unexpected queries: %#v", got)
	}
	for _, name := range []string{"InsertConversation", "SelectAllConversations", "SelectRecentConversations", "DeleteMostRecentConversation", "CountConversations"} {
		if sqliteQueries[name] == "" {
			t.Fatalf("sqlite query %s missing", name)
		}
		if postgresQueries[name] == "" {
			t.Fatalf("postgres query %s missing", name)
		}
	}
}

func TestSQLiteStoreAppendFetchAllAscending(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Append(ctx, "hi", "hello"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(ctx, "how are you", "fine"); err != nil {
		t.Fatalf("append: %v", err)
	}

	records, err := s.FetchAll(ctx)
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Prompt != "hi" || records[1].Prompt != "how are you" {
		t.Fatalf("unexpected order: %+v", records)
	}
	if records[0].ID >= records[1].ID {
		t.Fatalf("ids not ascending: %d, %d", records[0].ID, records[1].ID)
	}
	if records[1].CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}
}

func TestSQLiteStoreDeleteMostRecent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.DeleteMostRecent(ctx); err != nil {
		t.Fatalf("delete on empty store should be a no-op: %v", err)
	}

	_ = s.Append(ctx, "first", "a")
	_ = s.Append(ctx, "second", "b")
	if err := s.DeleteMostRecent(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}

	records, err := s.FetchAll(ctx)
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	if len(records) != 1 || records[0].Prompt != "first" {
		t.Fatalf("expected only the first record to remain, got %+v", records)
	}
}

func TestSQLiteStoreRecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for _, p := range []string{"a", "b", "c"} {
		_ = s.Append(ctx, p, p)
	}

	records, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(records) != 2 || records[0].Prompt != "c" || records[1].Prompt != "b" {
		t.Fatalf("unexpected recent records: %+v", records)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), utils.StorageConfig{Driver: "mysql"})
	if !errors.Is(err, ErrUnsupportedDriver) {
		t.Fatalf("expected ErrUnsupportedDriver, got %v", err)
	}
}

func TestOpenPostgresRequiresDSN(t *testing.T) {
	if _, err := Open(context.Background(), utils.StorageConfig{Driver: "postgres"}); err == nil {
		t.Fatal("expected error for missing dsn")
	}
}

func TestSQLiteStoreCount(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if n, err := s.Count(ctx); err != nil || n != 0 {
		t.Fatalf("expected empty count, got %d, %v", n, err)
	}
	for _, p := range []string{"a", "b", "c"} {
		_ = s.Append(ctx, p, p)
	}
	_ = s.DeleteMostRecent(ctx)

	if n, err := s.Count(ctx); err != nil || n != 2 {
		t.Fatalf("expected 2 records, got %d, %v", n, err)
	}
}
