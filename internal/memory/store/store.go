package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/austiecodes/vera/internal/consts"
	"github.com/austiecodes/vera/internal/memory/memtypes"
	"github.com/austiecodes/vera/internal/utils"
)

// ErrUnsupportedDriver is returned by Open for an unknown storage driver.
var ErrUnsupportedDriver = errors.New("unsupported storage driver")

// ConversationRecord is re-exported from memtypes for convenience.
type ConversationRecord = memtypes.ConversationRecord

// ConversationStore is the durable, append-only log of exchanges shared by
// every session.
type ConversationStore interface {
	// FetchAll returns every record in ascending id order.
	FetchAll(ctx context.Context) ([]ConversationRecord, error)
	// Append persists one exchange with a fresh id.
	Append(ctx context.Context, prompt, response string) error
	// DeleteMostRecent removes the record with the highest id. It is a
	// no-op on an empty store.
	DeleteMostRecent(ctx context.Context) error
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]ConversationRecord, error)
	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)
	Close() error
}

// Open returns the store selected by the storage config.
func Open(ctx context.Context, cfg utils.StorageConfig) (ConversationStore, error) {
	switch cfg.Driver {
	case consts.StorageSQLite, "":
		return NewSQLiteStore(cfg.SQLitePath)
	case consts.StoragePostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres storage requires postgres_dsn")
		}
		return NewPostgresStore(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
}

var queryNameRe = regexp.MustCompile(`(?m)^--\s*name:\s*(\w+)\s*$`)

// parseQueries extracts named queries from a SQL file.
// Queries are marked with "-- name: QueryName" comments.
func parseQueries(content string) map[string]string {
	result := make(map[string]string)
	matches := queryNameRe.FindAllStringSubmatchIndex(content, -1)

	for i, match := range matches {
		name := content[match[2]:match[3]]
		start := match[1]
		end := len(content)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		result[name] = strings.TrimSpace(content[start:end])
	}

	return result
}
