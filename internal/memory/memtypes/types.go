package memtypes

import (
	"strconv"
	"time"
)

// ConversationRecord is one persisted prompt/response exchange.
// IDs are assigned by the store and increase with insertion order.
type ConversationRecord struct {
	ID        int64     `json:"id"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// TranscriptChunk renders a record as the text that gets embedded and
// recalled.
func TranscriptChunk(r ConversationRecord) string {
	return "prompt: " + r.Prompt + " response: " + r.Response
}

// DocumentID is the index key for a record.
func DocumentID(r ConversationRecord) string {
	return strconv.FormatInt(r.ID, 10)
}

// SearchHit is a transcript chunk returned by a nearest-neighbour search.
// Distance is Euclidean; smaller is closer.
type SearchHit struct {
	Chunk    string  `json:"chunk"`
	RecordID int64   `json:"record_id"`
	Distance float64 `json:"distance"`
}

// IndexStatus reports whether the memory index is usable.
type IndexStatus string

const (
	// IndexReady means the index holds every stored record.
	IndexReady IndexStatus = "ready"
	// IndexDegraded means the rebuild failed and the index is empty.
	IndexDegraded IndexStatus = "degraded"
)

// RebuildResult is the outcome of rebuilding the memory index.
type RebuildResult struct {
	Status  IndexStatus `json:"status"`
	Indexed int         `json:"indexed"`
	Err     error       `json:"-"`
}
