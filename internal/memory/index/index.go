package index

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/austiecodes/vera/internal/client"
	"github.com/austiecodes/vera/internal/memory/memtypes"
	"github.com/austiecodes/vera/internal/memory/memutils"
	"github.com/austiecodes/vera/internal/types"
)

// CollectionName is the chromem collection holding transcript chunks.
const CollectionName = "vera_conversations"

const (
	defaultMaxRetries = 2
	defaultBackoff    = 2 * time.Second
)

// Searcher finds the transcript chunks nearest to a query.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]memtypes.SearchHit, error)
}

// MemoryIndex is an in-memory similarity index over transcript chunks.
// It is owned by a single engine and replaced wholesale by Rebuild.
type MemoryIndex struct {
	embedder   client.EmbeddingClient
	model      types.Model
	maxRetries  int
	backoff     time.Duration
	callTimeout time.Duration

	mu   sync.RWMutex
	coll *chromem.Collection
}

var _ Searcher = (*MemoryIndex)(nil)

// Option configures a MemoryIndex.
type Option func(*MemoryIndex)

// WithMaxRetries bounds how often a failed chunk is retried during Rebuild.
func WithMaxRetries(n int) Option {
	return func(m *MemoryIndex) {
		if n >= 0 {
			m.maxRetries = n
		}
	}
}

// WithBackoff sets the base delay between retries; attempt n waits n*d.
func WithBackoff(d time.Duration) Option {
	return func(m *MemoryIndex) { m.backoff = d }
}

// WithCallTimeout bounds each embedding call made during Rebuild. A call that
// times out counts as a failed attempt. Zero disables the bound.
func WithCallTimeout(d time.Duration) Option {
	return func(m *MemoryIndex) { m.callTimeout = d }
}

// New returns an empty index that embeds with the given client and model.
func New(embedder client.EmbeddingClient, model types.Model, opts ...Option) *MemoryIndex {
	m := &MemoryIndex{
		embedder:   embedder,
		model:      model,
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// embeddingFunc lets chromem embed on its own if a document ever arrives
// without a vector.
func (m *MemoryIndex) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return m.embedder.Embed(ctx, m.model, text)
	}
}

// Rebuild replaces the index contents with one chunk per record. The swap
// is atomic: searches see either the old contents or the complete new set.
// On failure the index is left empty and the result is Degraded.
func (m *MemoryIndex) Rebuild(ctx context.Context, records []memtypes.ConversationRecord) memtypes.RebuildResult {
	coll, err := chromem.NewDB().CreateCollection(CollectionName, nil, m.embeddingFunc())
	if err == nil {
		err = m.embedAll(ctx, coll, records)
	}
	if err != nil {
		m.swap(nil)
		slog.Warn("memory index rebuild failed, continuing without recall", "records", len(records), "error", err)
		return memtypes.RebuildResult{Status: memtypes.IndexDegraded, Err: err}
	}

	m.swap(coll)
	slog.Debug("memory index rebuilt", "records", coll.Count())
	return memtypes.RebuildResult{Status: memtypes.IndexReady, Indexed: coll.Count()}
}

func (m *MemoryIndex) swap(coll *chromem.Collection) {
	m.mu.Lock()
	m.coll = coll
	m.mu.Unlock()
}

// Len returns the number of indexed chunks.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.coll == nil {
		return 0
	}
	return m.coll.Count()
}

// Search embeds the query and returns up to k chunks ordered by ascending
// Euclidean distance between the raw embeddings. k larger than the index is
// clamped; an empty index yields no hits and no error.
//
// chromem ranks by cosine similarity, so every chunk is fetched and re-ranked
// against the restored vectors.
func (m *MemoryIndex) Search(ctx context.Context, query string, k int) ([]memtypes.SearchHit, error) {
	m.mu.RLock()
	coll := m.coll
	m.mu.RUnlock()

	if coll == nil || k <= 0 {
		return nil, nil
	}
	total := coll.Count()
	if total == 0 {
		return nil, nil
	}

	emb, err := m.embedder.Embed(ctx, m.model, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := coll.QueryEmbedding(ctx, emb, total, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query memory index: %w", err)
	}

	hits := make([]memtypes.SearchHit, 0, len(results))
	for _, r := range results {
		id, _ := strconv.ParseInt(r.ID, 10, 64)
		hits = append(hits, memtypes.SearchHit{
			Chunk:    r.Content,
			RecordID: id,
			Distance: memutils.EuclideanDistance(emb, memutils.Restore(r.Embedding, r.Metadata)),
		})
	}
	slices.SortStableFunc(hits, func(a, b memtypes.SearchHit) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	return hits[:min(k, len(hits))], nil
}
