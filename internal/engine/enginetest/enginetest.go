// Package enginetest provides fakes for building engines in tests.
package enginetest

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/austiecodes/vera/internal/client"
	"github.com/austiecodes/vera/internal/engine"
	"github.com/austiecodes/vera/internal/memory/store"
	"github.com/austiecodes/vera/internal/types"
)

// Stream replays fixed chunks.
type Stream struct {
	chunks []string
	idx    int
}

func (s *Stream) Next() bool {
	if s.idx < len(s.chunks) {
		s.idx++
		return true
	}
	return false
}

func (s *Stream) GetChunk() string { return s.chunks[s.idx-1] }
func (s *Stream) Err() error       { return nil }
func (s *Stream) Close() error     { return nil }

// QueryClient answers every call with Reply. A nil Reply echoes the last
// message back prefixed with "echo: ".
type QueryClient struct {
	Reply func(ctx context.Context, msgs []types.Message) (string, error)

	mu    sync.Mutex
	calls int
}

var _ client.QueryClient = (*QueryClient)(nil)

func (q *QueryClient) ChatStreamMessages(ctx context.Context, _ types.Model, msgs []types.Message) (client.StreamResponse, error) {
	q.mu.Lock()
	q.calls++
	q.mu.Unlock()

	reply := q.Reply
	if reply == nil {
		reply = Echo
	}
	text, err := reply(ctx, msgs)
	if err != nil {
		return nil, err
	}
	return &Stream{chunks: []string{text}}, nil
}

func (q *QueryClient) ListModels(context.Context) ([]string, error) {
	return []string{"fake"}, nil
}

// Calls returns how many generation calls were made.
func (q *QueryClient) Calls() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.calls
}

// Echo replies with the last message content.
func Echo(_ context.Context, msgs []types.Message) (string, error) {
	return "echo: " + msgs[len(msgs)-1].Content, nil
}

// EmbeddingClient maps text to one of two directions by keyword.
type EmbeddingClient struct{}

var _ client.EmbeddingClient = EmbeddingClient{}

func (EmbeddingClient) Embed(_ context.Context, _ types.Model, text string) ([]float32, error) {
	if strings.Contains(text, "cat") {
		return []float32{1, 0.1}, nil
	}
	return []float32{0.1, 1}, nil
}

func (e EmbeddingClient) EmbedBatch(ctx context.Context, model types.Model, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = e.Embed(ctx, model, t)
	}
	return out, nil
}

func (EmbeddingClient) Dimensions(types.Model) int { return 2 }

// NewStore returns an in-memory SQLite store closed with the test.
func NewStore(t testing.TB) *store.SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	s, err := store.NewSQLiteStoreWithDB(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// Deps wires chat and tool to the given clients over st.
func Deps(st store.ConversationStore, chat, tool client.QueryClient) engine.Deps {
	return engine.Deps{
		Store:          st,
		Chat:           chat,
		ChatModel:      types.Model{Provider: "fake", ModelID: "chat"},
		Tool:           tool,
		ToolModel:      types.Model{Provider: "fake", ModelID: "tool"},
		Embedder:       EmbeddingClient{},
		EmbeddingModel: types.Model{Provider: "fake", ModelID: "embed"},
	}
}

// Options keeps test engines fast.
func Options() []engine.Option {
	return []engine.Option{
		engine.WithRebuildRetries(0, time.Millisecond),
		engine.WithCallTimeout(time.Second),
	}
}
