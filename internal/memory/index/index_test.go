package index

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/austiecodes/vera/internal/memory/memtypes"
	"github.com/austiecodes/vera/internal/types"
)

// fakeEmbeddingClient maps texts to fixed vectors by keyword.
type fakeEmbeddingClient struct {
	mu        sync.Mutex
	failures  map[string]int // remaining failures per keyword
	alwaysErr error
	calls     int
}

func keywordVector(text string) ([]float32, string) {
	switch {
	case strings.Contains(text, "cat"):
		return []float32{1, 0.1, 0}, "cat"
	case strings.Contains(text, "dog"):
		return []float32{0.1, 1, 0}, "dog"
	default:
		return []float32{0, 0.1, 1}, "other"
	}
}

func (f *fakeEmbeddingClient) Embed(_ context.Context, _ types.Model, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.alwaysErr != nil {
		return nil, f.alwaysErr
	}
	vec, key := keywordVector(text)
	if f.failures[key] > 0 {
		f.failures[key]--
		return nil, errors.New("transient")
	}
	return vec, nil
}

func (f *fakeEmbeddingClient) EmbedBatch(ctx context.Context, model types.Model, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, model, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbeddingClient) Dimensions(types.Model) int { return 3 }

func testRecords() []memtypes.ConversationRecord {
	return []memtypes.ConversationRecord{
		{ID: 1, Prompt: "my cat is Tom", Response: "nice cat"},
		{ID: 2, Prompt: "my dog is Rex", Response: "good dog"},
		{ID: 3, Prompt: "the weather", Response: "sunny"},
	}
}

func newTestIndex(emb *fakeEmbeddingClient, retries int) *MemoryIndex {
	return New(emb, types.Model{Provider: "fake", ModelID: "fake"},
		WithMaxRetries(retries), WithBackoff(time.Millisecond))
}

func TestRebuildThenSearchOrdersByDistance(t *testing.T) {
	idx := newTestIndex(&fakeEmbeddingClient{}, 0)

	res := idx.Rebuild(context.Background(), testRecords())
	if res.Status != memtypes.IndexReady || res.Err != nil {
		t.Fatalf("expected ready rebuild, got %+v", res)
	}
	if res.Indexed != 3 || idx.Len() != 3 {
		t.Fatalf("expected 3 indexed chunks, got %d / %d", res.Indexed, idx.Len())
	}

	hits, err := idx.Search(context.Background(), "tell me about my cat", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Chunk != "prompt: my cat is Tom response: nice cat" {
		t.Fatalf("unexpected nearest chunk: %q", hits[0].Chunk)
	}
	if hits[0].RecordID != 1 {
		t.Fatalf("unexpected record id: %d", hits[0].RecordID)
	}
	if hits[0].Distance > hits[1].Distance {
		t.Fatalf("hits not in ascending distance: %v", hits)
	}
}

func TestSearchClampsKToIndexSize(t *testing.T) {
	idx := newTestIndex(&fakeEmbeddingClient{}, 0)
	idx.Rebuild(context.Background(), testRecords()[:1])

	hits, err := idx.Search(context.Background(), "cat", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
}

func TestSearchOnEmptyIndexReturnsNothing(t *testing.T) {
	emb := &fakeEmbeddingClient{}
	idx := newTestIndex(emb, 0)

	hits, err := idx.Search(context.Background(), "cat", 2)
	if err != nil || hits != nil {
		t.Fatalf("expected no hits and no error, got %v, %v", hits, err)
	}

	res := idx.Rebuild(context.Background(), nil)
	if res.Status != memtypes.IndexReady || res.Indexed != 0 {
		t.Fatalf("empty rebuild should be ready, got %+v", res)
	}
	hits, err = idx.Search(context.Background(), "cat", 2)
	if err != nil || hits != nil {
		t.Fatalf("expected no hits and no error, got %v, %v", hits, err)
	}
	if emb.calls != 0 {
		t.Fatalf("empty index should not embed queries, got %d calls", emb.calls)
	}
}

func TestRebuildFailureLeavesIndexEmptyAndDegraded(t *testing.T) {
	emb := &fakeEmbeddingClient{}
	idx := newTestIndex(emb, 0)
	idx.Rebuild(context.Background(), testRecords())

	emb.alwaysErr = errors.New("embedding service down")
	res := idx.Rebuild(context.Background(), testRecords())
	if res.Status != memtypes.IndexDegraded {
		t.Fatalf("expected degraded, got %+v", res)
	}
	if res.Err == nil {
		t.Fatal("expected rebuild error to be reported")
	}
	if idx.Len() != 0 {
		t.Fatalf("failed rebuild must leave the index empty, has %d", idx.Len())
	}
}

func TestRebuildRetriesTransientFailures(t *testing.T) {
	emb := &fakeEmbeddingClient{failures: map[string]int{"dog": 1}}
	idx := newTestIndex(emb, 1)

	res := idx.Rebuild(context.Background(), testRecords())
	if res.Status != memtypes.IndexReady {
		t.Fatalf("expected ready after retry, got %+v", res)
	}
	if idx.Len() != 3 {
		t.Fatalf("expected 3 chunks, got %d", idx.Len())
	}
}

func TestRebuildReplacesPreviousContents(t *testing.T) {
	idx := newTestIndex(&fakeEmbeddingClient{}, 0)
	idx.Rebuild(context.Background(), testRecords())
	idx.Rebuild(context.Background(), testRecords()[2:])

	hits, err := idx.Search(context.Background(), "cat", 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].RecordID != 3 {
		t.Fatalf("expected only record 3 after rebuild, got %+v", hits)
	}
}

// vectorEmbeddingClient returns a fixed vector per exact text.
type vectorEmbeddingClient map[string][]float32

func (v vectorEmbeddingClient) Embed(_ context.Context, _ types.Model, text string) ([]float32, error) {
	vec, ok := v[text]
	if !ok {
		return nil, errors.New("unknown text " + text)
	}
	return vec, nil
}

func (v vectorEmbeddingClient) EmbedBatch(ctx context.Context, model types.Model, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := v.Embed(ctx, model, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (v vectorEmbeddingClient) Dimensions(types.Model) int { return 2 }

func TestSearchRanksByRawEuclideanDistance(t *testing.T) {
	far := memtypes.ConversationRecord{ID: 1, Prompt: "far", Response: "x"}
	near := memtypes.ConversationRecord{ID: 2, Prompt: "near", Response: "y"}
	emb := vectorEmbeddingClient{
		memtypes.TranscriptChunk(far):  {10, 0},
		memtypes.TranscriptChunk(near): {1, 1},
		"query":                        {1, 0},
	}
	idx := New(emb, types.Model{ModelID: "fake"}, WithMaxRetries(0))
	if res := idx.Rebuild(context.Background(), []memtypes.ConversationRecord{far, near}); res.Status != memtypes.IndexReady {
		t.Fatalf("expected ready rebuild, got %+v", res)
	}

	hits, err := idx.Search(context.Background(), "query", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 2 || hits[0].RecordID != 2 || hits[1].RecordID != 1 {
		t.Fatalf("expected near before far, got %+v", hits)
	}
	if math.Abs(hits[0].Distance-1) > 1e-5 || math.Abs(hits[1].Distance-9) > 1e-5 {
		t.Fatalf("expected distances 1 and 9, got %v and %v", hits[0].Distance, hits[1].Distance)
	}

	top, err := idx.Search(context.Background(), "query", 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(top) != 1 || top[0].RecordID != 2 {
		t.Fatalf("expected only the near record for k=1, got %+v", top)
	}
}

// blockingEmbeddingClient waits until its context ends.
type blockingEmbeddingClient struct{ fakeEmbeddingClient }

func (b *blockingEmbeddingClient) Embed(ctx context.Context, _ types.Model, _ string) ([]float32, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRebuildTimesOutHungEmbeddings(t *testing.T) {
	idx := New(&blockingEmbeddingClient{}, types.Model{ModelID: "fake"},
		WithMaxRetries(1), WithBackoff(time.Millisecond), WithCallTimeout(20*time.Millisecond))

	done := make(chan memtypes.RebuildResult, 1)
	go func() { done <- idx.Rebuild(context.Background(), testRecords()) }()

	select {
	case res := <-done:
		if res.Status != memtypes.IndexDegraded {
			t.Fatalf("expected degraded rebuild, got %+v", res)
		}
		if !errors.Is(res.Err, context.DeadlineExceeded) {
			t.Fatalf("expected deadline error, got %v", res.Err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("rebuild still blocked with a 20ms call timeout")
	}
	if idx.Len() != 0 {
		t.Fatalf("timed out rebuild must leave the index empty, has %d", idx.Len())
	}
}
