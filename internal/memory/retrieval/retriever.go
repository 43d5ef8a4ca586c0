package retrieval

import (
	"context"
	"log/slog"
	"time"

	"github.com/austiecodes/vera/internal/memory/index"
	"github.com/austiecodes/vera/internal/memory/memtypes"
)

// ReferenceSource supplies unfiltered stylistic passages for a prompt.
type ReferenceSource interface {
	Retrieve(ctx context.Context, prompt string, k int) ([]string, error)
}

// Config tunes a Retriever.
type Config struct {
	// ResultsPerQuery is the k used for every memory index search.
	ResultsPerQuery int
	// CorpusK is how many reference passages to fetch.
	CorpusK int
	// CallTimeout bounds each index or corpus lookup.
	CallTimeout time.Duration
}

// Recollection is everything recalled for one prompt.
type Recollection struct {
	// Memories are relevance-filtered transcript chunks in acceptance order.
	Memories []string `json:"memories"`
	// References are corpus passages, never filtered.
	References []string `json:"references,omitempty"`
}

// Retriever runs expand, search and classify to produce recalled memories.
type Retriever struct {
	expander   Expander
	classifier Classifier
	index      index.Searcher
	corpus     ReferenceSource
	config     Config
}

// NewRetriever wires the retrieval pipeline. idx and corpus may be nil.
func NewRetriever(expander Expander, classifier Classifier, idx index.Searcher, corpus ReferenceSource, config Config) *Retriever {
	if config.ResultsPerQuery <= 0 {
		config.ResultsPerQuery = 2
	}
	return &Retriever{
		expander:   expander,
		classifier: classifier,
		index:      idx,
		corpus:     corpus,
		config:     config,
	}
}

// Recall returns the deduplicated set of chunks judged relevant to at
// least one expanded query. Each query's candidates are classified against
// that query only; a chunk already accepted is never classified again.
// Index failures degrade to fewer memories and are never returned.
func (r *Retriever) Recall(ctx context.Context, prompt string) []string {
	if r.index == nil {
		return nil
	}

	queries := r.expander.Expand(ctx, prompt)

	var accepted []string
	seen := make(map[string]struct{})
	for _, q := range queries {
		hits, err := r.search(ctx, q)
		if err != nil {
			slog.Warn("memory search failed", "query", q, "error", err)
			continue
		}
		for _, h := range hits {
			if _, ok := seen[h.Chunk]; ok {
				continue
			}
			if r.classifier.IsRelevant(ctx, q, h.Chunk) {
				seen[h.Chunk] = struct{}{}
				accepted = append(accepted, h.Chunk)
			}
		}
	}

	slog.Debug("memories recalled", "queries", len(queries), "count", len(accepted))
	return accepted
}

func (r *Retriever) search(ctx context.Context, query string) ([]memtypes.SearchHit, error) {
	ctx, cancel := withTimeout(ctx, r.config.CallTimeout)
	defer cancel()
	return r.index.Search(ctx, query, r.config.ResultsPerQuery)
}

// References fetches corpus passages for prompt. It returns nil when no
// corpus is configured or the lookup fails.
func (r *Retriever) References(ctx context.Context, prompt string) []string {
	if r.corpus == nil || r.config.CorpusK <= 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx, r.config.CallTimeout)
	defer cancel()

	passages, err := r.corpus.Retrieve(ctx, prompt, r.config.CorpusK)
	if err != nil {
		slog.Warn("reference corpus lookup failed", "error", err)
		return nil
	}
	return passages
}

// RecallWithCorpus gathers both memories and reference passages.
func (r *Retriever) RecallWithCorpus(ctx context.Context, prompt string) Recollection {
	return Recollection{
		Memories:   r.Recall(ctx, prompt),
		References: r.References(ctx, prompt),
	}
}
