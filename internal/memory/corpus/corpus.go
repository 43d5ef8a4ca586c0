package corpus

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"

	chromem "github.com/philippgille/chromem-go"
	"golang.org/x/sync/errgroup"

	"github.com/austiecodes/vera/internal/client"
	"github.com/austiecodes/vera/internal/memory/memutils"
	"github.com/austiecodes/vera/internal/types"
)

// CollectionName is the chromem collection holding corpus passages.
const CollectionName = "reference_corpus"

// Options describes where a corpus comes from and how to embed it.
type Options struct {
	SourcePath  string
	CachePath   string
	MaxMessages int
	// Concurrency bounds parallel embedding calls during a build.
	Concurrency int
	Embedder    client.EmbeddingClient
	Model       types.Model
}

// Index is a read-only similarity index over reference passages.
type Index struct {
	coll     *chromem.Collection
	embedder client.EmbeddingClient
	model    types.Model
}

// Open loads the cached artifact when one exists, otherwise builds the
// index from the source and writes the artifact for later runs.
func Open(ctx context.Context, opts Options) (*Index, error) {
	if opts.CachePath != "" {
		if _, err := os.Stat(opts.CachePath); err == nil {
			idx, err := load(opts)
			if err == nil {
				slog.Info("reference corpus loaded", "path", opts.CachePath, "passages", idx.Len())
				return idx, nil
			}
			slog.Warn("reference corpus cache unreadable, rebuilding", "path", opts.CachePath, "error", err)
		}
	}
	return Build(ctx, opts)
}

func load(opts Options) (*Index, error) {
	db := chromem.NewDB()
	if err := db.ImportFromFile(opts.CachePath, ""); err != nil {
		return nil, fmt.Errorf("import corpus: %w", err)
	}
	coll := db.GetCollection(CollectionName, embeddingFunc(opts.Embedder, opts.Model))
	if coll == nil || coll.Count() == 0 {
		return nil, errors.New("corpus artifact has no passages")
	}
	return &Index{coll: coll, embedder: opts.Embedder, model: opts.Model}, nil
}

// Build embeds every cleaned source entry and persists the artifact when a
// cache path is set.
func Build(ctx context.Context, opts Options) (*Index, error) {
	if opts.SourcePath == "" {
		return nil, errors.New("reference corpus source not configured")
	}
	msgs, err := LoadMessages(opts.SourcePath, opts.MaxMessages)
	if err != nil {
		return nil, err
	}

	slog.Info("embedding reference corpus", "passages", len(msgs))

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	docs := make([]chromem.Document, len(msgs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, msg := range msgs {
		g.Go(func() error {
			emb, err := opts.Embedder.Embed(gctx, opts.Model, msg)
			if err != nil {
				return fmt.Errorf("embed passage %d: %w", i, err)
			}
			docs[i] = chromem.Document{
				ID:        strconv.Itoa(i),
				Metadata:  memutils.NormMetadata(emb),
				Content:   msg,
				Embedding: emb,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	db := chromem.NewDB()
	coll, err := db.CreateCollection(CollectionName, nil, embeddingFunc(opts.Embedder, opts.Model))
	if err != nil {
		return nil, fmt.Errorf("create corpus collection: %w", err)
	}
	if err := coll.AddDocuments(ctx, docs, concurrency); err != nil {
		return nil, fmt.Errorf("add corpus passages: %w", err)
	}

	if opts.CachePath != "" {
		if err := export(db, opts.CachePath); err != nil {
			return nil, err
		}
		slog.Info("reference corpus saved", "path", opts.CachePath)
	}

	return &Index{coll: coll, embedder: opts.Embedder, model: opts.Model}, nil
}

// export writes through a temp file so a crash never leaves a truncated
// artifact behind.
func export(db *chromem.DB, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create corpus cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*-"+filepath.Base(path))
	if err != nil {
		return fmt.Errorf("create corpus temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := db.ExportToFile(tmpPath, true, "", CollectionName); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("export corpus: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("save corpus artifact: %w", err)
	}
	return nil
}

func embeddingFunc(embedder client.EmbeddingClient, model types.Model) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return embedder.Embed(ctx, model, text)
	}
}

// Len returns the number of passages.
func (x *Index) Len() int {
	return x.coll.Count()
}

// Retrieve returns the k passages nearest to prompt by Euclidean distance
// between the raw embeddings, nearest first. The passages are not filtered
// for relevance.
func (x *Index) Retrieve(ctx context.Context, prompt string, k int) ([]string, error) {
	total := x.coll.Count()
	if k <= 0 || total == 0 {
		return nil, nil
	}
	emb, err := x.embedder.Embed(ctx, x.model, prompt)
	if err != nil {
		return nil, fmt.Errorf("embed prompt: %w", err)
	}
	results, err := x.coll.QueryEmbedding(ctx, emb, total, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query corpus: %w", err)
	}

	type ranked struct {
		content  string
		distance float64
	}
	candidates := make([]ranked, len(results))
	for i, r := range results {
		candidates[i] = ranked{r.Content, memutils.EuclideanDistance(emb, memutils.Restore(r.Embedding, r.Metadata))}
	}
	slices.SortStableFunc(candidates, func(a, b ranked) int {
		return cmp.Compare(a.distance, b.distance)
	})

	out := make([]string, 0, min(k, len(candidates)))
	for _, c := range candidates[:min(k, len(candidates))] {
		out = append(out, c.content)
	}
	return out, nil
}
