package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/austiecodes/vera/internal/memory/memtypes"
	"github.com/austiecodes/vera/internal/memory/memutils"
)

type embedJob struct {
	record     memtypes.ConversationRecord
	chunk      string
	retryCount int
	embedding  []float32
	err        error
}

// embedAll embeds every record and writes it into coll.
//
// Three goroutines form the pipeline: the embedder calls the embedding API,
// the writer adds documents to the collection, and the retrier re-queues
// failed jobs with linear backoff. The first job to exhaust its retries
// aborts the whole rebuild, since a partial index is never published.
func (m *MemoryIndex) embedAll(ctx context.Context, coll *chromem.Collection, records []memtypes.ConversationRecord) error {
	total := len(records)
	if total == 0 {
		return nil
	}

	slog.Debug("embedding conversation records", "count", total)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// jobsCh holds every job at most once, so re-queues never block on capacity.
	jobsCh := make(chan embedJob, total)
	writeCh := make(chan embedJob)
	retryCh := make(chan embedJob)
	resultCh := make(chan error)

	// Embedder
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case job := <-jobsCh:
				job.embedding, job.err = m.embed(ctx, job.chunk)
				select {
				case <-ctx.Done():
					return
				case writeCh <- job:
				}
			}
		}
	}()

	// Writer
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case job := <-writeCh:
				if job.err == nil {
					job.err = coll.AddDocument(ctx, chromem.Document{
						ID:        memtypes.DocumentID(job.record),
						Metadata:  memutils.NormMetadata(job.embedding),
						Content:   job.chunk,
						Embedding: job.embedding,
					})
					if job.err != nil {
						job.err = fmt.Errorf("write failed: %w", job.err)
					}
				}

				if job.err == nil {
					select {
					case <-ctx.Done():
						return
					case resultCh <- nil:
					}
					continue
				}
				select {
				case <-ctx.Done():
					return
				case retryCh <- job:
				}
			}
		}
	}()

	// Retrier
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case job := <-retryCh:
				if job.retryCount >= m.maxRetries {
					err := fmt.Errorf("record %d failed after %d retries: %w", job.record.ID, job.retryCount, job.err)
					select {
					case <-ctx.Done():
					case resultCh <- err:
					}
					return
				}

				slog.Debug("retrying record embedding", "record_id", job.record.ID, "attempt", job.retryCount+1, "error", job.err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Duration(job.retryCount+1) * m.backoff):
				}

				job.retryCount++
				job.err = nil
				job.embedding = nil

				select {
				case <-ctx.Done():
					return
				case jobsCh <- job:
				}
			}
		}
	}()

	for _, r := range records {
		jobsCh <- embedJob{record: r, chunk: memtypes.TranscriptChunk(r)}
	}

	for remaining := total; remaining > 0; remaining-- {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-resultCh:
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func (m *MemoryIndex) embed(ctx context.Context, chunk string) ([]float32, error) {
	if m.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.callTimeout)
		defer cancel()
	}
	return m.embedder.Embed(ctx, m.model, chunk)
}
