package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/austiecodes/vera/internal/client"
	"github.com/austiecodes/vera/internal/memory/index"
	"github.com/austiecodes/vera/internal/memory/memtypes"
	"github.com/austiecodes/vera/internal/memory/retrieval"
	"github.com/austiecodes/vera/internal/memory/store"
	"github.com/austiecodes/vera/internal/types"
)

const (
	memoryInstruction    = "Use the following relevant memories to respond intelligently, but do not repeat verbatim:\n"
	referenceInstruction = "Use these chat examples as reference for style and context, but do not repeat verbatim:\n"
)

// Deps are the collaborators an engine talks to.
type Deps struct {
	Store store.ConversationStore

	Chat      client.QueryClient
	ChatModel types.Model

	// Tool drives query expansion and relevance classification. It defaults
	// to Chat when nil.
	Tool      client.QueryClient
	ToolModel types.Model

	Embedder       client.EmbeddingClient
	EmbeddingModel types.Model

	// Corpus is optional.
	Corpus retrieval.ReferenceSource
}

// Engine is one conversation: a permanent window seeded with the system
// prompt plus the memory index built when the engine was created.
//
// Respond calls are sequential per engine. State is guarded by mu, which is
// never held across a model, embedding or store call.
type Engine struct {
	store     store.ConversationStore
	chat      client.QueryClient
	chatModel types.Model
	index     *index.MemoryIndex
	retriever *retrieval.Retriever
	opts      options

	inflight atomic.Bool

	mu        sync.Mutex
	window    []types.Message
	ephemeral []types.Message
	status    memtypes.RebuildResult
}

// New builds an engine and its memory index from every stored record.
// Index failures never prevent construction; they are reported in the
// returned RebuildResult and recall stays empty until the next engine.
func New(ctx context.Context, deps Deps, opts ...Option) (*Engine, memtypes.RebuildResult) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	tool, toolModel := deps.Tool, deps.ToolModel
	if tool == nil {
		tool, toolModel = deps.Chat, deps.ChatModel
	}

	idx := index.New(deps.Embedder, deps.EmbeddingModel,
		index.WithMaxRetries(o.rebuildRetries),
		index.WithBackoff(o.rebuildBackoff),
		index.WithCallTimeout(o.callTimeout),
	)

	e := &Engine{
		store:     deps.Store,
		chat:      deps.Chat,
		chatModel: deps.ChatModel,
		index:     idx,
		retriever: retrieval.NewRetriever(
			retrieval.NewQueryExpander(tool, toolModel, o.callTimeout),
			retrieval.NewRelevanceClassifier(tool, toolModel, o.callTimeout),
			idx,
			deps.Corpus,
			retrieval.Config{
				ResultsPerQuery: o.resultsPerQuery,
				CorpusK:         o.corpusK,
				CallTimeout:     o.callTimeout,
			},
		),
		opts:   o,
		window: []types.Message{types.SystemMessage(o.systemPrompt)},
	}

	e.status = e.rebuild(ctx)
	return e, e.status
}

func (e *Engine) rebuild(ctx context.Context) memtypes.RebuildResult {
	fetchCtx, cancel := e.withTimeout(ctx)
	records, err := e.store.FetchAll(fetchCtx)
	cancel()
	if err != nil {
		slog.Warn("could not load conversations for recall", "error", err)
		return memtypes.RebuildResult{Status: memtypes.IndexDegraded, Err: fmt.Errorf("fetch conversations: %w", err)}
	}
	return e.index.Rebuild(ctx, records)
}

// Respond handles one user turn and returns the assistant reply.
//
// A prompt starting with the forget command removes the last exchange and
// returns "". Otherwise memories are recalled, the reply is generated and
// the exchange is recorded. If generation fails the error wraps
// ErrGeneration and nothing changes. If only saving fails the reply is
// returned with a *PersistError.
func (e *Engine) Respond(ctx context.Context, prompt string) (string, error) {
	if !e.inflight.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer e.inflight.Store(false)

	if e.isForget(prompt) {
		e.forget(ctx)
		return "", nil
	}

	rec := e.retriever.RecallWithCorpus(ctx, prompt)
	if e.opts.onRecall != nil {
		e.opts.onRecall(len(rec.Memories), len(rec.References))
	}
	slog.Info("memories recalled", "count", len(rec.Memories), "references", len(rec.References))

	e.mu.Lock()
	e.ephemeral = ephemeralMessages(rec)
	input := make([]types.Message, 0, len(e.window)+len(e.ephemeral)+1)
	input = append(input, e.window...)
	input = append(input, e.ephemeral...)
	input = append(input, types.UserMessage(prompt))
	e.mu.Unlock()

	genCtx, cancel := e.withTimeout(ctx)
	reply, err := client.Generate(genCtx, e.chat, e.chatModel, input)
	cancel()

	e.mu.Lock()
	e.ephemeral = nil
	if err != nil {
		e.mu.Unlock()
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	e.window = append(e.window, types.UserMessage(prompt), types.AssistantMessage(reply))
	e.mu.Unlock()

	saveCtx, cancel := e.withTimeout(ctx)
	err = e.store.Append(saveCtx, prompt, reply)
	cancel()
	if err != nil {
		slog.Error("failed to save conversation", "error", err)
		return reply, &PersistError{Err: err}
	}

	return reply, nil
}

func (e *Engine) isForget(prompt string) bool {
	return strings.HasPrefix(strings.ToLower(prompt), strings.ToLower(e.opts.forgetCommand))
}

// forget drops the latest stored record and the last exchange in the
// window. Failures are logged only.
func (e *Engine) forget(ctx context.Context) {
	delCtx, cancel := e.withTimeout(ctx)
	err := e.store.DeleteMostRecent(delCtx)
	cancel()
	if err != nil {
		slog.Warn("failed to forget latest conversation", "error", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.window)-1 >= 2 {
		e.window = e.window[:len(e.window)-2]
	}
}

// Recall runs retrieval for prompt without generating a reply.
func (e *Engine) Recall(ctx context.Context, prompt string) retrieval.Recollection {
	return e.retriever.RecallWithCorpus(ctx, prompt)
}

// Window returns a copy of the permanent conversation window.
func (e *Engine) Window() []types.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.window)
}

// EphemeralLen returns the size of the per-call recall context. It is zero
// whenever no Respond call is in progress.
func (e *Engine) EphemeralLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.ephemeral)
}

// IndexStatus reports how the memory index was built.
func (e *Engine) IndexStatus() memtypes.RebuildResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.opts.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.opts.callTimeout)
}

// ephemeralMessages turns recalled material into system messages. Memories
// and reference passages are kept apart so each carries its own caveat.
func ephemeralMessages(rec retrieval.Recollection) []types.Message {
	var msgs []types.Message
	if len(rec.Memories) > 0 {
		msgs = append(msgs, types.SystemMessage(memoryInstruction+strings.Join(rec.Memories, "\n")))
	}
	if len(rec.References) > 0 {
		msgs = append(msgs, types.SystemMessage(referenceInstruction+strings.Join(rec.References, "\n")))
	}
	return msgs
}
