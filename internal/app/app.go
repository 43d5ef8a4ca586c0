// Package app wires configuration into the collaborators a conversation
// engine needs.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/austiecodes/vera/internal/client"
	"github.com/austiecodes/vera/internal/engine"
	"github.com/austiecodes/vera/internal/memory/corpus"
	"github.com/austiecodes/vera/internal/memory/memtypes"
	"github.com/austiecodes/vera/internal/memory/store"
	"github.com/austiecodes/vera/internal/provider"
	"github.com/austiecodes/vera/internal/types"
	"github.com/austiecodes/vera/internal/utils"
)

// Runtime owns the store and clients shared by every engine of a process.
type Runtime struct {
	Config *utils.Config
	Store  store.ConversationStore

	deps engine.Deps
}

// Open builds clients from cfg and opens the conversation store. The
// reference corpus is loaded only when enabled; a corpus that cannot be
// loaded is logged and skipped.
func Open(ctx context.Context, cfg *utils.Config) (*Runtime, error) {
	deps, err := Clients(cfg)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open conversation store: %w", err)
	}
	deps.Store = st

	if cfg.Recall.EnableCorpus {
		idx, err := corpus.Open(ctx, CorpusOptions(cfg, deps.Embedder, deps.EmbeddingModel))
		if err != nil {
			slog.Warn("reference corpus unavailable, continuing without it", "error", err)
		} else {
			deps.Corpus = idx
		}
	}

	return &Runtime{Config: cfg, Store: st, deps: deps}, nil
}

// Clients creates the chat, tool and embedding clients named by cfg.
func Clients(cfg *utils.Config) (engine.Deps, error) {
	var deps engine.Deps

	if cfg.Model.ChatModel == nil {
		return deps, errors.New("chat model not configured. Run 'vera set' to configure your model")
	}
	if cfg.Model.EmbeddingModel == nil {
		return deps, errors.New("embedding model not configured. Run 'vera set' to configure your model")
	}

	chat, err := provider.NewQueryClient(cfg, cfg.Model.ChatModel.Provider)
	if err != nil {
		return deps, fmt.Errorf("failed to create chat client: %w", err)
	}
	deps.Chat, deps.ChatModel = chat, *cfg.Model.ChatModel

	if cfg.Model.ToolModel != nil {
		tool, err := provider.NewQueryClient(cfg, cfg.Model.ToolModel.Provider)
		if err != nil {
			return deps, fmt.Errorf("failed to create tool client: %w", err)
		}
		deps.Tool, deps.ToolModel = tool, *cfg.Model.ToolModel
	}

	embedder, err := provider.NewEmbeddingClient(cfg, cfg.Model.EmbeddingModel.Provider)
	if err != nil {
		return deps, fmt.Errorf("failed to create embedding client: %w", err)
	}
	deps.Embedder, deps.EmbeddingModel = embedder, *cfg.Model.EmbeddingModel

	return deps, nil
}

// CorpusOptions maps the recall config onto corpus build options.
func CorpusOptions(cfg *utils.Config, embedder client.EmbeddingClient, model types.Model) corpus.Options {
	return corpus.Options{
		SourcePath:  cfg.Recall.CorpusSource,
		CachePath:   cfg.Recall.CorpusCache,
		MaxMessages: cfg.Recall.CorpusMaxMessages,
		Embedder:    embedder,
		Model:       model,
	}
}

// EngineOptions maps the recall config onto engine options.
func EngineOptions(cfg *utils.Config) []engine.Option {
	return []engine.Option{
		engine.WithForgetCommand(cfg.Recall.ForgetCommand),
		engine.WithCallTimeout(cfg.Recall.CallTimeout()),
		engine.WithResultsPerQuery(cfg.Recall.ResultsPerQuery),
		engine.WithCorpusK(cfg.Recall.CorpusK),
		engine.WithRebuildRetries(cfg.Recall.RebuildMaxRetries, engine.DefaultRebuildBackoff),
	}
}

// NewEngine starts a conversation with an index built from every stored
// record. extra options are applied after the configured ones.
func (r *Runtime) NewEngine(ctx context.Context, extra ...engine.Option) (*engine.Engine, memtypes.RebuildResult) {
	opts := append(EngineOptions(r.Config), extra...)
	eng, status := engine.New(ctx, r.deps, opts...)
	if status.Status == memtypes.IndexDegraded {
		slog.Warn("memory index unavailable, recall disabled for this conversation", "error", status.Err)
	} else {
		slog.Debug("memory index ready", "indexed", status.Indexed)
	}
	return eng, status
}

// Close releases the store.
func (r *Runtime) Close() error {
	return r.Store.Close()
}
