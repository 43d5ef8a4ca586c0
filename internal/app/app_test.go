package app

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/austiecodes/vera/internal/consts"
	"github.com/austiecodes/vera/internal/memory/memtypes"
	"github.com/austiecodes/vera/internal/types"
	"github.com/austiecodes/vera/internal/utils"
)

func testConfig(t *testing.T) *utils.Config {
	t.Helper()
	cfg := utils.DefaultConfig()
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "vera.db")
	return cfg
}

func TestClientsRequiresModels(t *testing.T) {
	cfg := testConfig(t)
	cfg.Model.ChatModel = nil
	if _, err := Clients(cfg); err == nil || !strings.Contains(err.Error(), "chat model") {
		t.Fatalf("expected chat model error, got %v", err)
	}

	cfg = testConfig(t)
	cfg.Model.EmbeddingModel = nil
	if _, err := Clients(cfg); err == nil || !strings.Contains(err.Error(), "embedding model") {
		t.Fatalf("expected embedding model error, got %v", err)
	}
}

func TestClientsRejectsHostedProviderWithoutKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Model.ChatModel = &types.Model{Provider: consts.ProviderOpenAI, ModelID: "gpt-4o"}
	if _, err := Clients(cfg); err == nil {
		t.Fatal("expected missing api key error")
	}
}

func TestClientsToolModelIsOptional(t *testing.T) {
	cfg := testConfig(t)
	cfg.Model.ToolModel = nil
	deps, err := Clients(cfg)
	if err != nil {
		t.Fatalf("Clients: %v", err)
	}
	if deps.Tool != nil {
		t.Fatal("tool client should be left for the engine to default")
	}
	if deps.Chat == nil || deps.Embedder == nil {
		t.Fatal("chat and embedding clients must be set")
	}
}

func TestOpenAndStartEngineOnEmptyStore(t *testing.T) {
	ctx := context.Background()
	rt, err := Open(ctx, testConfig(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rt.Close()

	eng, status := rt.NewEngine(ctx)
	if status.Status != memtypes.IndexReady || status.Indexed != 0 {
		t.Fatalf("unexpected status %+v", status)
	}
	if got := len(eng.Window()); got != 1 {
		t.Fatalf("expected only the system prompt, got %d messages", got)
	}
}

func TestOpenSkipsMissingCorpus(t *testing.T) {
	cfg := testConfig(t)
	cfg.Recall.EnableCorpus = true
	cfg.Recall.CorpusSource = filepath.Join(t.TempDir(), "missing.txt")
	cfg.Recall.CorpusCache = filepath.Join(t.TempDir(), "corpus.gob.gz")

	rt, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rt.Close()
	if rt.deps.Corpus != nil {
		t.Fatal("corpus should be skipped when its source is missing")
	}
}

func TestEngineOptionsFollowConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Recall.CallTimeoutSeconds = 5
	if got := cfg.Recall.CallTimeout(); got != 5*time.Second {
		t.Fatalf("CallTimeout = %v", got)
	}
	if got := len(EngineOptions(cfg)); got != 5 {
		t.Fatalf("expected 5 options, got %d", got)
	}
}
