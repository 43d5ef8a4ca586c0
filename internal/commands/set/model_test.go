package set

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/austiecodes/vera/internal/consts"
	"github.com/austiecodes/vera/internal/types"
	"github.com/austiecodes/vera/internal/utils"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func enter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

func TestRecallInputsApplyAtomically(t *testing.T) {
	cfg := utils.DefaultConfig()
	inputs := createRecallConfigInputs(cfg)

	inputs[0].SetValue("4")
	inputs[1].SetValue("bogus")
	if err := applyRecallInputs(cfg, inputs); err == nil {
		t.Fatal("expected validation error")
	}
	if cfg.Recall.ResultsPerQuery != 2 {
		t.Fatalf("config changed on failed apply: %d", cfg.Recall.ResultsPerQuery)
	}

	inputs[1].SetValue("0")
	inputs[3].SetValue("/drop")
	if err := applyRecallInputs(cfg, inputs); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.Recall.ResultsPerQuery != 4 || cfg.Recall.CorpusK != 0 || cfg.Recall.ForgetCommand != "/drop" {
		t.Fatalf("unexpected recall config %+v", cfg.Recall)
	}
}

func TestEnablingCorpusNeedsSource(t *testing.T) {
	cfg := utils.DefaultConfig()
	inputs := createRecallConfigInputs(cfg)
	inputs[5].SetValue("y")
	if err := applyRecallInputs(cfg, inputs); err == nil {
		t.Fatal("expected error without a corpus source")
	}

	inputs[4].SetValue("/tmp/chats.csv")
	if err := applyRecallInputs(cfg, inputs); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !cfg.Recall.EnableCorpus {
		t.Fatal("corpus should be enabled")
	}
}

func TestRecallScreenFromMenu(t *testing.T) {
	m := newModel(utils.DefaultConfig(), nil)
	for m.List.SelectedItem().(MenuItem).Title() != MenuItemRecall {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	m, _ = update(t, m, enter())
	if m.Screen != ScreenRecallConfig || len(m.TextInputs) != len(recallFields) {
		t.Fatalf("expected recall screen, got %v", m.Screen)
	}

	// q is typed into the focused input instead of leaving the screen
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if m.Screen != ScreenRecallConfig {
		t.Fatal("q should not leave an input screen")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Screen != ScreenMainMenu {
		t.Fatal("esc should return to the menu")
	}
}

func TestProviderConfigRequiresAPIKey(t *testing.T) {
	m := newModel(utils.DefaultConfig(), nil)
	m.SelectedProvider = consts.ProviderOpenAI
	m.TextInputs = createProviderConfigInputs(m.Config, consts.ProviderOpenAI)
	m.Screen = ScreenProviderConfig

	m, cmd := update(t, m, enter())
	if cmd != nil || m.Err == nil {
		t.Fatal("expected an error and no save")
	}
}

func TestOllamaProviderHasHostOnly(t *testing.T) {
	inputs := createProviderConfigInputs(utils.DefaultConfig(), consts.ProviderOllama)
	if len(inputs) != 1 || inputs[0].Value() != consts.DefaultOllamaHost {
		t.Fatalf("unexpected ollama inputs %d", len(inputs))
	}
}

func TestEmbeddingProvidersExcludeChatOnly(t *testing.T) {
	l := createProviderList(true)
	for _, item := range l.Items() {
		if item.(MenuItem).Title() == consts.ProviderAnthropic {
			t.Fatal("anthropic has no embedding API")
		}
	}
}

func TestEmbeddingChangeWithCorpusAsksForRebuild(t *testing.T) {
	cfg := utils.DefaultConfig()
	cfg.Recall.EnableCorpus = true
	cfg.Recall.CorpusSource = "/tmp/chats.csv"

	m := newModel(cfg, nil)
	m.ModelType = ModelTypeEmbedding
	m.SelectedProvider = consts.ProviderOllama
	m, _ = update(t, m, ModelsLoadedMsg{Models: []string{"mxbai-embed-large"}})
	if m.Screen != ScreenModelSelect {
		t.Fatalf("expected model list, got %v", m.Screen)
	}

	m, cmd := update(t, m, enter())
	if cmd != nil || m.Screen != ScreenConfirmCorpusRebuild {
		t.Fatalf("expected rebuild confirmation, got %v", m.Screen)
	}

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	if !m.Rebuilding || cmd == nil {
		t.Fatal("expected rebuild to start")
	}

	m, _ = update(t, m, CorpusRebuiltMsg{Err: errors.New("offline")})
	if m.Screen != ScreenMainMenu || m.Err == nil {
		t.Fatal("failed rebuild should return to the menu with an error")
	}
	want := types.Model{Provider: consts.ProviderOllama, ModelID: consts.DefaultEmbeddingModel}
	if *m.Config.Model.EmbeddingModel != want {
		t.Fatalf("embedding model changed despite failure: %+v", m.Config.Model.EmbeddingModel)
	}
}

func TestModelsLoadErrorReturnsToMenu(t *testing.T) {
	m := newModel(utils.DefaultConfig(), nil)
	m.Screen = ScreenModelProviderSelect
	m, _ = update(t, m, ModelsLoadedMsg{Err: errors.New("unreachable")})
	if m.Screen != ScreenMainMenu || m.Err == nil {
		t.Fatal("expected menu with error")
	}
}
