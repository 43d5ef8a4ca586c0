package set

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/austiecodes/vera/internal/app"
	"github.com/austiecodes/vera/internal/memory/corpus"
	"github.com/austiecodes/vera/internal/provider"
	"github.com/austiecodes/vera/internal/types"
	"github.com/austiecodes/vera/internal/utils"
)

func loadModelsForProvider(providerID string, cfg *utils.Config) tea.Cmd {
	return func() tea.Msg {
		c, err := provider.NewQueryClient(cfg, providerID)
		if err != nil {
			return ModelsLoadedMsg{Err: err}
		}

		models, err := c.ListModels(context.Background())
		return ModelsLoadedMsg{Models: models, Err: err}
	}
}

// rebuildCorpus re-embeds the reference corpus with newModel. The cached
// artifact holds vectors from the old model and cannot be reused.
func rebuildCorpus(config *utils.Config, newModel types.Model) tea.Cmd {
	return func() tea.Msg {
		embedder, err := provider.NewEmbeddingClient(config, newModel.Provider)
		if err != nil {
			return CorpusRebuiltMsg{Err: err}
		}

		idx, err := corpus.Build(context.Background(), app.CorpusOptions(config, embedder, newModel))
		if err != nil {
			return CorpusRebuiltMsg{Err: err}
		}
		return CorpusRebuiltMsg{Passages: idx.Len()}
	}
}
