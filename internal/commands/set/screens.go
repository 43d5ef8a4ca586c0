package set

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/austiecodes/vera/internal/consts"
	"github.com/austiecodes/vera/internal/types"
)

func (m *Model) updateMainMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			selected := m.List.SelectedItem().(MenuItem)
			switch selected.Title() {
			case MenuItemProvider:
				m.List = createProviderList(false)
				m.Screen = ScreenProviderSelect
			case MenuItemChatModel:
				m.ModelType = ModelTypeChat
				m.List = createProviderList(false)
				m.Screen = ScreenModelProviderSelect
			case MenuItemToolModel:
				m.ModelType = ModelTypeTool
				m.List = createProviderList(false)
				m.Screen = ScreenModelProviderSelect
			case MenuItemEmbeddingModel:
				m.ModelType = ModelTypeEmbedding
				m.List = createProviderList(true)
				m.Screen = ScreenModelProviderSelect
			case MenuItemRecall:
				m.TextInputs = createRecallConfigInputs(m.Config)
				m.FocusedInput = 0
				m.Screen = ScreenRecallConfig
				return *m, m.TextInputs[0].Focus()
			case MenuItemExit:
				m.Quitting = true
				return *m, tea.Quit
			}
			return *m, nil
		}
	}

	var cmd tea.Cmd
	m.List, cmd = m.List.Update(msg)
	return *m, cmd
}

func (m *Model) updateProviderSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			selected := m.List.SelectedItem().(MenuItem)
			m.SelectedProvider = selected.Title()
			m.TextInputs = createProviderConfigInputs(m.Config, m.SelectedProvider)
			m.FocusedInput = 0
			m.Screen = ScreenProviderConfig
			return *m, m.TextInputs[0].Focus()
		}
	}

	var cmd tea.Cmd
	m.List, cmd = m.List.Update(msg)
	return *m, cmd
}

// focusInput handles tab navigation shared by the input screens.
func (m *Model) focusInput(key string) (tea.Cmd, bool) {
	switch key {
	case "tab", "down":
		m.TextInputs[m.FocusedInput].Blur()
		m.FocusedInput = (m.FocusedInput + 1) % len(m.TextInputs)
		return m.TextInputs[m.FocusedInput].Focus(), true
	case "shift+tab", "up":
		m.TextInputs[m.FocusedInput].Blur()
		m.FocusedInput = (m.FocusedInput - 1 + len(m.TextInputs)) % len(m.TextInputs)
		return m.TextInputs[m.FocusedInput].Focus(), true
	}
	return nil, false
}

func (m *Model) updateProviderConfig(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if cmd, handled := m.focusInput(msg.String()); handled {
			return *m, cmd
		}

		if msg.String() == "enter" {
			if m.SelectedProvider == consts.ProviderOllama {
				m.Config.Providers.Ollama.Host = strings.TrimSpace(m.TextInputs[0].Value())
				return *m, saveConfig(m.Config)
			}

			apiKey := strings.TrimSpace(m.TextInputs[0].Value())
			baseURL := strings.TrimSpace(m.TextInputs[1].Value())
			if apiKey == "" {
				m.Err = fmt.Errorf("API key is required")
				return *m, nil
			}

			switch m.SelectedProvider {
			case consts.ProviderOpenAI:
				m.Config.Providers.OpenAI.APIKey = apiKey
				m.Config.Providers.OpenAI.BaseURL = baseURL
			case consts.ProviderGoogle:
				m.Config.Providers.Google.APIKey = apiKey
				m.Config.Providers.Google.BaseURL = baseURL
			case consts.ProviderAnthropic:
				m.Config.Providers.Anthropic.APIKey = apiKey
				m.Config.Providers.Anthropic.BaseURL = baseURL
			}

			return *m, saveConfig(m.Config)
		}
	}

	// Update focused text input
	var cmd tea.Cmd
	m.TextInputs[m.FocusedInput], cmd = m.TextInputs[m.FocusedInput].Update(msg)
	return *m, cmd
}

func (m *Model) updateModelProviderSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			selected := m.List.SelectedItem().(MenuItem)
			m.SelectedProvider = selected.Title()
			return *m, loadModelsForProvider(m.SelectedProvider, m.Config)
		}
	}

	var cmd tea.Cmd
	m.List, cmd = m.List.Update(msg)
	return *m, cmd
}

func (m *Model) updateModelSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			selected, ok := m.List.SelectedItem().(MenuItem)
			if !ok {
				return *m, nil
			}
			newModel := &types.Model{
				Provider: m.SelectedProvider,
				ModelID:  selected.Title(),
			}

			switch m.ModelType {
			case ModelTypeChat:
				m.Config.Model.ChatModel = newModel
			case ModelTypeTool:
				m.Config.Model.ToolModel = newModel
			case ModelTypeEmbedding:
				oldModel := m.Config.Model.EmbeddingModel
				if oldModel != nil && *oldModel == *newModel {
					m.backToMenu()
					return *m, nil
				}
				// Conversation memories are re-embedded on every start; only a
				// cached corpus artifact is tied to the old model.
				if m.Config.Recall.EnableCorpus {
					m.PendingModel = newModel
					m.Screen = ScreenConfirmCorpusRebuild
					return *m, nil
				}
				m.Config.Model.EmbeddingModel = newModel
			}

			return *m, saveConfig(m.Config)
		}
	}

	var cmd tea.Cmd
	m.List, cmd = m.List.Update(msg)
	return *m, cmd
}

func (m *Model) updateRecallConfig(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if cmd, handled := m.focusInput(msg.String()); handled {
			return *m, cmd
		}

		if msg.String() == "enter" {
			if err := applyRecallInputs(m.Config, m.TextInputs); err != nil {
				m.Err = err
				return *m, nil
			}
			return *m, saveConfig(m.Config)
		}
	}

	// Update focused text input
	var cmd tea.Cmd
	m.TextInputs[m.FocusedInput], cmd = m.TextInputs[m.FocusedInput].Update(msg)
	return *m, cmd
}

func (m *Model) updateConfirmCorpusRebuild(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.Rebuilding {
		if msg, ok := msg.(CorpusRebuiltMsg); ok {
			m.Rebuilding = false
			if msg.Err != nil {
				m.Err = msg.Err
				m.Screen = ScreenMainMenu
				m.List = createMainMenu()
				m.PendingModel = nil
				return *m, nil
			}
			m.Config.Model.EmbeddingModel = m.PendingModel
			m.PendingModel = nil
			return *m, saveConfig(m.Config)
		}
		// Ignore everything else while processing
		return *m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "y", "Y":
			m.Rebuilding = true
			return *m, rebuildCorpus(m.Config, *m.PendingModel)
		case "n", "N":
			m.backToMenu()
			return *m, nil
		}
	}
	return *m, nil
}

func (m *Model) renderView() string {
	if m.Quitting {
		return "Goodbye!\n"
	}

	var s strings.Builder

	switch m.Screen {
	case ScreenMainMenu:
		s.WriteString(m.List.View())

	case ScreenProviderSelect:
		s.WriteString(TitleStyle.Render("Select Provider"))
		s.WriteString("\n\n")
		s.WriteString(m.List.View())

	case ScreenProviderConfig:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("Configure %s Provider", m.SelectedProvider)))
		s.WriteString("\n\n")
		labels := []string{"API Key (required)", "Base URL (optional, default: Provider Default)"}
		if m.SelectedProvider == consts.ProviderOllama {
			labels = []string{"Host (default: " + consts.DefaultOllamaHost + ")"}
		}
		for i, input := range m.TextInputs {
			s.WriteString(InputLabelStyle.Render(labels[i]))
			s.WriteString("\n")
			s.WriteString(input.View())
			s.WriteString("\n\n")
		}
		s.WriteString(HelpStyle.Render("Press Enter to save, Esc to cancel, Tab/Shift+Tab to navigate"))

	case ScreenModelProviderSelect:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("Select Provider for %s", m.ModelType)))
		s.WriteString("\n\n")
		s.WriteString(m.List.View())

	case ScreenModelSelect:
		s.WriteString(m.List.View())

	case ScreenRecallConfig:
		s.WriteString(TitleStyle.Render("Recall Settings"))
		s.WriteString("\n\n")
		for i, input := range m.TextInputs {
			s.WriteString(InputLabelStyle.Render(recallFields[i].label))
			s.WriteString("\n")
			s.WriteString(input.View())
			s.WriteString("\n\n")
		}
		s.WriteString(HelpStyle.Render("Press Enter to save, Esc to cancel, Tab/Shift+Tab to navigate"))

	case ScreenConfirmCorpusRebuild:
		if m.Rebuilding {
			s.WriteString(TitleStyle.Render("Rebuilding Reference Corpus..."))
			s.WriteString("\n\n")
			s.WriteString("Please wait while every reference passage is embedded with the new model.")
		} else {
			s.WriteString(TitleStyle.Render("Confirm Embedding Model Change"))
			s.WriteString("\n\n")
			s.WriteString("The cached reference corpus was embedded with the current model and must be rebuilt.\n\n")
			s.WriteString("Do you want to proceed?\n\n")
			s.WriteString(HelpStyle.Render("Press 'y' to confirm and rebuild, 'n' to cancel"))
		}
	}

	if m.Err != nil {
		s.WriteString("\n\n")
		s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.Err)))
	}

	return s.String()
}
