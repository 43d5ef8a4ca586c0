package set

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/austiecodes/vera/internal/consts"
	"github.com/austiecodes/vera/internal/provider"
	"github.com/austiecodes/vera/internal/utils"
)

var providerDescriptions = map[string]string{
	consts.ProviderOllama:    "Local Ollama server (default)",
	consts.ProviderOpenAI:    "OpenAI API or any compatible endpoint",
	consts.ProviderAnthropic: "Anthropic API (Claude models, chat only)",
	consts.ProviderGoogle:    "Google Gemini API",
}

func createMainMenu() list.Model {
	items := []list.Item{
		MenuItem{title: MenuItemProvider, desc: "Configure provider settings (API key, base URL, host)"},
		MenuItem{title: MenuItemChatModel, desc: "Set the model that writes replies"},
		MenuItem{title: MenuItemToolModel, desc: "Set the model for query expansion and relevance checks"},
		MenuItem{title: MenuItemEmbeddingModel, desc: "Set the model for embeddings"},
		MenuItem{title: MenuItemRecall, desc: "Configure memory recall and the reference corpus"},
		MenuItem{title: MenuItemExit, desc: "Exit settings"},
	}

	l := list.New(items, list.NewDefaultDelegate(), 60, 30)
	l.Title = "Vera Settings"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(true)
	return l
}

// createProviderList lists providers; embedding selection hides chat-only ones.
func createProviderList(embeddingOnly bool) list.Model {
	var items []list.Item
	for _, name := range provider.SupportedProviders() {
		if embeddingOnly && !provider.SupportsEmbeddings(name) {
			continue
		}
		items = append(items, MenuItem{title: name, desc: providerDescriptions[name]})
	}

	l := list.New(items, list.NewDefaultDelegate(), 60, 14)
	l.Title = "Select Provider"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(true)
	return l
}

func createProviderConfigInputs(config *utils.Config, providerID string) []textinput.Model {
	if providerID == consts.ProviderOllama {
		host := textinput.New()
		host.Placeholder = consts.DefaultOllamaHost
		host.CharLimit = 256
		host.Width = 50
		host.SetValue(config.Providers.Ollama.Host)
		return []textinput.Model{host}
	}

	var current utils.ProviderConfig
	placeholder := ""
	switch providerID {
	case consts.ProviderOpenAI:
		current, placeholder = config.Providers.OpenAI, consts.DefaultBaseURL
	case consts.ProviderAnthropic:
		current, placeholder = config.Providers.Anthropic, consts.DefaultAnthropicBaseURL
	case consts.ProviderGoogle:
		current = config.Providers.Google
	}

	inputs := make([]textinput.Model, 2)

	// API Key input
	inputs[0] = textinput.New()
	inputs[0].Placeholder = "api key"
	inputs[0].EchoMode = textinput.EchoPassword
	inputs[0].EchoCharacter = '*'
	inputs[0].CharLimit = 256
	inputs[0].Width = 50
	inputs[0].SetValue(current.APIKey)

	// Base URL input
	inputs[1] = textinput.New()
	inputs[1].Placeholder = placeholder
	inputs[1].CharLimit = 256
	inputs[1].Width = 50
	inputs[1].SetValue(current.BaseURL)

	return inputs
}

func createModelList(models []string, mt ModelType) list.Model {
	items := make([]list.Item, len(models))
	for i, modelID := range models {
		items[i] = MenuItem{title: modelID}
	}

	l := list.New(items, list.NewDefaultDelegate(), 60, 30)
	l.Title = "Select " + mt.String()
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)
	return l
}

// recallField describes one input on the recall screen.
type recallField struct {
	label string
	value func(*utils.Config) string
	apply func(*utils.Config, string) error
}

var recallFields = []recallField{
	{
		label: "Results per query (default: 2)",
		value: func(c *utils.Config) string { return strconv.Itoa(c.Recall.ResultsPerQuery) },
		apply: func(c *utils.Config, v string) error {
			n, err := positiveInt(v, "results_per_query")
			c.Recall.ResultsPerQuery = n
			return err
		},
	},
	{
		label: "Reference examples per prompt (default: 5)",
		value: func(c *utils.Config) string { return strconv.Itoa(c.Recall.CorpusK) },
		apply: func(c *utils.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("corpus_k must be zero or a positive integer")
			}
			c.Recall.CorpusK = n
			return nil
		},
	},
	{
		label: "Model call timeout in seconds (default: 60)",
		value: func(c *utils.Config) string { return strconv.Itoa(c.Recall.CallTimeoutSeconds) },
		apply: func(c *utils.Config, v string) error {
			n, err := positiveInt(v, "call_timeout_seconds")
			c.Recall.CallTimeoutSeconds = n
			return err
		},
	},
	{
		label: "Forget command (default: /forget)",
		value: func(c *utils.Config) string { return c.Recall.ForgetCommand },
		apply: func(c *utils.Config, v string) error {
			if v == "" {
				return fmt.Errorf("forget_command must not be empty")
			}
			c.Recall.ForgetCommand = v
			return nil
		},
	},
	{
		label: "Reference corpus source (.txt or .csv, optional)",
		value: func(c *utils.Config) string { return c.Recall.CorpusSource },
		apply: func(c *utils.Config, v string) error {
			c.Recall.CorpusSource = v
			return nil
		},
	},
	{
		label: "Use reference corpus (y/n)",
		value: func(c *utils.Config) string { return yesNo(c.Recall.EnableCorpus) },
		apply: func(c *utils.Config, v string) error {
			switch v {
			case "y", "Y", "yes":
				if c.Recall.CorpusSource == "" {
					return fmt.Errorf("a corpus source is required to enable the reference corpus")
				}
				c.Recall.EnableCorpus = true
			case "n", "N", "no":
				c.Recall.EnableCorpus = false
			default:
				return fmt.Errorf("enable corpus must be y or n")
			}
			return nil
		},
	},
}

func createRecallConfigInputs(config *utils.Config) []textinput.Model {
	inputs := make([]textinput.Model, len(recallFields))
	for i, f := range recallFields {
		inputs[i] = textinput.New()
		inputs[i].CharLimit = 256
		inputs[i].Width = 50
		inputs[i].SetValue(f.value(config))
	}
	return inputs
}

// applyRecallInputs validates every field on a copy so a bad value leaves
// config untouched.
func applyRecallInputs(config *utils.Config, inputs []textinput.Model) error {
	next := *config
	for i, f := range recallFields {
		if err := f.apply(&next, inputs[i].Value()); err != nil {
			return err
		}
	}
	*config = next
	return nil
}

func positiveInt(v, name string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return n, nil
}

func yesNo(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

func saveConfig(config *utils.Config) tea.Cmd {
	return func() tea.Msg {
		err := utils.SaveConfig(config)
		return ConfigSavedMsg{Err: err}
	}
}
