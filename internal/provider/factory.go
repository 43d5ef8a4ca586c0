package provider

import (
	"fmt"

	"github.com/austiecodes/vera/internal/client"
	"github.com/austiecodes/vera/internal/consts"
	anthropicprov "github.com/austiecodes/vera/internal/provider/anthropic"
	googleprov "github.com/austiecodes/vera/internal/provider/google"
	ollamaprov "github.com/austiecodes/vera/internal/provider/ollama"
	openaiprov "github.com/austiecodes/vera/internal/provider/openai"
	"github.com/austiecodes/vera/internal/utils"
)

// NewQueryClient creates a chat client for the specified provider.
func NewQueryClient(cfg *utils.Config, providerName string) (client.QueryClient, error) {
	switch providerName {
	case consts.ProviderOpenAI:
		openaiCfg := cfg.Providers.OpenAI
		if openaiCfg.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key not configured. Please configure provider first")
		}
		baseURL := openaiCfg.BaseURL
		if baseURL == "" {
			baseURL = consts.DefaultBaseURL
		}
		return openaiprov.NewQueryClient(openaiCfg.APIKey, baseURL), nil

	case consts.ProviderAnthropic:
		anthropicCfg := cfg.Providers.Anthropic
		if anthropicCfg.APIKey == "" {
			return nil, fmt.Errorf("Anthropic API key not configured. Please configure provider first")
		}
		return anthropicprov.NewQueryClient(anthropicCfg.APIKey, anthropicCfg.BaseURL), nil

	case consts.ProviderGoogle:
		googleCfg := cfg.Providers.Google
		if googleCfg.APIKey == "" {
			return nil, fmt.Errorf("Google API key not configured. Please configure provider first")
		}
		return googleprov.NewQueryClient(googleCfg.APIKey, googleCfg.BaseURL), nil

	case consts.ProviderOllama:
		return ollamaprov.NewQueryClient(cfg.Providers.Ollama.Host)

	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerName)
	}
}

// NewEmbeddingClient creates an embedding client for the specified provider.
func NewEmbeddingClient(cfg *utils.Config, providerName string) (client.EmbeddingClient, error) {
	switch providerName {
	case consts.ProviderOpenAI:
		openaiCfg := cfg.Providers.OpenAI
		if openaiCfg.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key not configured. Please configure provider first")
		}
		baseURL := openaiCfg.BaseURL
		if baseURL == "" {
			baseURL = consts.DefaultBaseURL
		}
		return openaiprov.NewEmbeddingClient(openaiCfg.APIKey, baseURL), nil

	case consts.ProviderGoogle:
		googleCfg := cfg.Providers.Google
		if googleCfg.APIKey == "" {
			return nil, fmt.Errorf("Google API key not configured. Please configure provider first")
		}
		return googleprov.NewEmbeddingClient(googleCfg.APIKey, googleCfg.BaseURL), nil

	case consts.ProviderOllama:
		return ollamaprov.NewEmbeddingClient(cfg.Providers.Ollama.Host)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerName)
	}
}

// SupportedProviders lists chat providers in display order.
func SupportedProviders() []string {
	return []string{consts.ProviderOllama, consts.ProviderOpenAI, consts.ProviderAnthropic, consts.ProviderGoogle}
}

// SupportsEmbeddings reports whether the provider offers an embedding API.
func SupportsEmbeddings(providerName string) bool {
	return providerName != consts.ProviderAnthropic
}
