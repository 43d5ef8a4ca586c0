package utils

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/austiecodes/vera/internal/consts"
	"github.com/austiecodes/vera/internal/types"
)

// ProviderConfig holds credentials for a hosted provider.
type ProviderConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url,omitempty"`
}

// OllamaProviderConfig points at a local or remote Ollama server.
type OllamaProviderConfig struct {
	Host string `json:"host,omitempty"`
}

// ProviderConfigs holds all provider configurations
type ProviderConfigs struct {
	OpenAI    ProviderConfig       `json:"openai"`
	Anthropic ProviderConfig       `json:"anthropic"`
	Google    ProviderConfig       `json:"google"`
	Ollama    OllamaProviderConfig `json:"ollama"`
}

// ModelConfig represents the model section in config.
// ToolModel drives query expansion and relevance classification.
type ModelConfig struct {
	ChatModel      *types.Model `json:"chat_model,omitempty"`
	ToolModel      *types.Model `json:"tool_model,omitempty"`
	EmbeddingModel *types.Model `json:"embedding_model,omitempty"`
}

// RecallConfig tunes memory recall and the reference corpus.
type RecallConfig struct {
	ResultsPerQuery    int    `json:"results_per_query"`
	CorpusK            int    `json:"corpus_k"`
	CorpusMaxMessages  int    `json:"corpus_max_messages"`
	CorpusSource       string `json:"corpus_source,omitempty"`
	CorpusCache        string `json:"corpus_cache,omitempty"`
	EnableCorpus       bool   `json:"enable_corpus"`
	ForgetCommand      string `json:"forget_command"`
	CallTimeoutSeconds int    `json:"call_timeout_seconds"`
	RebuildMaxRetries  int    `json:"rebuild_max_retries"`
}

// CallTimeout returns the per-call bound for external requests.
func (r RecallConfig) CallTimeout() time.Duration {
	return time.Duration(r.CallTimeoutSeconds) * time.Second
}

// StorageConfig selects the conversation store backend.
type StorageConfig struct {
	Driver      string `json:"driver"`
	SQLitePath  string `json:"sqlite_path,omitempty"`
	PostgresDSN string `json:"postgres_dsn,omitempty"`
}

// ServerConfig configures the HTTP chat API.
type ServerConfig struct {
	Addr              string `json:"addr"`
	APIKey            string `json:"api_key,omitempty"`
	SessionTTLMinutes int    `json:"session_ttl_minutes"`
	MaxSessions       int    `json:"max_sessions"`
}

// SessionTTL returns the idle lifetime of a chat session.
func (s ServerConfig) SessionTTL() time.Duration {
	return time.Duration(s.SessionTTLMinutes) * time.Minute
}

// Config represents the application configuration
type Config struct {
	Providers ProviderConfigs `json:"providers"`
	Model     ModelConfig     `json:"model"`
	Recall    RecallConfig    `json:"recall"`
	Storage   StorageConfig   `json:"storage"`
	Server    ServerConfig    `json:"server"`
	Debug     bool            `json:"debug,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Providers: ProviderConfigs{
			Ollama: OllamaProviderConfig{Host: consts.DefaultOllamaHost},
		},
		Model: ModelConfig{
			ChatModel: &types.Model{
				Provider: consts.ProviderOllama,
				ModelID:  consts.DefaultChatModel,
			},
			ToolModel: &types.Model{
				Provider: consts.ProviderOllama,
				ModelID:  consts.DefaultToolModel,
			},
			EmbeddingModel: &types.Model{
				Provider: consts.ProviderOllama,
				ModelID:  consts.DefaultEmbeddingModel,
			},
		},
		Recall: RecallConfig{
			ResultsPerQuery:    2,
			CorpusK:            5,
			CorpusMaxMessages:  10000,
			ForgetCommand:      consts.ForgetCommand,
			CallTimeoutSeconds: 60,
			RebuildMaxRetries:  2,
		},
		Storage: StorageConfig{
			Driver: consts.StorageSQLite,
		},
		Server: ServerConfig{
			Addr:              ":8080",
			SessionTTLMinutes: 60,
			MaxSessions:       1024,
		},
	}
}

// GetVeraDir returns ~/.vera, creating it if needed.
func GetVeraDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %v", err)
	}
	veraDir := filepath.Join(homeDir, consts.VeraDir)
	if err := os.MkdirAll(veraDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create vera directory: %v", err)
	}
	return veraDir, nil
}

// GetConfigPath returns the path to the configuration file
func GetConfigPath() (string, error) {
	veraDir, err := GetVeraDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(veraDir, ".vera"), nil
}

// LoadConfig loads the configuration from file
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		applyPathDefaults(config)
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}

	applyDefaults(&config)
	applyPathDefaults(&config)

	return &config, nil
}

// LoadRuntimeConfig loads the config file and layers .env files and
// environment variables on top. The result must not be saved back, since it
// may carry secrets that only live in the environment.
func LoadRuntimeConfig() (*Config, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	// Missing files are fine; earlier files win over later ones.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")
	ApplyEnv(config, os.Getenv)
	return config, nil
}

// ApplyEnv overrides config values from environment variables.
func ApplyEnv(config *Config, getenv func(string) string) {
	if v := getenv("VERA_API_KEY"); v != "" {
		config.Server.APIKey = v
	}
	if v := getenv("OLLAMA_HOST"); v != "" {
		config.Providers.Ollama.Host = v
	}
	if v := getenv("OPENAI_API_KEY"); v != "" {
		config.Providers.OpenAI.APIKey = v
	}
	if v := getenv("ANTHROPIC_API_KEY"); v != "" {
		config.Providers.Anthropic.APIKey = v
	}
	if v := getenv("GOOGLE_API_KEY"); v != "" {
		config.Providers.Google.APIKey = v
	}
	if name := getenv("DB_NAME"); name != "" {
		config.Storage.Driver = consts.StoragePostgres
		config.Storage.PostgresDSN = postgresDSN(
			getenv("DB_HOST"), getenv("DB_PORT"), name, getenv("DB_USER"), getenv("DB_PASS"),
		)
	}
}

func postgresDSN(host, port, name, user, pass string) string {
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "5432"
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, port),
		Path:   "/" + name,
	}
	switch {
	case user != "" && pass != "":
		u.User = url.UserPassword(user, pass)
	case user != "":
		u.User = url.User(user)
	}
	return u.String()
}

// applyDefaults fills in default values for missing config fields
func applyDefaults(config *Config) {
	defaultConfig := DefaultConfig()

	if config.Providers.Ollama.Host == "" {
		config.Providers.Ollama.Host = defaultConfig.Providers.Ollama.Host
	}

	if config.Model.ChatModel == nil {
		config.Model.ChatModel = defaultConfig.Model.ChatModel
	}
	if config.Model.ToolModel == nil {
		config.Model.ToolModel = defaultConfig.Model.ToolModel
	}
	if config.Model.EmbeddingModel == nil {
		config.Model.EmbeddingModel = defaultConfig.Model.EmbeddingModel
	}

	if config.Recall.ResultsPerQuery <= 0 {
		config.Recall.ResultsPerQuery = defaultConfig.Recall.ResultsPerQuery
	}
	if config.Recall.CorpusK <= 0 {
		config.Recall.CorpusK = defaultConfig.Recall.CorpusK
	}
	if config.Recall.CorpusMaxMessages <= 0 {
		config.Recall.CorpusMaxMessages = defaultConfig.Recall.CorpusMaxMessages
	}
	if config.Recall.ForgetCommand == "" {
		config.Recall.ForgetCommand = defaultConfig.Recall.ForgetCommand
	}
	if config.Recall.CallTimeoutSeconds <= 0 {
		config.Recall.CallTimeoutSeconds = defaultConfig.Recall.CallTimeoutSeconds
	}
	if config.Recall.RebuildMaxRetries <= 0 {
		config.Recall.RebuildMaxRetries = defaultConfig.Recall.RebuildMaxRetries
	}

	if config.Storage.Driver == "" {
		config.Storage.Driver = defaultConfig.Storage.Driver
	}

	if config.Server.Addr == "" {
		config.Server.Addr = defaultConfig.Server.Addr
	}
	if config.Server.SessionTTLMinutes <= 0 {
		config.Server.SessionTTLMinutes = defaultConfig.Server.SessionTTLMinutes
	}
	if config.Server.MaxSessions <= 0 {
		config.Server.MaxSessions = defaultConfig.Server.MaxSessions
	}
}

// applyPathDefaults resolves file locations under ~/.vera.
func applyPathDefaults(config *Config) {
	veraDir, err := GetVeraDir()
	if err != nil {
		return
	}
	if config.Storage.SQLitePath == "" {
		config.Storage.SQLitePath = filepath.Join(veraDir, "vera.db")
	}
	if config.Recall.CorpusCache == "" {
		config.Recall.CorpusCache = filepath.Join(veraDir, "rag", "corpus.gob.gz")
	}
}

// SaveConfig saves the configuration to file
func SaveConfig(config *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %v", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}

	return nil
}

// GetDebugMode returns whether debug mode is enabled
func GetDebugMode() bool {
	config, err := LoadConfig()
	if err != nil {
		return false
	}
	return config.Debug
}
