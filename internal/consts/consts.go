package consts

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
	ProviderOllama    = "ollama"
)

// VeraDir is the per-user directory under $HOME holding config, database and caches.
const VeraDir = ".vera"

const (
	DefaultBaseURL          = "https://api.openai.com/v1"
	DefaultAnthropicBaseURL = "https://api.anthropic.com"
	DefaultOllamaHost       = "http://localhost:11434"
)

const (
	DefaultChatModel      = "llama3"
	DefaultToolModel      = "llama3"
	DefaultEmbeddingModel = "nomic-embed-text"
)

// ForgetCommand removes the latest exchange instead of answering.
const ForgetCommand = "/forget"

const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)
