package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorStoreProvider identifies the vector database backend.
type VectorStoreProvider string

// Available vector store providers.
const (
	// VectorStoreQdrant is a Qdrant server reached over REST.
	VectorStoreQdrant VectorStoreProvider = "qdrant"

	// VectorStoreMemory keeps vectors in process memory. Nothing persists.
	VectorStoreMemory VectorStoreProvider = "memory"
)

// IsValid returns true if the provider is recognised.
func (p VectorStoreProvider) IsValid() bool {
	return p == VectorStoreQdrant || p == VectorStoreMemory
}

// VectorStoreSettings holds vector database configuration.
type VectorStoreSettings struct {
	Provider VectorStoreProvider
	URL      string
	APIKey   string
}

// IsConfigured returns true if the vector store can be reached.
func (v VectorStoreSettings) IsConfigured() bool {
	switch v.Provider {
	case VectorStoreMemory:
		return true
	case VectorStoreQdrant:
		return v.URL != ""
	default:
		return false
	}
}

// DirectoryProvider identifies the identity directory backend.
type DirectoryProvider string

// Available directory providers.
const (
	// DirectorySheets stores users and scores in a Google spreadsheet.
	DirectorySheets DirectoryProvider = "sheets"

	// DirectorySQLite stores users and scores in the local database.
	DirectorySQLite DirectoryProvider = "sqlite"
)

// IsValid returns true if the provider is recognised.
func (p DirectoryProvider) IsValid() bool {
	return p == DirectorySheets || p == DirectorySQLite
}

// DirectorySettings holds identity directory configuration.
type DirectorySettings struct {
	Provider            DirectoryProvider
	SpreadsheetID       string
	ServiceAccountEmail string
	PrivateKey          string
}

// IsConfigured returns true if the directory backend is set up.
func (d DirectorySettings) IsConfigured() bool {
	switch d.Provider {
	case DirectorySQLite:
		return true
	case DirectorySheets:
		return d.SpreadsheetID != "" && d.ServiceAccountEmail != "" && d.PrivateKey != ""
	default:
		return false
	}
}

// RetrievalSettings tunes query-time retrieval.
type RetrievalSettings struct {
	// GuidelineCollection is the rulebook collection name.
	GuidelineCollection string

	// GuidelineTopK is the number of rulebook sections retrieved per query.
	GuidelineTopK int

	// UserTopK is the number of user chunks retrieved in answer mode.
	UserTopK int

	// ScrollPageSize is the page size of exhaustive retrieval.
	ScrollPageSize int
}

// IngestSettings tunes chunking and indexing of uploads.
type IngestSettings struct {
	ChunkSize         int
	ChunkOverlap      int
	BatchSize         int
	Workers           int
	RequestsPerSecond float64
	Burst             int
}

// LoggingSettings configures the optional rotating log file.
type LoggingSettings struct {
	// File is the log file path. Empty disables file logging.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding   EmbeddingSettings
	LLM         LLMSettings
	VectorStore VectorStoreSettings
	Directory   DirectorySettings
	Retrieval   RetrievalSettings
	Ingest      IngestSettings
	Logging     LoggingSettings
}

// Default retrieval and ingest values.
const (
	DefaultGuidelineTopK     = 3
	DefaultUserTopK          = 3
	DefaultScrollPageSize    = 100
	DefaultChunkSize         = 1000
	DefaultChunkOverlap      = 200
	DefaultBatchSize         = 10
	DefaultWorkers           = 4
	DefaultRequestsPerSecond = 5.0
	DefaultBurst             = 5
	DefaultLogMaxSizeMB      = 10
	DefaultLogMaxBackups     = 3
	DefaultQdrantURL         = "http://localhost:6333"
)

// DefaultAppSettings returns settings with sensible defaults.
// Embedding and LLM default to OpenAI and still need an API key.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultEmbeddingModels()[AIProviderOpenAI],
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultLLMModels()[AIProviderOpenAI],
		},
		VectorStore: VectorStoreSettings{
			Provider: VectorStoreQdrant,
			URL:      DefaultQdrantURL,
		},
		Directory: DirectorySettings{
			Provider: DirectorySQLite,
		},
		Retrieval: RetrievalSettings{
			GuidelineCollection: DefaultGuidelineCollection,
			GuidelineTopK:       DefaultGuidelineTopK,
			UserTopK:            DefaultUserTopK,
			ScrollPageSize:      DefaultScrollPageSize,
		},
		Ingest: IngestSettings{
			ChunkSize:         DefaultChunkSize,
			ChunkOverlap:      DefaultChunkOverlap,
			BatchSize:         DefaultBatchSize,
			Workers:           DefaultWorkers,
			RequestsPerSecond: DefaultRequestsPerSecond,
			Burst:             DefaultBurst,
		},
		Logging: LoggingSettings{
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
