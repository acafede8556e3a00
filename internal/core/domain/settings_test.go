package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider AIProvider
		expected bool
	}{
		{"ollama is valid", AIProviderOllama, true},
		{"openai is valid", AIProviderOpenAI, true},
		{"anthropic is valid", AIProviderAnthropic, true},
		{"empty is invalid", AIProvider(""), false},
		{"unknown is invalid", AIProvider("cohere"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderAnthropic.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOllama.IsLocal())
}

func TestAIProvider_Description(t *testing.T) {
	assert.Equal(t, "Ollama (local)", AIProviderOllama.Description())
	assert.Equal(t, "OpenAI (cloud)", AIProviderOpenAI.Description())
	assert.Equal(t, "Anthropic (cloud)", AIProviderAnthropic.Description())
	assert.Equal(t, unknownDescription, AIProvider("x").Description())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		expected bool
	}{
		{"openai with key", EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk"}, true},
		{"openai without key", EmbeddingSettings{Provider: AIProviderOpenAI}, false},
		{"ollama without key", EmbeddingSettings{Provider: AIProviderOllama}, true},
		{"anthropic has no embeddings", EmbeddingSettings{Provider: AIProviderAnthropic, APIKey: "k"}, false},
		{"empty provider", EmbeddingSettings{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.True(t, LLMSettings{Provider: AIProviderAnthropic, APIKey: "k"}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderAnthropic}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderOllama}.IsConfigured())
	assert.False(t, LLMSettings{}.IsConfigured())
}

func TestVectorStoreSettings_IsConfigured(t *testing.T) {
	assert.True(t, VectorStoreSettings{Provider: VectorStoreMemory}.IsConfigured())
	assert.True(t, VectorStoreSettings{Provider: VectorStoreQdrant, URL: "http://q:6333"}.IsConfigured())
	assert.False(t, VectorStoreSettings{Provider: VectorStoreQdrant}.IsConfigured())
	assert.False(t, VectorStoreSettings{Provider: "pinecone"}.IsConfigured())
}

func TestDirectorySettings_IsConfigured(t *testing.T) {
	assert.True(t, DirectorySettings{Provider: DirectorySQLite}.IsConfigured())
	assert.False(t, DirectorySettings{Provider: DirectorySheets, SpreadsheetID: "id"}.IsConfigured())
	assert.True(t, DirectorySettings{
		Provider:            DirectorySheets,
		SpreadsheetID:       "id",
		ServiceAccountEmail: "svc@example.iam.gserviceaccount.com",
		PrivateKey:          "key",
	}.IsConfigured())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, AIProviderOpenAI, s.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", s.Embedding.Model)
	assert.Equal(t, "gpt-4o-mini", s.LLM.Model)
	assert.Equal(t, VectorStoreQdrant, s.VectorStore.Provider)
	assert.Equal(t, DirectorySQLite, s.Directory.Provider)
	assert.Equal(t, "is_plani_rehberi", s.Retrieval.GuidelineCollection)
	assert.Equal(t, 3, s.Retrieval.GuidelineTopK)
	assert.Equal(t, 3, s.Retrieval.UserTopK)
	assert.Equal(t, 100, s.Retrieval.ScrollPageSize)
	assert.Equal(t, 1000, s.Ingest.ChunkSize)
	assert.Equal(t, 200, s.Ingest.ChunkOverlap)
	assert.Equal(t, 10, s.Ingest.BatchSize)
	assert.Equal(t, 4, s.Ingest.Workers)
	assert.Empty(t, s.Logging.File)
}

func TestEmbeddingDimensions(t *testing.T) {
	dims := EmbeddingDimensions()
	assert.Equal(t, 1536, dims["text-embedding-3-small"])
	assert.Equal(t, 768, dims["nomic-embed-text"])
}
