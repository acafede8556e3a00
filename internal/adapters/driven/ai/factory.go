// Package ai provides factory functions for creating AI and vector store adapters.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	embedcache "github.com/custodia-labs/plancheck/internal/adapters/driven/embedding/cache"
	ollamaembed "github.com/custodia-labs/plancheck/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/plancheck/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/plancheck/internal/adapters/driven/embedding/ratelimit"
	anthropicllm "github.com/custodia-labs/plancheck/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/plancheck/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/plancheck/internal/adapters/driven/llm/openai"
	memoryvector "github.com/custodia-labs/plancheck/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/plancheck/internal/adapters/driven/vector/qdrant"
	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
	"github.com/custodia-labs/plancheck/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult holds the services built from settings.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	VectorStore      driven.VectorStore
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		_ = r.EmbeddingService.Close()
	}
	if r.VectorStore != nil {
		_ = r.VectorStore.Close()
	}
	if r.LLMService != nil {
		_ = r.LLMService.Close()
	}
}

// Initialise builds the embedding, LLM and vector store services.
// Unconfigured providers return a MissingConfigError naming the setting.
// The embedding service is wrapped with the ingest rate limiter and the
// query cache.
func Initialise(settings *domain.AppSettings) (*InitResult, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: settings are nil", domain.ErrInvalidInput)
	}

	result := &InitResult{}

	embedding, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if embedding == nil {
		return nil, missingProvider("embedding", settings.Embedding.Provider)
	}
	result.EmbeddingService = WrapEmbedding(embedding, settings.Ingest)

	llm, err := CreateLLMService(&settings.LLM)
	if err != nil {
		result.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if llm == nil {
		result.Close()
		return nil, missingProvider("llm", settings.LLM.Provider)
	}
	result.LLMService = llm

	store, err := CreateVectorStore(&settings.VectorStore)
	if err != nil {
		result.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrVectorStoreUnavailable, err)
	}
	result.VectorStore = store

	logger.Debug("ai: embedding=%s/%s (%d dims), llm=%s/%s, vector store=%s",
		settings.Embedding.Provider, embedding.ModelName(), embedding.Dimensions(),
		settings.LLM.Provider, llm.ModelName(), settings.VectorStore.Provider)

	return result, nil
}

// missingProvider reports an unconfigured provider with a fix hint.
func missingProvider(section string, provider domain.AIProvider) error {
	if provider.RequiresAPIKey() {
		return &domain.MissingConfigError{
			Setting: section + ".api_key",
			Hint:    fmt.Sprintf("run 'plancheck settings set-key %s'", provider),
		}
	}
	return &domain.MissingConfigError{
		Setting: section + ".provider",
		Hint:    fmt.Sprintf("run 'plancheck settings set %s.provider <ollama|openai>'", section),
	}
}

// WrapEmbedding applies the rate limiter and the query cache. Cache hits
// do not consume limiter tokens.
func WrapEmbedding(svc driven.EmbeddingService, ingest domain.IngestSettings) driven.EmbeddingService {
	limited := ratelimit.New(svc, ratelimit.Config{
		RequestsPerSecond: ingest.RequestsPerSecond,
		Burst:             ingest.Burst,
	})
	return embedcache.New(limited, 0)
}

// Ping checks connectivity of every service in r.
func (r *InitResult) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	var errs []error
	if r.EmbeddingService != nil {
		if err := r.EmbeddingService.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("embedding: %w", err))
		}
	}
	if r.LLMService != nil {
		if err := r.LLMService.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("llm: %w", err))
		}
	}
	if p, ok := r.VectorStore.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("vector store: %w", err))
		}
	}
	return errors.Join(errs...)
}

// CreateEmbeddingService creates the embedding service for settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider == domain.AIProviderAnthropic {
		return nil, fmt.Errorf("%w: anthropic does not support embeddings, use ollama or openai",
			domain.ErrInvalidInput)
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		dimensions := domain.EmbeddingDimensions()[settings.Model]
		if dimensions == 0 {
			dimensions = ollamaembed.DefaultDimensions
		}
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: domain.EmbeddingDimensions()[settings.Model],
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the LLM service for settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// CreateVectorStore creates the vector store for settings.
func CreateVectorStore(settings *domain.VectorStoreSettings) (driven.VectorStore, error) {
	if settings == nil {
		return nil, &domain.MissingConfigError{Setting: "vector_store.provider"}
	}

	switch settings.Provider {
	case domain.VectorStoreMemory:
		logger.Warn("using in-memory vector store, nothing will persist")
		return memoryvector.NewStore(), nil

	case domain.VectorStoreQdrant, "":
		return qdrant.NewStore(qdrant.Config{URL: settings.URL, APIKey: settings.APIKey})

	default:
		return nil, fmt.Errorf("%w: unsupported vector store provider: %s", domain.ErrInvalidInput, settings.Provider)
	}
}
