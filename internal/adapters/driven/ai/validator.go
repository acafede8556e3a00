package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks the [embedding] and [llm] settings sections by
// building the provider and pinging it. 'plancheck settings embedding' and
// 'plancheck settings llm' run it before reporting OK.
type ConfigValidator struct {
	timeout time.Duration

	newEmbedding func(*domain.EmbeddingSettings) (driven.EmbeddingService, error)
	newLLM       func(*domain.LLMSettings) (driven.LLMService, error)
}

// NewConfigValidator creates a validator that pings with the default timeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		timeout:      pingTimeout,
		newEmbedding: CreateEmbeddingService,
		newLLM:       CreateLLMService,
	}
}

// ValidateEmbedding pings the embedding provider. Unconfigured settings are
// not an error; the rulebook and uploads simply cannot be indexed yet.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	if config == nil || !config.IsConfigured() {
		return nil
	}
	svc, err := v.newEmbedding(config)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("embedding %s (%s): %w", config.Provider, svc.ModelName(), err)
	}
	return nil
}

// ValidateLLM pings the completion provider used for answers and evaluations.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if config == nil || !config.IsConfigured() {
		return nil
	}
	svc, err := v.newLLM(config)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("llm %s (%s): %w", config.Provider, svc.ModelName(), err)
	}
	return nil
}
