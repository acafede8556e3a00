// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/custodia-labs/plancheck/internal/core/domain"
)

// LLMService provides chat completion for answering and evaluation.
//
// Implementations may include:
//   - OpenAI (GPT-4o)
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	// Chat conducts a multi-turn conversation and returns the full reply.
	Chat(ctx context.Context, messages []domain.Message, opts ChatOptions) (string, error)

	// ChatStream conducts a multi-turn conversation, calling onToken for each
	// text delta as it arrives. Returns the concatenated reply.
	// Cancelling ctx abandons the stream.
	ChatStream(ctx context.Context, messages []domain.Message, opts ChatOptions, onToken TokenHandler) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// TokenHandler receives streamed text deltas. It may be nil.
type TokenHandler func(token string)

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
