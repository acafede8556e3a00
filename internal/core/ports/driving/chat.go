package driving

import (
	"context"

	"github.com/custodia-labs/plancheck/internal/core/domain"
)

// ChatService answers questions about the rulebook and evaluates uploaded plans.
type ChatService interface {
	// Ask runs one chat turn. onToken receives streamed text and may be nil.
	// Retrieval failures degrade into warnings on the response.
	Ask(ctx context.Context, req domain.ChatRequest, onToken func(token string)) (*domain.ChatResponse, error)

	// EvaluateSection evaluates one top-level rubric section of the user's
	// uploaded plan and persists the extracted score when a directory is configured.
	EvaluateSection(ctx context.Context, identity string, letter domain.SectionLetter, onToken func(token string)) (*domain.ChatResponse, error)

	// SectionPrompt returns the user message used to evaluate a section.
	SectionPrompt(letter domain.SectionLetter) (string, error)
}
