package domain

import (
	"fmt"
	"strings"
)

// QueryMode selects how a chat turn is answered.
type QueryMode string

// Available query modes.
const (
	// QueryModeAuto infers the mode from the last user message.
	QueryModeAuto QueryMode = "auto"

	// QueryModeAnswer answers a question using similarity retrieval.
	QueryModeAnswer QueryMode = "answer"

	// QueryModeEvaluate evaluates the full uploaded document against the rubric.
	QueryModeEvaluate QueryMode = "evaluate"
)

// evaluationTriggers are the phrases that switch auto mode to evaluation.
var evaluationTriggers = []string{"değerlendir", "eksik", "iş planını"}

// IsValid returns true if the mode is recognised.
func (m QueryMode) IsValid() bool {
	switch m {
	case QueryModeAuto, QueryModeAnswer, QueryModeEvaluate:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m QueryMode) String() string {
	return string(m)
}

// ParseQueryMode converts user input to a QueryMode. Empty input means auto.
func ParseQueryMode(s string) (QueryMode, error) {
	if strings.TrimSpace(s) == "" {
		return QueryModeAuto, nil
	}
	m := QueryMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("%w: unknown query mode %q", ErrInvalidInput, s)
	}
	return m, nil
}

// Resolve returns the concrete mode for a query. Auto mode inspects the
// query text for evaluation trigger phrases.
func (m QueryMode) Resolve(query string) QueryMode {
	switch m {
	case QueryModeAnswer, QueryModeEvaluate:
		return m
	}
	if IsEvaluationQuery(query) {
		return QueryModeEvaluate
	}
	return QueryModeAnswer
}

// IsEvaluationQuery reports whether the text contains an evaluation trigger phrase.
func IsEvaluationQuery(query string) bool {
	lower := strings.ToLower(query)
	for _, trigger := range evaluationTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}

// RetrievalPolicy names how user content was fetched.
type RetrievalPolicy string

// Available retrieval policies.
const (
	// RetrievalSimilarity fetches the top-k most similar points.
	RetrievalSimilarity RetrievalPolicy = "similarity"

	// RetrievalExhaustive fetches every point of the collection.
	RetrievalExhaustive RetrievalPolicy = "exhaustive"
)

// MessageRole identifies the author of a chat message.
type MessageRole string

// Chat message roles.
const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// LastUserMessage returns the content of the final user message, or "".
func LastUserMessage(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

// GuidelineMatch is a rulebook section retrieved for a query.
type GuidelineMatch struct {
	Section SectionRecord
	Score   float64
}

// UserMatch is a chunk of the user's document retrieved for a query.
type UserMatch struct {
	Chunk Chunk
	Score float64
}

// QueryContext is the retrieval result assembled for one chat turn.
type QueryContext struct {
	// Guideline holds the matched rulebook sections.
	Guideline []GuidelineMatch

	// User holds the matched chunks of the user's document.
	User []UserMatch

	// Policy is the retrieval policy used for user content.
	Policy RetrievalPolicy

	// Mode is the resolved query mode.
	Mode QueryMode

	// HasUserFile is true when at least one user chunk was retrieved.
	HasUserFile bool

	// Warnings records degraded retrieval steps.
	Warnings []string
}

// ChatRequest is a chat turn submitted by an identified user.
type ChatRequest struct {
	// Identity is the user's email. Required.
	Identity string

	// Messages is the conversation so far, ending with the user's question.
	Messages []Message

	// Mode selects answer or evaluation. Zero value means auto.
	Mode QueryMode

	// Section restricts an evaluation to one top-level rubric section.
	// Setting it forces evaluation mode.
	Section SectionLetter
}

// ChatResponse is the completed answer of a chat turn.
type ChatResponse struct {
	// Answer is the full generated text.
	Answer string

	// Mode is the resolved query mode.
	Mode QueryMode

	// Score is the extracted score for evaluation turns, nil when absent.
	Score *int

	// ScoreSaved is true when a section score was persisted.
	ScoreSaved bool

	// Warnings lists degraded retrieval steps.
	Warnings []string

	// GuidelineCount is the number of rulebook sections used.
	GuidelineCount int

	// UserChunkCount is the number of user chunks used.
	UserChunkCount int
}

// PartialFailure reports whether retrieval degraded during the turn.
func (r *ChatResponse) PartialFailure() bool {
	return len(r.Warnings) > 0
}
