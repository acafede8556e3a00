package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
	"github.com/custodia-labs/plancheck/internal/core/ports/driving"
	"github.com/custodia-labs/plancheck/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// ChatService answers rulebook questions and evaluates uploaded plans.
type ChatService struct {
	retriever *Retriever
	assembler *Assembler
	llm       driven.LLMService
	scores    driving.ScoreService
	opts      driven.ChatOptions
}

// NewChatService creates a chat service. scores may be nil, in which case
// section scores are reported but not persisted.
func NewChatService(
	retriever *Retriever,
	assembler *Assembler,
	llm driven.LLMService,
	scores driving.ScoreService,
) *ChatService {
	return &ChatService{
		retriever: retriever,
		assembler: assembler,
		llm:       llm,
		scores:    scores,
	}
}

// SetChatOptions overrides the completion options.
func (s *ChatService) SetChatOptions(opts driven.ChatOptions) {
	s.opts = opts
}

// Ask runs one chat turn.
func (s *ChatService) Ask(ctx context.Context, req domain.ChatRequest, onToken func(token string)) (*domain.ChatResponse, error) {
	logger.Section("Chat")

	// Without an identity the turn is answered from the rulebook alone.
	identity := domain.NormalizeIdentity(req.Identity)
	if identity == "" && req.Section != "" {
		return nil, fmt.Errorf("%w: identity (email) is required to record a section score", domain.ErrInvalidInput)
	}

	query := strings.TrimSpace(domain.LastUserMessage(req.Messages))
	if query == "" {
		return nil, fmt.Errorf("%w: a user message is required", domain.ErrInvalidInput)
	}

	mode := req.Mode
	if mode == "" {
		mode = domain.QueryModeAuto
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: unknown query mode %q", domain.ErrInvalidInput, mode)
	}
	if req.Section != "" {
		if !req.Section.IsValid() {
			return nil, fmt.Errorf("%w: unknown section %q", domain.ErrInvalidInput, req.Section)
		}
		mode = domain.QueryModeEvaluate
	}
	resolved := mode.Resolve(query)
	logger.Info("Query mode: %s (requested %s)", resolved, mode)

	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if s.retriever == nil {
		return nil, domain.ErrVectorStoreUnavailable
	}

	qc, err := s.retriever.Retrieve(ctx, identity, query, resolved)
	if err != nil {
		return nil, err
	}

	if identity == "" {
		qc.Warnings = append(qc.Warnings, "no email given; answering from the rulebook only")
	}

	contextText := s.assembler.BuildContext(qc.Guideline, qc.User)
	systemPrompt, err := s.assembler.BuildSystemPrompt(contextText, resolved, qc.HasUserFile)
	if err != nil {
		return nil, err
	}
	logger.Debug("Context: %d chars, system prompt: %d chars", len(contextText), len(systemPrompt))

	messages := make([]domain.Message, 0, len(req.Messages)+1)
	messages = append(messages, domain.Message{Role: domain.RoleSystem, Content: systemPrompt})
	for _, m := range req.Messages {
		if m.Role == domain.RoleSystem || strings.TrimSpace(m.Content) == "" {
			continue
		}
		messages = append(messages, m)
	}

	answer, err := s.llm.ChatStream(ctx, messages, s.opts, onToken)
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}

	resp := &domain.ChatResponse{
		Answer:         answer,
		Mode:           resolved,
		Warnings:       qc.Warnings,
		GuidelineCount: len(qc.Guideline),
		UserChunkCount: len(qc.User),
	}

	if resolved == domain.QueryModeEvaluate {
		if score, ok := ExtractScore(answer); ok {
			resp.Score = &score
		}
	}

	if req.Section != "" {
		s.persistScore(ctx, identity, req.Section, resp)
	}
	return resp, nil
}

// persistScore saves a section score. Failures become warnings.
func (s *ChatService) persistScore(ctx context.Context, identity string, letter domain.SectionLetter, resp *domain.ChatResponse) {
	if resp.Score == nil {
		resp.Warnings = append(resp.Warnings, "no section score found in the report")
		return
	}
	if s.scores == nil {
		logger.Debug("Score persistence disabled: no directory configured")
		return
	}

	err := s.scores.Save(ctx, domain.ScoreEntry{Email: identity, Section: letter, Score: *resp.Score})
	if err != nil {
		logger.Warn("Saving score for section %s failed: %v", letter, err)
		resp.Warnings = append(resp.Warnings, "score could not be saved: "+err.Error())
		return
	}
	resp.ScoreSaved = true
	logger.Info("Saved section %s score %d", letter, *resp.Score)
}

// EvaluateSection evaluates one rubric section of the user's uploaded plan.
func (s *ChatService) EvaluateSection(
	ctx context.Context, identity string, letter domain.SectionLetter, onToken func(token string),
) (*domain.ChatResponse, error) {
	prompt, err := s.SectionPrompt(letter)
	if err != nil {
		return nil, err
	}
	return s.Ask(ctx, domain.ChatRequest{
		Identity: identity,
		Messages: []domain.Message{{Role: domain.RoleUser, Content: prompt}},
		Mode:     domain.QueryModeEvaluate,
		Section:  letter,
	}, onToken)
}

// SectionPrompt returns the user message used to evaluate a section.
func (s *ChatService) SectionPrompt(letter domain.SectionLetter) (string, error) {
	return s.assembler.SectionPrompt(letter)
}
