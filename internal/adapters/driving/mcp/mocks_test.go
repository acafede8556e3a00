package mcp

import (
	"context"

	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/core/ports/driving"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	resp        *domain.ChatResponse
	err         error
	lastRequest domain.ChatRequest
	lastLetter  domain.SectionLetter
}

func (m *mockChatService) Ask(
	_ context.Context,
	req domain.ChatRequest,
	_ func(string),
) (*domain.ChatResponse, error) {
	m.lastRequest = req
	return m.resp, m.err
}

func (m *mockChatService) EvaluateSection(
	_ context.Context,
	identity string,
	letter domain.SectionLetter,
	_ func(string),
) (*domain.ChatResponse, error) {
	m.lastRequest = domain.ChatRequest{Identity: identity}
	m.lastLetter = letter
	return m.resp, m.err
}

func (m *mockChatService) SectionPrompt(letter domain.SectionLetter) (string, error) {
	return "evaluate " + string(letter), nil
}

// mockUploadService is a mock implementation of driving.UploadService.
type mockUploadService struct {
	result   *domain.UploadResult
	err      error
	lastFile *domain.RawDocument
	lastOpts domain.UploadOptions
}

func (m *mockUploadService) Upload(
	_ context.Context,
	_ string,
	file *domain.RawDocument,
	opts domain.UploadOptions,
) (*domain.UploadResult, error) {
	m.lastFile = file
	m.lastOpts = opts
	return m.result, m.err
}

func (m *mockUploadService) History(_ context.Context, _ string) ([]domain.UploadRecord, error) {
	return nil, m.err
}

// mockRegistrationService is a mock implementation of driving.RegistrationService.
type mockRegistrationService struct {
	member *domain.Member
	err    error
}

func (m *mockRegistrationService) Register(_ context.Context, _ domain.Registration) error {
	return m.err
}

func (m *mockRegistrationService) Check(_ context.Context, _ string) (*domain.Member, error) {
	return m.member, m.err
}

// mockGuidelineService is a mock implementation of driving.GuidelineService.
type mockGuidelineService struct {
	status *domain.GuidelineStatus
	err    error
}

func (m *mockGuidelineService) Index(
	_ context.Context,
	_ *domain.RawDocument,
	_ domain.GuidelineIndexOptions,
) (*domain.GuidelineIndexResult, error) {
	return nil, m.err
}

func (m *mockGuidelineService) Status(_ context.Context) (*domain.GuidelineStatus, error) {
	return m.status, m.err
}

var (
	_ driving.ChatService         = (*mockChatService)(nil)
	_ driving.UploadService       = (*mockUploadService)(nil)
	_ driving.RegistrationService = (*mockRegistrationService)(nil)
	_ driving.GuidelineService    = (*mockGuidelineService)(nil)
)
