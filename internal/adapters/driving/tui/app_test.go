package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/plancheck/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/plancheck/internal/core/domain"
)

// MockChatService implements driving.ChatService for TUI tests.
type MockChatService struct{}

func (m *MockChatService) Ask(
	_ context.Context, _ domain.ChatRequest, _ func(string),
) (*domain.ChatResponse, error) {
	return &domain.ChatResponse{Answer: "ok"}, nil
}

func (m *MockChatService) EvaluateSection(
	_ context.Context, _ string, _ domain.SectionLetter, _ func(string),
) (*domain.ChatResponse, error) {
	return &domain.ChatResponse{Answer: "ok"}, nil
}

func (m *MockChatService) SectionPrompt(letter domain.SectionLetter) (string, error) {
	return string(letter), nil
}

// MockGuidelineService implements driving.GuidelineService for TUI tests.
type MockGuidelineService struct {
	status *domain.GuidelineStatus
}

func (m *MockGuidelineService) Index(
	_ context.Context, _ *domain.RawDocument, _ domain.GuidelineIndexOptions,
) (*domain.GuidelineIndexResult, error) {
	return &domain.GuidelineIndexResult{}, nil
}

func (m *MockGuidelineService) Status(_ context.Context) (*domain.GuidelineStatus, error) {
	return m.status, nil
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(&Ports{Chat: &MockChatService{}}, "Ayse@Example.com ")
	require.NoError(t, err)
	return app
}

func TestNewApp_Success(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, messages.ViewChat, app.CurrentView())
	assert.False(t, app.Ready())
	assert.NotNil(t, app.ChatView())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{}, "a@b.com")
	assert.ErrorIs(t, err, ErrMissingChatService)
	assert.Nil(t, app)

	app, err = NewApp(nil, "a@b.com")
	assert.ErrorIs(t, err, ErrMissingChatService)
	assert.Nil(t, app)
}

func TestNewApp_MissingIdentity(t *testing.T) {
	app, err := NewApp(&Ports{Chat: &MockChatService{}}, "  ")
	assert.ErrorIs(t, err, ErrMissingIdentity)
	assert.Nil(t, app)
}

func TestApp_WithMode(t *testing.T) {
	app := newTestApp(t).WithMode(domain.QueryModeEvaluate)
	assert.Equal(t, domain.QueryModeEvaluate, app.ChatView().Mode())
}

func TestApp_ViewBeforeReady(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_WindowSize(t *testing.T) {
	app := newTestApp(t)

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	assert.Nil(t, cmd)
	assert.Same(t, app, model)
	assert.True(t, app.Ready())
	assert.Contains(t, app.View(), "plancheck")
}

func TestApp_HelpToggle(t *testing.T) {
	app := newTestApp(t)
	app.SetDimensions(100, 40)

	app.Update(tea.KeyMsg{Type: tea.KeyF1})
	assert.Equal(t, messages.ViewHelp, app.CurrentView())
	assert.Contains(t, app.View(), "/evaluate")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewChat, app.CurrentView())
}

func TestApp_ViewChangedMessage(t *testing.T) {
	app := newTestApp(t)

	app.Update(messages.ViewChanged{View: messages.ViewHelp})

	assert.Equal(t, messages.ViewHelp, app.CurrentView())
}

func TestApp_Quit(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = app.Update(messages.Quit{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_LoadGuidelineStatus(t *testing.T) {
	app, err := NewApp(&Ports{
		Chat:      &MockChatService{},
		Guideline: &MockGuidelineService{status: &domain.GuidelineStatus{Exists: true, PointsCount: 9}},
	}, "a@b.com")
	require.NoError(t, err)

	cmd := app.loadGuidelineStatus()
	require.NotNil(t, cmd)
	msg, ok := cmd().(messages.GuidelineStatusLoaded)
	require.True(t, ok)
	assert.Equal(t, 9, msg.Status.PointsCount)

	assert.Nil(t, newTestApp(t).loadGuidelineStatus())
}
