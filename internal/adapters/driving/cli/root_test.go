package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/plancheck/internal/core/domain"
)

// mockChatService records requests and returns a fixed response.
type mockChatService struct {
	resp       *domain.ChatResponse
	err        error
	lastReq    domain.ChatRequest
	lastLetter domain.SectionLetter
}

func (m *mockChatService) Ask(
	_ context.Context, req domain.ChatRequest, _ func(string),
) (*domain.ChatResponse, error) {
	m.lastReq = req
	return m.resp, m.err
}

func (m *mockChatService) EvaluateSection(
	_ context.Context, identity string, letter domain.SectionLetter, _ func(string),
) (*domain.ChatResponse, error) {
	m.lastReq = domain.ChatRequest{Identity: identity}
	m.lastLetter = letter
	return m.resp, m.err
}

func (m *mockChatService) SectionPrompt(letter domain.SectionLetter) (string, error) {
	return string(letter), nil
}

// mockUploadService records uploads.
type mockUploadService struct {
	result   *domain.UploadResult
	records  []domain.UploadRecord
	err      error
	lastFile *domain.RawDocument
	lastOpts domain.UploadOptions
	identity string
}

func (m *mockUploadService) Upload(
	_ context.Context, identity string, file *domain.RawDocument, opts domain.UploadOptions,
) (*domain.UploadResult, error) {
	m.identity = identity
	m.lastFile = file
	m.lastOpts = opts
	return m.result, m.err
}

func (m *mockUploadService) History(_ context.Context, identity string) ([]domain.UploadRecord, error) {
	m.identity = identity
	return m.records, m.err
}

// mockGuidelineService records index requests.
type mockGuidelineService struct {
	result   *domain.GuidelineIndexResult
	status   *domain.GuidelineStatus
	err      error
	lastFile *domain.RawDocument
	lastOpts domain.GuidelineIndexOptions
}

func (m *mockGuidelineService) Index(
	_ context.Context, file *domain.RawDocument, opts domain.GuidelineIndexOptions,
) (*domain.GuidelineIndexResult, error) {
	m.lastFile = file
	m.lastOpts = opts
	return m.result, m.err
}

func (m *mockGuidelineService) Status(_ context.Context) (*domain.GuidelineStatus, error) {
	return m.status, m.err
}

// mockDirectoryService implements registration and score saving.
type mockDirectoryService struct {
	member    *domain.Member
	err       error
	lastReg   domain.Registration
	lastScore domain.ScoreEntry
}

func (m *mockDirectoryService) Register(_ context.Context, reg domain.Registration) error {
	m.lastReg = reg
	return m.err
}

func (m *mockDirectoryService) Check(_ context.Context, _ string) (*domain.Member, error) {
	return m.member, m.err
}

func (m *mockDirectoryService) Save(_ context.Context, entry domain.ScoreEntry) error {
	m.lastScore = entry
	return m.err
}

// mockSettingsService keeps settings in memory.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	setErr      error
	lastKey     string
	lastValue   string
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	m.lastKey = key
	m.lastValue = value
	return m.setErr
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding = domain.EmbeddingSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM = domain.LLMSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }

func (m *mockSettingsService) ValidateLLMConfig() error { return nil }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	chat      *mockChatService
	upload    *mockUploadService
	guideline *mockGuidelineService
	directory *mockDirectoryService
	settings  *mockSettingsService
}

// setupTestServices installs mocks for every service and returns them with
// a cleanup function that removes them.
func setupTestServices() (*testServices, func()) {
	score := 80
	ts := &testServices{
		chat: &mockChatService{resp: &domain.ChatResponse{
			Answer: "Plan looks complete.",
			Mode:   domain.QueryModeAnswer,
			Score:  &score,
		}},
		upload: &mockUploadService{
			result: &domain.UploadResult{UploadID: "up-1", ChunkCount: 3, FileName: "plan.txt"},
			records: []domain.UploadRecord{{
				ID:         "up-1",
				FileName:   "plan.txt",
				ChunkCount: 3,
				Replaced:   true,
				CreatedAt:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			}},
		},
		guideline: &mockGuidelineService{
			result: &domain.GuidelineIndexResult{
				CollectionName: domain.DefaultGuidelineCollection,
				SectionCount:   2,
				Codes:          []string{"A.1", "A.2"},
			},
			status: &domain.GuidelineStatus{
				CollectionName: domain.DefaultGuidelineCollection,
				Exists:         true,
				PointsCount:    2,
				VectorSize:     768,
			},
		},
		directory: &mockDirectoryService{member: &domain.Member{Exists: true, Name: "Ayşe Yılmaz", Row: 2}},
		settings:  &mockSettingsService{settings: domain.DefaultAppSettings()},
	}

	SetServices(Services{
		Chat:         ts.chat,
		Upload:       ts.upload,
		Guideline:    ts.guideline,
		Registration: ts.directory,
		Score:        ts.directory,
		Settings:     ts.settings,
	})

	return ts, func() {
		SetServices(Services{})
		SetSetupError(nil)
	}
}

// executeCommand runs the root command with args and returns its output.
// Flag values are reset first so tests do not leak into each other.
func executeCommand(args ...string) (string, error) {
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "plancheck", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCmd_HasVerboseFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	if assert.NotNil(t, flag) {
		assert.Equal(t, "v", flag.Shorthand)
		assert.Equal(t, "false", flag.DefValue)
	}
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{
		"guideline", "upload", "uploads", "ask", "evaluate", "register",
		"check", "score", "settings", "mcp", "tui", "version",
	} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestSetVersion(t *testing.T) {
	original := version
	defer func() { version = original }()

	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)
}

func TestUnavailable(t *testing.T) {
	defer SetSetupError(nil)

	SetSetupError(nil)
	assert.EqualError(t, unavailable("chat"), "chat service not configured")

	cfgErr := &domain.MissingConfigError{Setting: "llm.api_key"}
	SetSetupError(cfgErr)
	err := unavailable("chat")
	assert.ErrorIs(t, err, domain.ErrConfigurationMissing)
	assert.Contains(t, err.Error(), "chat unavailable")
}

func TestCommands_WithoutServices(t *testing.T) {
	SetServices(Services{})
	SetSetupError(errors.New("embedding.api_key is not set"))
	defer SetSetupError(nil)

	_, err := executeCommand("ask", "--email", "a@b.com", "question")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "embedding.api_key is not set")
}
