package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
	"github.com/custodia-labs/plancheck/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"

	keyLLMProvider = "llm.provider"
	keyLLMModel    = "llm.model"
	keyLLMBaseURL  = "llm.base_url"
	keyLLMAPIKey   = "llm.api_key"

	keyVectorProvider = "vector_store.provider"
	keyVectorURL      = "vector_store.url"
	keyVectorAPIKey   = "vector_store.api_key"

	keyDirProvider     = "directory.provider"
	keyDirSpreadsheet  = "directory.spreadsheet_id"
	keyDirServiceEmail = "directory.service_account_email"
	keyDirPrivateKey   = "directory.private_key"

	keyGuidelineCollection = "retrieval.guideline_collection"
	keyGuidelineTopK       = "retrieval.guideline_top_k"
	keyUserTopK            = "retrieval.user_top_k"
	keyScrollPageSize      = "retrieval.scroll_page_size"

	keyChunkSize    = "ingest.chunk_size"
	keyChunkOverlap = "ingest.chunk_overlap"
	keyBatchSize    = "ingest.batch_size"
	keyWorkers      = "ingest.workers"
	keyRPS          = "ingest.requests_per_second"
	keyBurst        = "ingest.burst"

	keyLogFile       = "logging.file"
	keyLogMaxSize    = "logging.max_size_mb"
	keyLogMaxBackups = "logging.max_backups"
)

// Environment variables that override the config file.
//
//nolint:gosec // G101: variable names, not credentials.
const (
	EnvOpenAIAPIKey        = "OPENAI_API_KEY"
	EnvAnthropicAPIKey     = "ANTHROPIC_API_KEY"
	EnvQdrantURL           = "QDRANT_URL"
	EnvQdrantAPIKey        = "QDRANT_API_KEY"
	EnvServiceAccountEmail = "GOOGLE_SERVICE_ACCOUNT_EMAIL"
	EnvPrivateKey          = "GOOGLE_PRIVATE_KEY"
	EnvSpreadsheetID       = "GOOGLE_SPREADSHEET_ID"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
)

// settingKeys lists every key accepted by Set.
var settingKeys = map[string]keyKind{
	keyEmbedProvider: kindString, keyEmbedModel: kindString, keyEmbedBaseURL: kindString, keyEmbedAPIKey: kindString,
	keyLLMProvider: kindString, keyLLMModel: kindString, keyLLMBaseURL: kindString, keyLLMAPIKey: kindString,
	keyVectorProvider: kindString, keyVectorURL: kindString, keyVectorAPIKey: kindString,
	keyDirProvider: kindString, keyDirSpreadsheet: kindString, keyDirServiceEmail: kindString, keyDirPrivateKey: kindString,
	keyGuidelineCollection: kindString, keyGuidelineTopK: kindInt, keyUserTopK: kindInt, keyScrollPageSize: kindInt,
	keyChunkSize: kindInt, keyChunkOverlap: kindInt, keyBatchSize: kindInt, keyWorkers: kindInt,
	keyRPS: kindFloat, keyBurst: kindInt,
	keyLogFile: kindString, keyLogMaxSize: kindInt, keyLogMaxBackups: kindInt,
}

// SettingKeys returns the accepted config keys, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings with environment overrides applied.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.read()
	s.applyEnv(settings)
	return settings, nil
}

// read assembles settings from the config store and defaults only.
func (s *SettingsService) read() *domain.AppSettings {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:    s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		VectorStore: domain.VectorStoreSettings{
			Provider: domain.VectorStoreProvider(s.getString(keyVectorProvider, string(d.VectorStore.Provider))),
			URL:      s.getString(keyVectorURL, d.VectorStore.URL),
			APIKey:   s.configStore.GetString(keyVectorAPIKey),
		},
		Directory: domain.DirectorySettings{
			Provider:            domain.DirectoryProvider(s.getString(keyDirProvider, string(d.Directory.Provider))),
			SpreadsheetID:       s.configStore.GetString(keyDirSpreadsheet),
			ServiceAccountEmail: s.configStore.GetString(keyDirServiceEmail),
			PrivateKey:          s.configStore.GetString(keyDirPrivateKey),
		},
		Retrieval: domain.RetrievalSettings{
			GuidelineCollection: s.getString(keyGuidelineCollection, d.Retrieval.GuidelineCollection),
			GuidelineTopK:       s.getInt(keyGuidelineTopK, d.Retrieval.GuidelineTopK),
			UserTopK:            s.getInt(keyUserTopK, d.Retrieval.UserTopK),
			ScrollPageSize:      s.getInt(keyScrollPageSize, d.Retrieval.ScrollPageSize),
		},
		Ingest: domain.IngestSettings{
			ChunkSize:         s.getInt(keyChunkSize, d.Ingest.ChunkSize),
			ChunkOverlap:      s.getIntAllowZero(keyChunkOverlap, d.Ingest.ChunkOverlap),
			BatchSize:         s.getInt(keyBatchSize, d.Ingest.BatchSize),
			Workers:           s.getInt(keyWorkers, d.Ingest.Workers),
			RequestsPerSecond: s.getFloat(keyRPS, d.Ingest.RequestsPerSecond),
			Burst:             s.getInt(keyBurst, d.Ingest.Burst),
		},
		Logging: domain.LoggingSettings{
			File:       s.configStore.GetString(keyLogFile),
			MaxSizeMB:  s.getInt(keyLogMaxSize, d.Logging.MaxSizeMB),
			MaxBackups: s.getInt(keyLogMaxBackups, d.Logging.MaxBackups),
		},
	}
	return settings
}

// applyEnv overlays environment variables onto settings.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if s.getenv == nil {
		return
	}
	if key := s.getenv(EnvOpenAIAPIKey); key != "" {
		if settings.Embedding.Provider == domain.AIProviderOpenAI {
			settings.Embedding.APIKey = key
		}
		if settings.LLM.Provider == domain.AIProviderOpenAI {
			settings.LLM.APIKey = key
		}
	}
	if key := s.getenv(EnvAnthropicAPIKey); key != "" && settings.LLM.Provider == domain.AIProviderAnthropic {
		settings.LLM.APIKey = key
	}
	if v := s.getenv(EnvQdrantURL); v != "" {
		settings.VectorStore.URL = v
	}
	if v := s.getenv(EnvQdrantAPIKey); v != "" {
		settings.VectorStore.APIKey = v
	}
	if v := s.getenv(EnvSpreadsheetID); v != "" {
		settings.Directory.SpreadsheetID = v
	}
	if v := s.getenv(EnvServiceAccountEmail); v != "" {
		settings.Directory.ServiceAccountEmail = v
	}
	if v := s.getenv(EnvPrivateKey); v != "" {
		settings.Directory.PrivateKey = v
	}
}

// Save persists application settings. Empty secrets are not written so that
// values supplied through the environment never leak into the file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyVectorProvider, string(settings.VectorStore.Provider)},
		{keyVectorURL, settings.VectorStore.URL},
		{keyDirProvider, string(settings.Directory.Provider)},
		{keyDirSpreadsheet, settings.Directory.SpreadsheetID},
		{keyDirServiceEmail, settings.Directory.ServiceAccountEmail},
		{keyGuidelineCollection, settings.Retrieval.GuidelineCollection},
		{keyGuidelineTopK, settings.Retrieval.GuidelineTopK},
		{keyUserTopK, settings.Retrieval.UserTopK},
		{keyScrollPageSize, settings.Retrieval.ScrollPageSize},
		{keyChunkSize, settings.Ingest.ChunkSize},
		{keyChunkOverlap, settings.Ingest.ChunkOverlap},
		{keyBatchSize, settings.Ingest.BatchSize},
		{keyWorkers, settings.Ingest.Workers},
		{keyRPS, settings.Ingest.RequestsPerSecond},
		{keyBurst, settings.Ingest.Burst},
		{keyLogFile, settings.Logging.File},
		{keyLogMaxSize, settings.Logging.MaxSizeMB},
		{keyLogMaxBackups, settings.Logging.MaxBackups},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	secrets := []struct {
		key   string
		value string
	}{
		{keyEmbedAPIKey, settings.Embedding.APIKey},
		{keyLLMAPIKey, settings.LLM.APIKey},
		{keyVectorAPIKey, settings.VectorStore.APIKey},
		{keyDirPrivateKey, settings.Directory.PrivateKey},
	}
	for _, v := range secrets {
		if v.value == "" {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set stores a single dot-notation key, converting numeric values.
func (s *SettingsService) Set(key, value string) error {
	key = strings.TrimSpace(key)
	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)

	if err := validateSetting(key, value); err != nil {
		return err
	}

	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		return s.configStore.Set(key, n)
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		return s.configStore.Set(key, f)
	default:
		return s.configStore.Set(key, value)
	}
}

func validateSetting(key, value string) error {
	switch key {
	case keyEmbedProvider:
		if !isEmbeddingProvider(domain.AIProvider(value)) {
			return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, value)
		}
	case keyLLMProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, value)
		}
	case keyVectorProvider:
		if !domain.VectorStoreProvider(value).IsValid() {
			return fmt.Errorf("%w: invalid vector store provider: %s", domain.ErrInvalidInput, value)
		}
	case keyDirProvider:
		if !domain.DirectoryProvider(value).IsValid() {
			return fmt.Errorf("%w: invalid directory provider: %s", domain.ErrInvalidInput, value)
		}
	}
	return nil
}

func isEmbeddingProvider(provider domain.AIProvider) bool {
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			return true
		}
	}
	return false
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}
	if !isEmbeddingProvider(provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.envKey(provider) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings := s.read()
	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.envKey(provider) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings := s.read()
	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

func (s *SettingsService) envKey(provider domain.AIProvider) string {
	if s.getenv == nil {
		return ""
	}
	switch provider {
	case domain.AIProviderOpenAI:
		return s.getenv(EnvOpenAIAPIKey)
	case domain.AIProviderAnthropic:
		return s.getenv(EnvAnthropicAPIKey)
	default:
		return ""
	}
}

func modelOrDefault(model, def string) string {
	if model != "" {
		return model
	}
	return def
}

// baseURLFor keeps a custom endpoint for local providers and clears it for cloud ones.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return "http://localhost:11434"
	}
	return current
}

// Validate checks that every required setting is present.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !isEmbeddingProvider(settings.Embedding.Provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, settings.Embedding.Provider)
	}
	if !settings.Embedding.IsConfigured() {
		return &domain.MissingConfigError{
			Setting: keyEmbedAPIKey,
			Hint:    "set " + EnvOpenAIAPIKey + " or run 'plancheck settings set-key embedding'",
		}
	}
	if !settings.LLM.IsConfigured() {
		return &domain.MissingConfigError{
			Setting: keyLLMAPIKey,
			Hint:    "set " + envForLLM(settings.LLM.Provider) + " or run 'plancheck settings set-key llm'",
		}
	}
	if !settings.VectorStore.Provider.IsValid() {
		return fmt.Errorf("%w: invalid vector store provider: %s", domain.ErrInvalidInput, settings.VectorStore.Provider)
	}
	if !settings.VectorStore.IsConfigured() {
		return &domain.MissingConfigError{Setting: keyVectorURL, Hint: "set " + EnvQdrantURL}
	}
	return s.ValidateDirectory(settings)
}

// ValidateDirectory checks the identity directory settings only.
func (s *SettingsService) ValidateDirectory(settings *domain.AppSettings) error {
	d := settings.Directory
	if !d.Provider.IsValid() {
		return fmt.Errorf("%w: invalid directory provider: %s", domain.ErrInvalidInput, d.Provider)
	}
	if d.Provider != domain.DirectorySheets {
		return nil
	}
	switch {
	case d.SpreadsheetID == "":
		return &domain.MissingConfigError{Setting: keyDirSpreadsheet, Hint: "set " + EnvSpreadsheetID}
	case d.ServiceAccountEmail == "":
		return &domain.MissingConfigError{Setting: keyDirServiceEmail, Hint: "set " + EnvServiceAccountEmail}
	case d.PrivateKey == "":
		return &domain.MissingConfigError{Setting: keyDirPrivateKey, Hint: "set " + EnvPrivateKey}
	}
	return nil
}

func envForLLM(provider domain.AIProvider) string {
	if provider == domain.AIProviderAnthropic {
		return EnvAnthropicAPIKey
	}
	return EnvOpenAIAPIKey
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

// getIntAllowZero treats an explicit 0 as a value rather than unset.
func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
