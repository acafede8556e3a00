package services

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/plancheck/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
)

// mockEmbedder produces deterministic vectors derived from the text.
type mockEmbedder struct {
	dims  int
	err   error
	errOn map[string]error
	calls atomic.Int32
}

func newMockEmbedder(dims int) *mockEmbedder {
	return &mockEmbedder{dims: dims}
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	if err, ok := m.errOn[text]; ok {
		return nil, err
	}
	size := m.dims
	if size <= 0 {
		size = 4
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum32()
	vec := make([]float32, size)
	for i := range vec {
		vec[i] = float32((seed>>(uint(i)%24))&0xff) + 1
	}
	return vec, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) ModelName() string { return "mock-embed" }
func (m *mockEmbedder) Ping(context.Context) error { return m.err }
func (m *mockEmbedder) Close() error { return nil }

// mockLLM records the messages it receives and streams a canned reply.
type mockLLM struct {
	mu       sync.Mutex
	reply    string
	err      error
	messages []domain.Message
}

func (m *mockLLM) Chat(ctx context.Context, messages []domain.Message, opts driven.ChatOptions) (string, error) {
	return m.ChatStream(ctx, messages, opts, nil)
}

func (m *mockLLM) ChatStream(
	_ context.Context, messages []domain.Message, _ driven.ChatOptions, onToken driven.TokenHandler,
) (string, error) {
	m.mu.Lock()
	m.messages = append([]domain.Message(nil), messages...)
	m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	if onToken != nil {
		for _, word := range strings.SplitAfter(m.reply, " ") {
			onToken(word)
		}
	}
	return m.reply, nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error { return nil }

func (m *mockLLM) lastMessages() []domain.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.messages
}

// mockPrompts serves short templates so assertions stay readable.
type mockPrompts struct {
	prompts map[string]string
}

func newMockPrompts() *mockPrompts {
	return &mockPrompts{prompts: map[string]string{
		driven.PromptSystemBase:         "BASE",
		driven.PromptGuardrails:         "GUARDRAILS",
		driven.PromptNoFile:             "NOFILE",
		driven.PromptEvaluationRubric:   "RUBRIC",
		driven.PromptAnswerInstructions: "ANSWER",
		driven.PromptSectionEvaluation:  "Evaluate %[1]s (%[2]s): %[3]s",
	}}
}

func (m *mockPrompts) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", errors.New("prompt not found: " + name)
	}
	return p, nil
}

func (m *mockPrompts) Reload() {}

// mockScores records saved score entries.
type mockScores struct {
	mu      sync.Mutex
	err     error
	entries []domain.ScoreEntry
}

func (m *mockScores) Save(_ context.Context, entry domain.ScoreEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

// faultyVectors wraps the in-memory store and injects failures.
type faultyVectors struct {
	*memory.Store
	searchErr  map[string]error
	upsertErr  error
	upsertCall int
	failAt     int
	getErr     error
}

func newFaultyVectors() *faultyVectors {
	return &faultyVectors{Store: memory.NewStore(), searchErr: map[string]error{}, failAt: -1}
}

func (f *faultyVectors) Search(ctx context.Context, name string, vector []float32, limit int) ([]driven.ScoredPoint, error) {
	if err, ok := f.searchErr[name]; ok {
		return nil, err
	}
	return f.Store.Search(ctx, name, vector, limit)
}

func (f *faultyVectors) Upsert(ctx context.Context, name string, points []driven.Point, wait bool) error {
	call := f.upsertCall
	f.upsertCall++
	if f.upsertErr != nil && call == f.failAt {
		return f.upsertErr
	}
	return f.Store.Upsert(ctx, name, points, wait)
}

func (f *faultyVectors) GetCollection(ctx context.Context, name string) (*domain.CollectionInfo, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Store.GetCollection(ctx, name)
}
