package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
)

func TestConfigStore_ImplementsInterface(t *testing.T) {
	var _ driven.ConfigStore = (*ConfigStore)(nil)
}

func TestNewConfigStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "plancheck")

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestNewConfigStore_InvalidDir(t *testing.T) {
	_, err := NewConfigStore("/dev/null/cannot/create")
	assert.Error(t, err)
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not toml {{[["), 0600))

	_, err := NewConfigStore(dir)
	assert.Error(t, err)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.provider", "anthropic"))
	require.NoError(t, store.Set("retrieval.guideline_top_k", 5))
	require.NoError(t, store.Set("ingest.requests_per_second", 2.5))
	require.NoError(t, store.Set("ingest.burst", 3))
	require.NoError(t, store.Set("feature.enabled", true))
	require.NoError(t, store.Set("list", []string{"a", "b"}))

	assert.Equal(t, "anthropic", store.GetString("llm.provider"))
	assert.Equal(t, 5, store.GetInt("retrieval.guideline_top_k"))
	assert.InDelta(t, 2.5, store.GetFloat("ingest.requests_per_second"), 1e-9)
	assert.InDelta(t, 3.0, store.GetFloat("ingest.burst"), 1e-9)
	assert.True(t, store.GetBool("feature.enabled"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("list"))

	// Wrong types and missing keys give zero values.
	assert.Equal(t, "", store.GetString("retrieval.guideline_top_k"))
	assert.Equal(t, 0, store.GetInt("llm.provider"))
	assert.Equal(t, 0.0, store.GetFloat("missing"))
	assert.False(t, store.GetBool("llm.provider"))
	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("vector_store.url", "http://qdrant:6333"))
	require.NoError(t, store.Set("vector_store.provider", "qdrant"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[vector_store]")
	assert.NotContains(t, string(data), `"vector_store.url"`)

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://qdrant:6333", reopened.GetString("vector_store.url"))
	assert.Equal(t, []string{"vector_store.provider", "vector_store.url"}, reopened.Keys())
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[embedding]
provider = "ollama"
model = "nomic-embed-text"

[ingest]
chunk_size = 800
requests_per_second = 1.5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "ollama", store.GetString("embedding.provider"))
	assert.Equal(t, 800, store.GetInt("ingest.chunk_size"))
	assert.InDelta(t, 1.5, store.GetFloat("ingest.requests_per_second"), 1e-9)
}

func TestConfigStore_KeyConflictRollsBack(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm", "scalar"))
	err = store.Set("llm.provider", "openai")
	require.Error(t, err)

	_, ok := store.Get("llm.provider")
	assert.False(t, ok)
	assert.Equal(t, "scalar", store.GetString("llm"))
}

func TestConfigStore_UnmarshallableValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Set("channel", make(chan int)))
	_, ok := store.Get("channel")
	assert.False(t, ok)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.api_key", "sk-secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_CommentOnlyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("# empty\n"), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "workers.w" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 10)
}
