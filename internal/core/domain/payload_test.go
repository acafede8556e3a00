package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkFromPayload_JSONNumbers(t *testing.T) {
	uploaded := time.Date(2026, 4, 2, 8, 30, 0, 0, time.UTC)
	chunk := Chunk{Text: "Pazar analizi", FileName: "plan.docx", ChunkIndex: 4, TotalChunks: 9, UploadedAt: uploaded}

	// Payloads coming back from the vector store have been through JSON.
	data, err := json.Marshal(chunk.Payload())
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	got := ChunkFromPayload(decoded)
	assert.Equal(t, 4, got.ChunkIndex)
	assert.Equal(t, 9, got.TotalChunks)
	assert.Equal(t, "plan.docx", got.FileName)
	assert.True(t, uploaded.Equal(got.UploadedAt))
}

func TestChunkFromPayload_FallsBackToOriginalText(t *testing.T) {
	got := ChunkFromPayload(map[string]any{PayloadOriginalText: "A.1. Giriş"})
	assert.Equal(t, "A.1. Giriş", got.Text)
	assert.Zero(t, got.ChunkIndex)
	assert.True(t, got.UploadedAt.IsZero())
}

func TestSectionFromPayload_MissingKeys(t *testing.T) {
	got := SectionFromPayload(map[string]any{PayloadSectionCode: "B.2", PayloadTitle: 7})
	assert.Equal(t, "B.2", got.SectionCode)
	assert.Empty(t, got.Title)
	assert.Empty(t, got.Purpose)
}

func TestSectionRecord_PayloadKeys(t *testing.T) {
	rec := SectionRecord{SectionCode: "A.1", Title: "Giriş", Purpose: "p", OriginalText: "A.1. Giriş\np"}
	assert.Equal(t, rec, SectionFromPayload(rec.Payload()))
}
