package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChunks(t *testing.T) {
	now := time.Now()
	chunks := NewChunks("plan.docx", []string{"one", "two", "three"}, now)

	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, i, c.ChunkIndex)
		assert.Equal(t, 3, c.TotalChunks)
		assert.Equal(t, "plan.docx", c.FileName)
		assert.Equal(t, now, c.UploadedAt)
	}
	assert.Equal(t, "two", chunks[1].Text)
}

func TestNewChunks_Empty(t *testing.T) {
	assert.Empty(t, NewChunks("f", nil, time.Now()))
}
