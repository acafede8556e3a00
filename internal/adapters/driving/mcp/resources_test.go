package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/plancheck/internal/core/domain"
)

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleRubricResource(t *testing.T) {
	server, err := NewServer(&Ports{Chat: &mockChatService{}})
	require.NoError(t, err)

	result, err := server.handleRubricResource(context.Background(), makeReadResourceRequest(rubricURI))
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, rubricURI, result.Contents[0].URI)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)

	var sections []rubricInfo
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &sections))
	require.Len(t, sections, len(domain.Rubric()))
	assert.Equal(t, "A", sections[0].Letter)
	assert.Equal(t, "E", sections[0].ScoreColumn)
	assert.NotEmpty(t, sections[0].Scope)
}

func TestServer_handleGuidelineStatusResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns status", func(t *testing.T) {
		guideline := &mockGuidelineService{status: &domain.GuidelineStatus{
			CollectionName: domain.DefaultGuidelineCollection,
			Exists:         true,
			PointsCount:    42,
			VectorSize:     768,
		}}
		server, err := NewServer(&Ports{Chat: &mockChatService{}, Guideline: guideline})
		require.NoError(t, err)

		result, err := server.handleGuidelineStatusResource(ctx, makeReadResourceRequest(guidelineStatusURI))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)

		var status map[string]any
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &status))
		assert.Equal(t, true, status["exists"])
		assert.EqualValues(t, 42, status["points_count"])
	})

	t.Run("not found without guideline service", func(t *testing.T) {
		server, err := NewServer(&Ports{Chat: &mockChatService{}})
		require.NoError(t, err)

		_, err = server.handleGuidelineStatusResource(ctx, makeReadResourceRequest(guidelineStatusURI))
		require.Error(t, err)
	})

	t.Run("service error", func(t *testing.T) {
		guideline := &mockGuidelineService{err: errors.New("qdrant down")}
		server, err := NewServer(&Ports{Chat: &mockChatService{}, Guideline: guideline})
		require.NoError(t, err)

		_, err = server.handleGuidelineStatusResource(ctx, makeReadResourceRequest(guidelineStatusURI))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "qdrant down")
	})
}
