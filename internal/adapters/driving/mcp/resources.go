package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/plancheck/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for plancheck resources.
	uriScheme = "plancheck://"

	rubricURI          = uriScheme + "rubric"
	guidelineStatusURI = uriScheme + "guideline/status"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         rubricURI,
		Name:        "rubric",
		Description: "Business plan rubric sections A-F with their sub-section scope",
		MIMEType:    "application/json",
	}, s.handleRubricResource)

	if s.ports.Guideline != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         guidelineStatusURI,
			Name:        "guideline-status",
			Description: "Whether the rulebook is indexed and how many sections it holds",
			MIMEType:    "application/json",
		}, s.handleGuidelineStatusResource)
	}
}

// rubricInfo is the JSON shape of one rubric section.
type rubricInfo struct {
	Letter      string   `json:"letter"`
	Title       string   `json:"title"`
	Scope       []string `json:"scope"`
	ScoreColumn string   `json:"score_column"`
}

func (s *Server) handleRubricResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	sections := domain.Rubric()
	infos := make([]rubricInfo, len(sections))
	for i, sec := range sections {
		infos[i] = rubricInfo{
			Letter:      string(sec.Letter),
			Title:       sec.Title,
			Scope:       sec.Scope,
			ScoreColumn: sec.ScoreColumn,
		}
	}
	return jsonResource(req.Params.URI, infos)
}

func (s *Server) handleGuidelineStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Guideline == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	status, err := s.ports.Guideline.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("guideline status: %w", err)
	}
	return jsonResource(req.Params.URI, map[string]any{
		"collection":   status.CollectionName,
		"exists":       status.Exists,
		"points_count": status.PointsCount,
		"vector_size":  status.VectorSize,
	})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
