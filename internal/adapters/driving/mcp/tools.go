package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/plancheck/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Email    string           `json:"email" jsonschema:"the user's registered email address"`
	Question string           `json:"question" jsonschema:"the question or evaluation request"`
	Mode     string           `json:"mode,omitempty" jsonschema:"auto, answer or evaluate (default auto)"`
	History  []domain.Message `json:"history,omitempty" jsonschema:"earlier turns of the conversation"`
}

// AnswerOutput is the output schema for the ask and evaluate_section tools.
type AnswerOutput struct {
	Answer         string   `json:"answer"`
	Mode           string   `json:"mode"`
	Score          *int     `json:"score,omitempty"`
	ScoreSaved     bool     `json:"score_saved,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
	GuidelineCount int      `json:"guideline_count"`
	UserChunkCount int      `json:"user_chunk_count"`
}

// EvaluateSectionInput is the input schema for the evaluate_section tool.
type EvaluateSectionInput struct {
	Email   string `json:"email" jsonschema:"the user's registered email address"`
	Section string `json:"section" jsonschema:"rubric section letter, A to F"`
}

// UploadTextInput is the input schema for the upload_text tool.
type UploadTextInput struct {
	Email    string `json:"email" jsonschema:"the user's registered email address"`
	FileName string `json:"file_name,omitempty" jsonschema:"name recorded for the upload (default plan.txt)"`
	Content  string `json:"content" jsonschema:"plain text of the business plan"`
	Replace  bool   `json:"replace,omitempty" jsonschema:"drop previously uploaded content first"`
}

// UploadOutput is the output schema for the upload_text tool.
type UploadOutput struct {
	UploadID   string `json:"upload_id"`
	ChunkCount int    `json:"chunk_count"`
	FileName   string `json:"file_name"`
}

// CheckRegistrationInput is the input schema for the check_registration tool.
type CheckRegistrationInput struct {
	Email string `json:"email" jsonschema:"the email address to look up"`
}

// CheckRegistrationOutput is the output schema for the check_registration tool.
type CheckRegistrationOutput struct {
	Exists bool   `json:"exists"`
	Name   string `json:"name,omitempty"`
}

// defaultUploadName names text uploads without a file name.
const defaultUploadName = "plan.txt"

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask a question about the business plan rulebook or request an evaluation of the uploaded plan",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "evaluate_section",
		Description: "Evaluate one rubric section (A-F) of the uploaded plan and record its score",
	}, s.handleEvaluateSection)

	if s.ports.Upload != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "upload_text",
			Description: "Upload business plan text for later questions and evaluations",
		}, s.handleUploadText)
	}

	if s.ports.Registration != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "check_registration",
			Description: "Check whether an email address is registered",
		}, s.handleCheckRegistration)
	}
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	mode, err := domain.ParseQueryMode(input.Mode)
	if err != nil {
		return nil, AnswerOutput{}, err
	}

	messages := make([]domain.Message, 0, len(input.History)+1)
	messages = append(messages, input.History...)
	messages = append(messages, domain.Message{Role: domain.RoleUser, Content: input.Question})

	resp, err := s.ports.Chat.Ask(ctx, domain.ChatRequest{
		Identity: input.Email,
		Messages: messages,
		Mode:     mode,
	}, nil)
	if err != nil {
		return nil, AnswerOutput{}, err
	}
	return nil, toAnswerOutput(resp), nil
}

func (s *Server) handleEvaluateSection(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EvaluateSectionInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	letter, err := domain.ParseSectionLetter(input.Section)
	if err != nil {
		return nil, AnswerOutput{}, err
	}

	resp, err := s.ports.Chat.EvaluateSection(ctx, input.Email, letter, nil)
	if err != nil {
		return nil, AnswerOutput{}, err
	}
	return nil, toAnswerOutput(resp), nil
}

func (s *Server) handleUploadText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UploadTextInput,
) (*mcp.CallToolResult, UploadOutput, error) {
	if s.ports.Upload == nil {
		return nil, UploadOutput{}, fmt.Errorf("%w: upload", ErrToolUnavailable)
	}

	name := input.FileName
	if name == "" {
		name = defaultUploadName
	}
	result, err := s.ports.Upload.Upload(ctx, input.Email, &domain.RawDocument{
		FileName: name,
		MIMEType: "text/plain",
		Content:  []byte(input.Content),
	}, domain.UploadOptions{Replace: input.Replace})
	if err != nil {
		return nil, UploadOutput{}, err
	}

	return nil, UploadOutput{
		UploadID:   result.UploadID,
		ChunkCount: result.ChunkCount,
		FileName:   result.FileName,
	}, nil
}

func (s *Server) handleCheckRegistration(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CheckRegistrationInput,
) (*mcp.CallToolResult, CheckRegistrationOutput, error) {
	if s.ports.Registration == nil {
		return nil, CheckRegistrationOutput{}, fmt.Errorf("%w: registration", ErrToolUnavailable)
	}

	member, err := s.ports.Registration.Check(ctx, input.Email)
	if err != nil {
		return nil, CheckRegistrationOutput{}, err
	}
	return nil, CheckRegistrationOutput{Exists: member.Exists, Name: member.Name}, nil
}

func toAnswerOutput(resp *domain.ChatResponse) AnswerOutput {
	return AnswerOutput{
		Answer:         resp.Answer,
		Mode:           resp.Mode.String(),
		Score:          resp.Score,
		ScoreSaved:     resp.ScoreSaved,
		Warnings:       resp.Warnings,
		GuidelineCount: resp.GuidelineCount,
		UserChunkCount: resp.UserChunkCount,
	}
}
