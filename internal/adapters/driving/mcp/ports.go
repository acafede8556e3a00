package mcp

import (
	"github.com/custodia-labs/plancheck/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat answers questions and evaluates plans.
	Chat driving.ChatService

	// Upload ingests plan text. Optional.
	Upload driving.UploadService

	// Registration checks directory membership. Optional.
	Registration driving.RegistrationService

	// Guideline reports rulebook status. Optional.
	Guideline driving.GuidelineService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	return nil
}
