// Package tui provides an interactive terminal chat for plancheck.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/plancheck/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat answers questions and evaluates sections.
	Chat driving.ChatService

	// Upload ingests plans from the /upload command. Optional.
	Upload driving.UploadService

	// Guideline reports rulebook status at startup. Optional.
	Guideline driving.GuidelineService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	return nil
}
