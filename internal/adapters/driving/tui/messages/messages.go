// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/plancheck/internal/core/domain"
)

// TokenReceived carries one streamed piece of the answer of a turn.
type TokenReceived struct {
	Turn  int
	Token string
}

// ChatCompleted signals the end of a chat turn.
type ChatCompleted struct {
	Turn     int
	Response *domain.ChatResponse
	Err      error
}

// UploadCompleted carries the result of an /upload command.
type UploadCompleted struct {
	Result *domain.UploadResult
	Err    error
}

// GuidelineStatusLoaded carries the rulebook status loaded at startup.
type GuidelineStatusLoaded struct {
	Status *domain.GuidelineStatus
	Err    error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the conversation view.
	ViewChat ViewType = iota
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
