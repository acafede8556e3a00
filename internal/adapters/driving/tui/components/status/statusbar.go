// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/plancheck/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/plancheck/internal/adapters/driving/tui/styles"
)

// State represents the current application state for display.
type State string

const (
	StateReady     State = "ready"
	StateThinking  State = "thinking"
	StateUploading State = "uploading"
	StateError     State = "error"
)

// Bar displays the identity, query mode, state and keybinding hints.
type Bar struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	state    State
	message  string
	identity string
	mode     string
	width    int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		mode:   "auto",
		width:  80,
	}
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	// Two columns go to the bar's horizontal padding.
	padding := s.width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	who := s.styles.Normal.Render(fmt.Sprintf("%s [%s]", s.identity, s.mode))

	switch s.state {
	case StateThinking:
		return who + " " + s.styles.Muted.Render("Thinking...")
	case StateUploading:
		return who + " " + s.styles.Muted.Render("Uploading...")
	case StateError:
		if s.message != "" {
			return who + " " + s.styles.Error.Render("Error: "+s.message)
		}
		return who + " " + s.styles.Error.Render("Error")
	case StateReady:
		if s.message != "" {
			return who + " " + s.styles.Muted.Render(s.message)
		}
	}
	return who
}

func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.state == StateThinking {
		bindings = s.keymap.StreamingHelp()
	} else {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetIdentity sets the email shown on the left.
func (s *Bar) SetIdentity(identity string) {
	s.identity = identity
}

// SetMode sets the query mode shown next to the identity.
func (s *Bar) SetMode(mode string) {
	s.mode = mode
}

// Mode returns the displayed query mode.
func (s *Bar) Mode() string {
	return s.mode
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}
