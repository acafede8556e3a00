package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/plancheck/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/plancheck/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, "auto", bar.Mode())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestStatusBar_View(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		message  string
		contains []string
	}{
		{name: "ready", state: StateReady, contains: []string{"a@b.com [auto]", "enter: send"}},
		{name: "ready with message", state: StateReady, message: "12 rulebook sections", contains: []string{"12 rulebook sections"}},
		{name: "thinking", state: StateThinking, contains: []string{"Thinking...", "esc: cancel"}},
		{name: "uploading", state: StateUploading, contains: []string{"Uploading..."}},
		{name: "error", state: StateError, message: "llm down", contains: []string{"Error: llm down"}},
		{name: "error without message", state: StateError, contains: []string{"Error"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(120)
			bar.SetIdentity("a@b.com")
			bar.SetState(tt.state)
			bar.SetMessage(tt.message)

			view := bar.View()
			for _, s := range tt.contains {
				assert.Contains(t, view, s)
			}
		})
	}
}

func TestStatusBar_SetMode(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(120)
	bar.SetIdentity("a@b.com")
	bar.SetMode("evaluate")

	assert.Contains(t, bar.View(), "[evaluate]")
}

func TestStatusBar_NarrowWidth(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(10)

	assert.NotPanics(t, func() { _ = bar.View() })
}
