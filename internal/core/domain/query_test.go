package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQueryMode(t *testing.T) {
	tests := []struct {
		input    string
		expected QueryMode
		wantErr  bool
	}{
		{"", QueryModeAuto, false},
		{"auto", QueryModeAuto, false},
		{"Answer", QueryModeAnswer, false},
		{" evaluate ", QueryModeEvaluate, false},
		{"summarise", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := ParseQueryMode(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mode)
		})
	}
}

func TestQueryMode_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		mode     QueryMode
		query    string
		expected QueryMode
	}{
		{"auto question", QueryModeAuto, "A.1.1 nedir?", QueryModeAnswer},
		{"auto upper-case trigger", QueryModeAuto, "Planımı DEĞERLENDİR lütfen", QueryModeEvaluate},
		{"auto lower trigger", QueryModeAuto, "planımı değerlendir", QueryModeEvaluate},
		{"auto eksik", QueryModeAuto, "Eksik yönlerim neler?", QueryModeEvaluate},
		{"auto iş planını", QueryModeAuto, "iş planını incele", QueryModeEvaluate},
		{"zero value behaves as auto", QueryMode(""), "eksik neler", QueryModeEvaluate},
		{"explicit answer wins", QueryModeAnswer, "değerlendir", QueryModeAnswer},
		{"explicit evaluate wins", QueryModeEvaluate, "merhaba", QueryModeEvaluate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.mode.Resolve(tt.query))
		})
	}
}

func TestLastUserMessage(t *testing.T) {
	msgs := []Message{
		{Role: RoleUser, Content: "first"},
		{Role: RoleAssistant, Content: "reply"},
		{Role: RoleUser, Content: "second"},
		{Role: RoleAssistant, Content: "reply 2"},
	}
	assert.Equal(t, "second", LastUserMessage(msgs))
	assert.Equal(t, "", LastUserMessage(nil))
}

func TestChatResponse_PartialFailure(t *testing.T) {
	assert.False(t, (&ChatResponse{}).PartialFailure())
	assert.True(t, (&ChatResponse{Warnings: []string{"guideline search failed"}}).PartialFailure())
}
