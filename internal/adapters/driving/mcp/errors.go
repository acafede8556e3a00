// Package mcp provides an MCP (Model Context Protocol) server adapter for plancheck.
// It lets AI assistants ask rulebook questions and evaluate uploaded business plans.
package mcp

import "errors"

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("mcp: chat service is required")

// ErrToolUnavailable is returned by tools whose backing service is not configured.
var ErrToolUnavailable = errors.New("mcp: tool unavailable")
