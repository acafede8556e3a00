package tui

import "errors"

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("tui: chat service is required")

// ErrMissingIdentity is returned when no email address is given.
var ErrMissingIdentity = errors.New("tui: an email address is required")
