package driven

import (
	"context"

	"github.com/custodia-labs/plancheck/internal/core/domain"
)

// Normaliser extracts plain text from raw uploaded files.
// Each normaliser handles specific MIME types (e.g., PDF, DOCX).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// SupportedExtensions returns file extensions (with dot, lower case)
	// used when the MIME type is missing.
	SupportedExtensions() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise extracts the text of a raw document.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Chunking is done afterwards by the Chunker.
type NormaliseResult struct {
	// Document is the normalised document with Content field populated.
	Document domain.Document
}
