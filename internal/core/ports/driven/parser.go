package driven

import "github.com/custodia-labs/plancheck/internal/core/domain"

// SectionParser turns rulebook text into ordered section records.
// Emitted codes are unique and every record has at least one field.
type SectionParser interface {
	Parse(text string) ([]domain.SectionRecord, error)
}

// Chunker splits document text into bounded, line-aligned chunks.
type Chunker interface {
	// Name returns the chunker name for logging.
	Name() string

	// Split returns trimmed, non-empty chunk texts in document order.
	Split(text string) []string
}
