package driving

import (
	"context"

	"github.com/custodia-labs/plancheck/internal/core/domain"
)

// GuidelineService builds and inspects the rulebook collection.
type GuidelineService interface {
	// Index parses the rulebook and indexes one point per section.
	Index(ctx context.Context, file *domain.RawDocument, opts domain.GuidelineIndexOptions) (*domain.GuidelineIndexResult, error)

	// Status reports whether the rulebook collection exists and its size.
	Status(ctx context.Context) (*domain.GuidelineStatus, error)
}
