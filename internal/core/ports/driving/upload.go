package driving

import (
	"context"

	"github.com/custodia-labs/plancheck/internal/core/domain"
)

// UploadService ingests user documents into per-user collections.
type UploadService interface {
	// Upload extracts, chunks, embeds and indexes a document for an identity.
	Upload(ctx context.Context, identity string, file *domain.RawDocument, opts domain.UploadOptions) (*domain.UploadResult, error)

	// History lists previous uploads of an identity, newest first.
	History(ctx context.Context, identity string) ([]domain.UploadRecord, error)
}
