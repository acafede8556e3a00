package driven

import (
	"context"

	"github.com/custodia-labs/plancheck/internal/core/domain"
)

// UploadStore records upload history.
type UploadStore interface {
	// Record stores an upload.
	Record(ctx context.Context, upload *domain.UploadRecord) error

	// List returns uploads for an identity, newest first.
	List(ctx context.Context, identity string) ([]domain.UploadRecord, error)
}
