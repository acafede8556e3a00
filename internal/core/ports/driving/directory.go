package driving

import (
	"context"

	"github.com/custodia-labs/plancheck/internal/core/domain"
)

// RegistrationService registers users in the identity directory.
type RegistrationService interface {
	// Register adds a user. Returns domain.ErrAlreadyExists for a known email.
	Register(ctx context.Context, reg domain.Registration) error

	// Check looks up a user by email.
	Check(ctx context.Context, email string) (*domain.Member, error)
}

// ScoreService persists section scores in the identity directory.
type ScoreService interface {
	// Save writes a section score to the user's row, creating the row if needed.
	Save(ctx context.Context, entry domain.ScoreEntry) error
}
