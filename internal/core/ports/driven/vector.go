package driven

import (
	"context"

	"github.com/custodia-labs/plancheck/internal/core/domain"
)

// VectorStore manages named collections of vectors with JSON payloads.
// Backed by Qdrant in production.
type VectorStore interface {
	// CreateCollection creates a collection with the given vector size and metric.
	// Returns domain.ErrAlreadyExists if it exists.
	CreateCollection(ctx context.Context, name string, vectorSize int, distance domain.DistanceMetric) error

	// GetCollection returns collection details.
	// Returns domain.ErrNotFound if the collection does not exist.
	GetCollection(ctx context.Context, name string) (*domain.CollectionInfo, error)

	// DeleteCollection drops a collection. Missing collections are not an error.
	DeleteCollection(ctx context.Context, name string) error

	// Upsert inserts or overwrites points by id. When wait is true the call
	// returns after the points are persisted.
	Upsert(ctx context.Context, collection string, points []Point, wait bool) error

	// Search returns at most limit points ordered by descending score.
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]ScoredPoint, error)

	// Scroll pages through every point in id order. A nil offset starts at the
	// beginning. The returned NextOffset is nil on the last page.
	Scroll(ctx context.Context, collection string, limit int, offset *uint64) (*ScrollPage, error)

	// Close releases resources.
	Close() error
}

// Point is a vector with its id and payload.
type Point struct {
	ID      uint64
	Vector  []float32
	Payload map[string]any
}

// ScoredPoint is a similarity search result.
type ScoredPoint struct {
	ID      uint64
	Score   float64
	Payload map[string]any
}

// ScrollPage is one page of a scroll.
type ScrollPage struct {
	Points     []Point
	NextOffset *uint64
}
