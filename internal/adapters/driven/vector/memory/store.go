// Package memory provides an in-process VectorStore using brute-force
// similarity search.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

type collection struct {
	size     int
	distance domain.DistanceMetric
	points   map[uint64]driven.Point
}

// Store keeps named collections in memory. It is safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// NewStore creates an empty in-memory vector store.
func NewStore() *Store {
	return &Store{collections: make(map[string]*collection)}
}

// CreateCollection creates a collection.
func (s *Store) CreateCollection(_ context.Context, name string, vectorSize int, distance domain.DistanceMetric) error {
	if name == "" || vectorSize <= 0 {
		return fmt.Errorf("%w: collection name and positive vector size required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[name]; ok {
		return fmt.Errorf("collection %s: %w", name, domain.ErrAlreadyExists)
	}
	s.collections[name] = &collection{
		size:     vectorSize,
		distance: distance,
		points:   make(map[uint64]driven.Point),
	}
	return nil
}

// GetCollection returns collection details.
func (s *Store) GetCollection(_ context.Context, name string) (*domain.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	return &domain.CollectionInfo{
		Name:        name,
		VectorSize:  c.size,
		Distance:    c.distance,
		PointsCount: len(c.points),
	}, nil
}

// DeleteCollection drops a collection.
func (s *Store) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

// Upsert inserts or overwrites points. The wait flag has no effect.
func (s *Store) Upsert(_ context.Context, name string, points []driven.Point, _ bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	for _, p := range points {
		if len(p.Vector) != c.size {
			return fmt.Errorf("%w: point %d has %d dimensions, collection expects %d",
				domain.ErrInvalidInput, p.ID, len(p.Vector), c.size)
		}
	}
	for _, p := range points {
		c.points[p.ID] = driven.Point{
			ID:      p.ID,
			Vector:  append([]float32(nil), p.Vector...),
			Payload: copyPayload(p.Payload),
		}
	}
	return nil
}

// Search returns the limit most similar points, highest score first.
func (s *Store) Search(_ context.Context, name string, vector []float32, limit int) ([]driven.ScoredPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	if limit <= 0 {
		return nil, nil
	}

	results := make([]driven.ScoredPoint, 0, len(c.points))
	for _, p := range c.points {
		results = append(results, driven.ScoredPoint{
			ID:      p.ID,
			Score:   score(c.distance, vector, p.Vector),
			Payload: copyPayload(p.Payload),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Scroll pages through points in ascending id order.
func (s *Store) Scroll(_ context.Context, name string, limit int, offset *uint64) (*driven.ScrollPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: scroll limit must be positive", domain.ErrInvalidInput)
	}

	ids := make([]uint64, 0, len(c.points))
	for id := range c.points {
		if offset == nil || id >= *offset {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	page := &driven.ScrollPage{}
	for i, id := range ids {
		if i == limit {
			next := id
			page.NextOffset = &next
			break
		}
		p := c.points[id]
		page.Points = append(page.Points, driven.Point{ID: id, Payload: copyPayload(p.Payload)})
	}
	return page, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

func score(distance domain.DistanceMetric, a, b []float32) float64 {
	switch distance {
	case domain.DistanceDot:
		return dot(a, b)
	case domain.DistanceEuclid:
		return -euclid(a, b)
	default:
		na, nb := math.Sqrt(dot(a, a)), math.Sqrt(dot(b, b))
		if na == 0 || nb == 0 {
			return 0
		}
		return dot(a, b) / (na * nb)
	}
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func euclid(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

func copyPayload(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
