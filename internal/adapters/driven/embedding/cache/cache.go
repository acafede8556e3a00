// Package cache memoises embeddings so repeated queries skip the provider.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default expiry settings.
const (
	DefaultTTL             = time.Hour
	DefaultCleanupInterval = 10 * time.Minute
)

// EmbeddingService caches vectors by model and text.
type EmbeddingService struct {
	next  driven.EmbeddingService
	cache *gocache.Cache
}

// New wraps next. A zero ttl uses DefaultTTL.
func New(next driven.EmbeddingService, ttl time.Duration) *EmbeddingService {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &EmbeddingService{
		next:  next,
		cache: gocache.New(ttl, DefaultCleanupInterval),
	}
}

func (s *EmbeddingService) key(text string) string {
	sum := sha256.Sum256([]byte(s.next.ModelName() + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

func (s *EmbeddingService) get(text string) ([]float32, bool) {
	if v, ok := s.cache.Get(s.key(text)); ok {
		return v.([]float32), true
	}
	return nil, false
}

// Embed returns a cached vector or asks the wrapped service.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := s.get(text); ok {
		return vec, nil
	}
	vec, err := s.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	s.cache.Set(s.key(text), vec, gocache.DefaultExpiration)
	return vec, nil
}

// EmbedBatch sends only uncached texts to the wrapped service.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int

	for i, t := range texts {
		if vec, ok := s.get(t); ok {
			out[i] = vec
			continue
		}
		missing = append(missing, t)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) > 0 {
		vecs, err := s.next.EmbedBatch(ctx, missing)
		if err != nil {
			return nil, err
		}
		for j, vec := range vecs {
			out[missingIdx[j]] = vec
			s.cache.Set(s.key(missing[j]), vec, gocache.DefaultExpiration)
		}
	}
	return out, nil
}

// Len returns the number of cached vectors.
func (s *EmbeddingService) Len() int { return s.cache.ItemCount() }

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int { return s.next.Dimensions() }

// ModelName returns the wrapped service's model.
func (s *EmbeddingService) ModelName() string { return s.next.ModelName() }

// Ping checks the wrapped service.
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.next.Ping(ctx) }

// Close flushes the cache and closes the wrapped service.
func (s *EmbeddingService) Close() error {
	s.cache.Flush()
	return s.next.Close()
}
