// Package ratelimit paces calls to an embedding service with a token bucket.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
	"github.com/custodia-labs/plancheck/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default limits.
const (
	DefaultRequestsPerSecond = 5.0
	DefaultBurst             = 5
	DefaultBackoff           = 20 * time.Second
)

// Config holds rate limiting configuration.
type Config struct {
	// RequestsPerSecond is the sustained rate. Zero or negative means unlimited.
	RequestsPerSecond float64

	// Burst is the maximum burst size.
	Burst int

	// Backoff is how long calls pause after the provider reports a rate limit.
	Backoff time.Duration
}

// EmbeddingService wraps another EmbeddingService and waits for a token
// before each request. It never retries: a rate-limited call still fails,
// and later calls wait out the backoff.
type EmbeddingService struct {
	next    driven.EmbeddingService
	limiter *rate.Limiter
	backoff time.Duration

	mu      sync.Mutex
	retryAt time.Time
}

// New wraps next with a limiter built from cfg.
func New(next driven.EmbeddingService, cfg Config) *EmbeddingService {
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	if cfg.Backoff == 0 {
		cfg.Backoff = DefaultBackoff
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &EmbeddingService{
		next:    next,
		limiter: rate.NewLimiter(limit, cfg.Burst),
		backoff: cfg.Backoff,
	}
}

// Wait blocks until a request may be made.
func (s *EmbeddingService) Wait(ctx context.Context) error {
	s.mu.Lock()
	retryAt := s.retryAt
	s.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		logger.Debug("embedding rate limit backoff: waiting %s", d.Round(time.Millisecond))
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return s.limiter.Wait(ctx)
}

// Embed waits for a token and embeds text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.Wait(ctx); err != nil {
		return nil, err
	}
	vec, err := s.next.Embed(ctx, text)
	s.observe(err)
	return vec, err
}

// EmbedBatch waits for a single token and embeds all texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.Wait(ctx); err != nil {
		return nil, err
	}
	vecs, err := s.next.EmbedBatch(ctx, texts)
	s.observe(err)
	return vecs, err
}

func (s *EmbeddingService) observe(err error) {
	if !errors.Is(err, domain.ErrRateLimited) {
		return
	}
	s.mu.Lock()
	s.retryAt = time.Now().Add(s.backoff)
	s.mu.Unlock()
	logger.Warn("embedding provider rate limited, pausing for %s", s.backoff)
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int { return s.next.Dimensions() }

// ModelName returns the wrapped service's model.
func (s *EmbeddingService) ModelName() string { return s.next.ModelName() }

// Ping bypasses the limiter.
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.next.Ping(ctx) }

// Close closes the wrapped service.
func (s *EmbeddingService) Close() error { return s.next.Close() }
