package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
	"github.com/custodia-labs/plancheck/internal/logger"
)

// RetrievalConfig tunes query-time retrieval. Zero values take the defaults.
type RetrievalConfig struct {
	GuidelineCollection string
	GuidelineTopK       int
	UserTopK            int
	ScrollPageSize      int
}

// Retriever fetches rulebook sections and user chunks for a query.
type Retriever struct {
	vectors  driven.VectorStore
	embedder driven.EmbeddingService
	cfg      RetrievalConfig
}

// NewRetriever creates a retriever.
func NewRetriever(vectors driven.VectorStore, embedder driven.EmbeddingService, cfg RetrievalConfig) *Retriever {
	if cfg.GuidelineCollection == "" {
		cfg.GuidelineCollection = domain.DefaultGuidelineCollection
	}
	if cfg.GuidelineTopK <= 0 {
		cfg.GuidelineTopK = domain.DefaultGuidelineTopK
	}
	if cfg.UserTopK <= 0 {
		cfg.UserTopK = domain.DefaultUserTopK
	}
	if cfg.ScrollPageSize <= 0 {
		cfg.ScrollPageSize = domain.DefaultScrollPageSize
	}
	return &Retriever{vectors: vectors, embedder: embedder, cfg: cfg}
}

// GuidelineCollection returns the rulebook collection name.
func (r *Retriever) GuidelineCollection() string {
	return r.cfg.GuidelineCollection
}

// Retrieve embeds the query and gathers guideline and user context
// concurrently. Guideline failures and user-side upstream failures degrade
// into warnings; a missing user collection means no user content.
func (r *Retriever) Retrieve(ctx context.Context, identity, query string, mode domain.QueryMode) (*domain.QueryContext, error) {
	logger.Section("Retrieval")
	logger.Debug("Mode: %s, identity set: %t", mode, identity != "")

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	qc := &domain.QueryContext{Mode: mode, Policy: domain.RetrievalSimilarity}
	if mode == domain.QueryModeEvaluate {
		qc.Policy = domain.RetrievalExhaustive
	}

	var guidelineErr, userErr error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		qc.Guideline, guidelineErr = r.SearchGuideline(ctx, vector)
	}()

	go func() {
		defer wg.Done()
		collection := domain.UserCollectionName(identity)
		if collection == "" {
			return
		}
		if mode == domain.QueryModeEvaluate {
			var chunks []domain.Chunk
			chunks, userErr = r.FetchAll(ctx, collection)
			for _, c := range chunks {
				qc.User = append(qc.User, domain.UserMatch{Chunk: c})
			}
			return
		}
		qc.User, userErr = r.SearchUser(ctx, collection, vector)
	}()

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if guidelineErr != nil {
		qc.Guideline = nil
		if errors.Is(guidelineErr, domain.ErrNotFound) {
			qc.Warnings = append(qc.Warnings, "rulebook collection not found; run 'plancheck guideline index'")
		} else {
			qc.Warnings = append(qc.Warnings, "rulebook search failed: "+guidelineErr.Error())
		}
		logger.Warn("Continuing without guideline context: %v", guidelineErr)
	}
	if userErr != nil {
		qc.User = nil
		qc.Warnings = append(qc.Warnings, "user document retrieval failed: "+userErr.Error())
		logger.Warn("Continuing without user context: %v", userErr)
	}

	qc.HasUserFile = len(qc.User) > 0
	logger.Debug("Retrieved %d guideline sections, %d user chunks (%s)", len(qc.Guideline), len(qc.User), qc.Policy)
	return qc, nil
}

// SearchGuideline returns the top-k rulebook sections for a query vector.
func (r *Retriever) SearchGuideline(ctx context.Context, vector []float32) ([]domain.GuidelineMatch, error) {
	hits, err := r.search(ctx, r.cfg.GuidelineCollection, vector, r.cfg.GuidelineTopK)
	if err != nil {
		return nil, err
	}
	matches := make([]domain.GuidelineMatch, len(hits))
	for i, hit := range hits {
		matches[i] = domain.GuidelineMatch{Section: domain.SectionFromPayload(hit.Payload), Score: hit.Score}
	}
	return matches, nil
}

// SearchUser returns the top-k chunks of a user collection.
// A missing collection yields no matches.
func (r *Retriever) SearchUser(ctx context.Context, collection string, vector []float32) ([]domain.UserMatch, error) {
	hits, err := r.search(ctx, collection, vector, r.cfg.UserTopK)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Debug("User collection %s not found", collection)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	matches := make([]domain.UserMatch, 0, len(hits))
	for _, hit := range hits {
		chunk := domain.ChunkFromPayload(hit.Payload)
		if strings.TrimSpace(chunk.Text) == "" {
			continue
		}
		matches = append(matches, domain.UserMatch{Chunk: chunk, Score: hit.Score})
	}
	return matches, nil
}

// search returns at most k hits in descending score order.
func (r *Retriever) search(ctx context.Context, collection string, vector []float32, k int) ([]driven.ScoredPoint, error) {
	hits, err := r.vectors.Search(ctx, collection, vector, k)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// FetchAll pages through every point of a collection and returns the
// non-empty chunks sorted by chunk index. A missing collection yields nil.
func (r *Retriever) FetchAll(ctx context.Context, collection string) ([]domain.Chunk, error) {
	info, err := r.vectors.GetCollection(ctx, collection)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Debug("User collection %s not found", collection)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get collection %s: %w", collection, err)
	}
	if info.PointsCount == 0 {
		return nil, nil
	}

	points := make([]driven.Point, 0, info.PointsCount)
	var offset *uint64
	for {
		page, err := r.vectors.Scroll(ctx, collection, r.cfg.ScrollPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("scroll %s: %w", collection, err)
		}
		if len(page.Points) == 0 {
			break
		}
		points = append(points, page.Points...)
		if page.NextOffset == nil || len(points) >= info.PointsCount {
			break
		}
		offset = page.NextOffset
	}
	logger.Debug("Fetched %d/%d points from %s", len(points), info.PointsCount, collection)

	chunks := make([]domain.Chunk, 0, len(points))
	for _, p := range points {
		chunk := domain.ChunkFromPayload(p.Payload)
		if strings.TrimSpace(chunk.Text) == "" {
			continue
		}
		chunks = append(chunks, chunk)
	}
	sort.SliceStable(chunks, func(i, j int) bool { return chunks[i].ChunkIndex < chunks[j].ChunkIndex })
	return chunks, nil
}
