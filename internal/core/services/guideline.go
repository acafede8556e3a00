package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
	"github.com/custodia-labs/plancheck/internal/core/ports/driving"
	"github.com/custodia-labs/plancheck/internal/logger"
)

// Ensure GuidelineService implements the interface.
var _ driving.GuidelineService = (*GuidelineService)(nil)

// GuidelineService parses the rulebook and maintains its collection.
type GuidelineService struct {
	normalisers driven.NormaliserRegistry
	parser      driven.SectionParser
	vectors     driven.VectorStore
	embedder    driven.EmbeddingService
	indexer     *Indexer
	collection  string
}

// NewGuidelineService creates a guideline service for the named collection.
func NewGuidelineService(
	normalisers driven.NormaliserRegistry,
	parser driven.SectionParser,
	vectors driven.VectorStore,
	embedder driven.EmbeddingService,
	indexer *Indexer,
	collection string,
) *GuidelineService {
	if collection == "" {
		collection = domain.DefaultGuidelineCollection
	}
	return &GuidelineService{
		normalisers: normalisers,
		parser:      parser,
		vectors:     vectors,
		embedder:    embedder,
		indexer:     indexer,
		collection:  collection,
	}
}

// Index parses the rulebook and indexes one point per section.
func (s *GuidelineService) Index(
	ctx context.Context, file *domain.RawDocument, opts domain.GuidelineIndexOptions,
) (*domain.GuidelineIndexResult, error) {
	logger.Section("Guideline Index")

	if file == nil || len(file.Content) == 0 {
		return nil, fmt.Errorf("%w: rulebook file is empty", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.vectors == nil || s.indexer == nil {
		return nil, domain.ErrVectorStoreUnavailable
	}

	normalised, err := s.normalisers.Normalise(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("extract text from %s: %w", file.FileName, err)
	}

	sections, err := s.parser.Parse(normalised.Document.Content)
	if err != nil {
		return nil, fmt.Errorf("parse rulebook: %w", err)
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: no sections found in %s", domain.ErrInvalidInput, file.FileName)
	}
	logger.Info("Parsed %d sections from %s", len(sections), file.FileName)

	embedded, err := s.indexer.Embed(ctx, SectionItems(sections))
	if err != nil {
		return nil, err
	}

	count, err := storeEmbedded(ctx, s.vectors, s.indexer, s.collection, embedded, opts.Recreate)
	if err != nil {
		return nil, err
	}

	codes := make([]string, len(sections))
	for i, sec := range sections {
		codes[i] = sec.SectionCode
	}
	return &domain.GuidelineIndexResult{
		CollectionName: s.collection,
		SectionCount:   count,
		Codes:          codes,
	}, nil
}

// Status reports whether the rulebook collection exists and its size.
func (s *GuidelineService) Status(ctx context.Context) (*domain.GuidelineStatus, error) {
	if s.vectors == nil {
		return nil, domain.ErrVectorStoreUnavailable
	}

	status := &domain.GuidelineStatus{CollectionName: s.collection}
	info, err := s.vectors.GetCollection(ctx, s.collection)
	if errors.Is(err, domain.ErrNotFound) {
		return status, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get collection %s: %w", s.collection, err)
	}

	status.Exists = true
	status.PointsCount = info.PointsCount
	status.VectorSize = info.VectorSize
	return status, nil
}
