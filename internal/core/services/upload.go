package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
	"github.com/custodia-labs/plancheck/internal/core/ports/driving"
	"github.com/custodia-labs/plancheck/internal/logger"
)

// Ensure UploadService implements the interface.
var _ driving.UploadService = (*UploadService)(nil)

// UploadService ingests user documents into per-user collections.
type UploadService struct {
	normalisers driven.NormaliserRegistry
	chunker     driven.Chunker
	vectors     driven.VectorStore
	embedder    driven.EmbeddingService
	indexer     *Indexer
	history     driven.UploadStore
	now         func() time.Time
}

// NewUploadService creates an upload service.
func NewUploadService(
	normalisers driven.NormaliserRegistry,
	chunker driven.Chunker,
	vectors driven.VectorStore,
	embedder driven.EmbeddingService,
	indexer *Indexer,
) *UploadService {
	return &UploadService{
		normalisers: normalisers,
		chunker:     chunker,
		vectors:     vectors,
		embedder:    embedder,
		indexer:     indexer,
		now:         time.Now,
	}
}

// SetUploadStore enables upload history.
func (s *UploadService) SetUploadStore(store driven.UploadStore) {
	s.history = store
}

// Upload extracts, chunks, embeds and indexes a document for an identity.
func (s *UploadService) Upload(
	ctx context.Context, identity string, file *domain.RawDocument, opts domain.UploadOptions,
) (*domain.UploadResult, error) {
	logger.Section("Upload")

	collection := domain.UserCollectionName(identity)
	if collection == "" {
		return nil, fmt.Errorf("%w: identity (email) is required", domain.ErrInvalidInput)
	}
	if file == nil || len(file.Content) == 0 {
		return nil, fmt.Errorf("%w: file is empty", domain.ErrInvalidInput)
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
	text := strings.TrimSpace(normalised.Document.Content)
	if text == "" {
		return nil, fmt.Errorf("%w: no text could be extracted from %s", domain.ErrInvalidInput, file.FileName)
	}

	texts := s.chunker.Split(text)
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: %s produced no chunks", domain.ErrInvalidInput, file.FileName)
	}
	logger.Info("Split %s into %d chunks (%s)", file.FileName, len(texts), s.chunker.Name())

	uploadedAt := s.now().UTC()
	chunks := domain.NewChunks(file.FileName, texts, uploadedAt)
	embedded, err := s.indexer.Embed(ctx, ChunkItems(chunks))
	if err != nil {
		return nil, err
	}

	count, err := storeEmbedded(ctx, s.vectors, s.indexer, collection, embedded, opts.Replace)
	if err != nil {
		return nil, err
	}

	result := &domain.UploadResult{
		UploadID:       uuid.NewString(),
		CollectionName: collection,
		ChunkCount:     count,
		FileName:       file.FileName,
	}

	if s.history != nil {
		rec := &domain.UploadRecord{
			ID:             result.UploadID,
			Identity:       domain.NormalizeIdentity(identity),
			CollectionName: collection,
			FileName:       file.FileName,
			ChunkCount:     count,
			Replaced:       opts.Replace,
			CreatedAt:      uploadedAt,
		}
		if err := s.history.Record(ctx, rec); err != nil {
			logger.Warn("Recording upload history failed: %v", err)
		}
	}

	logger.Info("Indexed %d chunks into %s", count, collection)
	return result, nil
}

// History lists previous uploads of an identity, newest first.
func (s *UploadService) History(ctx context.Context, identity string) ([]domain.UploadRecord, error) {
	identity = domain.NormalizeIdentity(identity)
	if identity == "" {
		return nil, fmt.Errorf("%w: identity (email) is required", domain.ErrInvalidInput)
	}
	if s.history == nil {
		return []domain.UploadRecord{}, nil
	}
	return s.history.List(ctx, identity)
}

// storeEmbedded sizes collection from the embedded vectors and writes them.
// With replace the existing collection is dropped first. Callers embed before
// calling it so a failed embedding leaves the previous content in place.
func storeEmbedded(
	ctx context.Context, vectors driven.VectorStore, indexer *Indexer,
	collection string, embedded *Embedded, replace bool,
) (int, error) {
	size := embedded.VectorSize()
	if size == 0 {
		return 0, fmt.Errorf("%w: nothing to index into %s", domain.ErrInvalidInput, collection)
	}

	if replace {
		logger.Info("Replacing collection %s", collection)
		if err := vectors.DeleteCollection(ctx, collection); err != nil {
			return 0, fmt.Errorf("drop collection %s: %w", collection, err)
		}
	}
	if err := indexer.EnsureCollection(ctx, collection, size, domain.DistanceCosine); err != nil {
		return 0, err
	}
	return indexer.Write(ctx, collection, embedded)
}
