package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
	"github.com/custodia-labs/plancheck/internal/logger"
)

// IndexError reports the chunk at which indexing aborted.
type IndexError struct {
	ChunkIndex int
	Err        error
}

// Error implements the error interface.
func (e *IndexError) Error() string {
	return fmt.Sprintf("index chunk %d: %v", e.ChunkIndex, e.Err)
}

// Unwrap returns the underlying error.
func (e *IndexError) Unwrap() error {
	return e.Err
}

// IndexItem is one text to embed and store as a point.
type IndexItem struct {
	ID      uint64
	Text    string
	Payload map[string]any
}

// IndexerConfig tunes embedding concurrency and upsert batching.
type IndexerConfig struct {
	BatchSize int
	Workers   int
}

// Indexer embeds texts and writes them into vector collections.
type Indexer struct {
	vectors   driven.VectorStore
	embedder  driven.EmbeddingService
	batchSize int
	workers   int
}

// NewIndexer creates an indexer. Zero config values take the defaults.
func NewIndexer(vectors driven.VectorStore, embedder driven.EmbeddingService, cfg IndexerConfig) *Indexer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = domain.DefaultBatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = domain.DefaultWorkers
	}
	return &Indexer{
		vectors:   vectors,
		embedder:  embedder,
		batchSize: cfg.BatchSize,
		workers:   cfg.Workers,
	}
}

// EnsureCollection creates the collection if it does not exist.
// An existing collection with a different vector size yields domain.ErrConflict.
func (i *Indexer) EnsureCollection(ctx context.Context, name string, size int, metric domain.DistanceMetric) error {
	info, err := i.vectors.GetCollection(ctx, name)
	if err == nil {
		return checkSize(info, size)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get collection %s: %w", name, err)
	}

	logger.Debug("Creating collection %s (size=%d, distance=%s)", name, size, metric)
	err = i.vectors.CreateCollection(ctx, name, size, metric)
	if errors.Is(err, domain.ErrAlreadyExists) {
		// Created concurrently; make sure it is compatible.
		info, getErr := i.vectors.GetCollection(ctx, name)
		if getErr != nil {
			return fmt.Errorf("get collection %s: %w", name, getErr)
		}
		return checkSize(info, size)
	}
	if err != nil {
		return fmt.Errorf("create collection %s: %w", name, err)
	}
	return nil
}

func checkSize(info *domain.CollectionInfo, size int) error {
	if info.VectorSize != 0 && info.VectorSize != size {
		return fmt.Errorf("%w: collection %s has vector size %d, embedding model produces %d",
			domain.ErrConflict, info.Name, info.VectorSize, size)
	}
	return nil
}

// ChunkItems converts user chunks to index items. The point id is the chunk index.
func ChunkItems(chunks []domain.Chunk) []IndexItem {
	items := make([]IndexItem, 0, len(chunks))
	for _, c := range chunks {
		items = append(items, IndexItem{ID: uint64(c.ChunkIndex), Text: c.Text, Payload: c.Payload()})
	}
	return items
}

// SectionItems converts rulebook sections to index items. The point id is the
// section's position in the rulebook.
func SectionItems(sections []domain.SectionRecord) []IndexItem {
	items := make([]IndexItem, len(sections))
	for idx, s := range sections {
		items[idx] = IndexItem{ID: uint64(idx), Text: s.EmbeddingText(), Payload: s.Payload()}
	}
	return items
}

// UpsertChunks embeds and stores user chunks.
func (i *Indexer) UpsertChunks(ctx context.Context, collection string, chunks []domain.Chunk) (int, error) {
	return i.Upsert(ctx, collection, ChunkItems(chunks))
}

// UpsertSections embeds and stores rulebook sections.
func (i *Indexer) UpsertSections(ctx context.Context, collection string, sections []domain.SectionRecord) (int, error) {
	return i.Upsert(ctx, collection, SectionItems(sections))
}

// Embedded holds items whose vectors are computed but not yet stored.
type Embedded struct {
	items   []IndexItem
	vectors [][]float32
}

// Len returns the number of embedded items.
func (e *Embedded) Len() int { return len(e.items) }

// VectorSize returns the dimension of the computed vectors, 0 when empty.
func (e *Embedded) VectorSize() int {
	if len(e.vectors) == 0 {
		return 0
	}
	return len(e.vectors[0])
}

// Upsert embeds items and writes them to collection.
// Returns the number of points written.
func (i *Indexer) Upsert(ctx context.Context, collection string, items []IndexItem) (int, error) {
	embedded, err := i.Embed(ctx, items)
	if err != nil {
		return 0, err
	}
	return i.Write(ctx, collection, embedded)
}

// Embed computes vectors for items through a bounded worker pool without
// touching the vector store. Items with empty text are skipped.
func (i *Indexer) Embed(ctx context.Context, items []IndexItem) (*Embedded, error) {
	kept := make([]IndexItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Text) == "" {
			logger.Warn("Skipping empty chunk %d", item.ID)
			continue
		}
		kept = append(kept, item)
	}
	if len(kept) == 0 {
		return &Embedded{}, nil
	}

	vectors, err := i.embedAll(ctx, kept)
	if err != nil {
		return nil, err
	}
	return &Embedded{items: kept, vectors: vectors}, nil
}

// Write stores embedded points in order, batch by batch, waiting for each
// batch to persist. Returns the number of points written.
func (i *Indexer) Write(ctx context.Context, collection string, embedded *Embedded) (int, error) {
	kept := embedded.items
	written := 0
	for start := 0; start < len(kept); start += i.batchSize {
		end := min(start+i.batchSize, len(kept))
		points := make([]driven.Point, 0, end-start)
		for j := start; j < end; j++ {
			points = append(points, driven.Point{ID: kept[j].ID, Vector: embedded.vectors[j], Payload: kept[j].Payload})
		}
		if err := i.vectors.Upsert(ctx, collection, points, true); err != nil {
			return written, &IndexError{ChunkIndex: int(kept[start].ID), Err: err}
		}
		written += len(points)
		logger.Debug("Upserted %d/%d points into %s", written, len(kept), collection)
	}
	return written, nil
}

// embedAll embeds every item. The first failure cancels outstanding work and
// is reported with the lowest failing index.
func (i *Indexer) embedAll(ctx context.Context, items []IndexItem) ([][]float32, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	vectors := make([][]float32, len(items))
	jobs := make(chan int)

	var (
		mu       sync.Mutex
		firstErr *IndexError
		wg       sync.WaitGroup
	)

	workers := min(i.workers, len(items))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				vec, err := i.embedder.Embed(ctx, items[idx].Text)
				if err != nil {
					mu.Lock()
					cascade := firstErr != nil && (errors.Is(err, context.Canceled) || ctx.Err() != nil)
					if !cascade && (firstErr == nil || int(items[idx].ID) < firstErr.ChunkIndex) {
						firstErr = &IndexError{ChunkIndex: int(items[idx].ID), Err: err}
					}
					mu.Unlock()
					cancel()
					continue
				}
				vectors[idx] = vec
			}
		}()
	}

feed:
	for idx := range items {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return vectors, nil
}
