package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
)

// Ensure UploadStore implements the interface.
var _ driven.UploadStore = (*UploadStore)(nil)

// UploadStore is an in-memory driven.UploadStore.
type UploadStore struct {
	mu      sync.RWMutex
	uploads map[string]domain.UploadRecord
}

// NewUploadStore creates a new in-memory upload store.
func NewUploadStore() *UploadStore {
	return &UploadStore{
		uploads: make(map[string]domain.UploadRecord),
	}
}

// Record stores an upload.
func (s *UploadStore) Record(_ context.Context, upload *domain.UploadRecord) error {
	if upload == nil || upload.ID == "" {
		return domain.ErrInvalidInput
	}
	if upload.CreatedAt.IsZero() {
		upload.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.uploads[upload.ID]; exists {
		return fmt.Errorf("%w: upload %s", domain.ErrAlreadyExists, upload.ID)
	}
	rec := *upload
	rec.Identity = domain.NormalizeIdentity(rec.Identity)
	s.uploads[rec.ID] = rec
	return nil
}

// List returns uploads for an identity, newest first.
func (s *UploadStore) List(_ context.Context, identity string) ([]domain.UploadRecord, error) {
	identity = domain.NormalizeIdentity(identity)

	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.UploadRecord
	for _, rec := range s.uploads {
		if rec.Identity == identity {
			result = append(result, rec)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}
