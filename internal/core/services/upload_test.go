package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storagememory "github.com/custodia-labs/plancheck/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/normalisers"
	"github.com/custodia-labs/plancheck/internal/normalisers/plaintext"
)

// paragraphChunker splits on blank lines.
type paragraphChunker struct{}

func (paragraphChunker) Name() string { return "paragraph" }

func (paragraphChunker) Split(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type uploadFixture struct {
	service  *UploadService
	vectors  *faultyVectors
	embedder *mockEmbedder
	history  *storagememory.UploadStore
}

func newUploadFixture(dims int) *uploadFixture {
	vectors := newFaultyVectors()
	embedder := newMockEmbedder(dims)
	history := storagememory.NewUploadStore()
	svc := NewUploadService(
		normalisers.NewRegistry(plaintext.New()),
		paragraphChunker{},
		vectors,
		embedder,
		NewIndexer(vectors, embedder, IndexerConfig{BatchSize: 2}),
	)
	svc.SetUploadStore(history)
	svc.now = func() time.Time { return fixedNow }
	return &uploadFixture{service: svc, vectors: vectors, embedder: embedder, history: history}
}

func textFile(name, content string) *domain.RawDocument {
	return &domain.RawDocument{FileName: name, MIMEType: "text/plain", Content: []byte(content)}
}

func TestUploadService_Upload(t *testing.T) {
	f := newUploadFixture(4)
	ctx := context.Background()

	result, err := f.service.Upload(ctx, testIdentity, textFile("plan.txt", "Birinci\n\nİkinci\n\nÜçüncü"), domain.UploadOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.UserCollectionName(testIdentity), result.CollectionName)
	assert.Equal(t, 3, result.ChunkCount)
	assert.Equal(t, "plan.txt", result.FileName)
	assert.NotEmpty(t, result.UploadID)

	info, err := f.vectors.GetCollection(ctx, result.CollectionName)
	require.NoError(t, err)
	assert.Equal(t, 3, info.PointsCount)
	assert.Equal(t, 4, info.VectorSize)

	records, err := f.service.History(ctx, testIdentity)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, result.UploadID, records[0].ID)
	assert.Equal(t, "ayse@example.com", records[0].Identity)
	assert.Equal(t, fixedNow, records[0].CreatedAt)
	assert.False(t, records[0].Replaced)
}

func TestUploadService_Upload_AppendsWithoutReplace(t *testing.T) {
	f := newUploadFixture(4)
	ctx := context.Background()

	_, err := f.service.Upload(ctx, testIdentity, textFile("a.txt", "x\n\ny\n\nz"), domain.UploadOptions{})
	require.NoError(t, err)
	_, err = f.service.Upload(ctx, testIdentity, textFile("b.txt", "tek"), domain.UploadOptions{})
	require.NoError(t, err)

	info, err := f.vectors.GetCollection(ctx, domain.UserCollectionName(testIdentity))
	require.NoError(t, err)
	assert.Equal(t, 3, info.PointsCount, "chunk ids restart at zero and overwrite")
}

func TestUploadService_Upload_Replace(t *testing.T) {
	f := newUploadFixture(4)
	ctx := context.Background()

	_, err := f.service.Upload(ctx, testIdentity, textFile("a.txt", "x\n\ny\n\nz"), domain.UploadOptions{})
	require.NoError(t, err)
	_, err = f.service.Upload(ctx, testIdentity, textFile("b.txt", "tek"), domain.UploadOptions{Replace: true})
	require.NoError(t, err)

	info, err := f.vectors.GetCollection(ctx, domain.UserCollectionName(testIdentity))
	require.NoError(t, err)
	assert.Equal(t, 1, info.PointsCount)

	records, err := f.service.History(ctx, testIdentity)
	require.NoError(t, err)
	require.Len(t, records, 2)
	replaced := 0
	for _, r := range records {
		if r.Replaced {
			replaced++
			assert.Equal(t, "b.txt", r.FileName)
		}
	}
	assert.Equal(t, 1, replaced)
}

func TestUploadService_Upload_ReplaceKeepsContentOnEmbeddingFailure(t *testing.T) {
	f := newUploadFixture(4)
	ctx := context.Background()
	collection := domain.UserCollectionName(testIdentity)

	_, err := f.service.Upload(ctx, testIdentity, textFile("a.txt", "x\n\ny\n\nz"), domain.UploadOptions{})
	require.NoError(t, err)

	f.embedder.errOn = map[string]error{"ikinci": domain.ErrUpstreamUnavailable}
	_, err = f.service.Upload(ctx, testIdentity, textFile("b.txt", "birinci\n\nikinci"), domain.UploadOptions{Replace: true})
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)

	info, err := f.vectors.GetCollection(ctx, collection)
	require.NoError(t, err, "collection survives a failed replace")
	assert.Equal(t, 3, info.PointsCount)

	page, err := f.vectors.Scroll(ctx, collection, 10, nil)
	require.NoError(t, err)
	for _, p := range page.Points {
		assert.Equal(t, "a.txt", domain.ChunkFromPayload(p.Payload).FileName)
	}

	records, err := f.service.History(ctx, testIdentity)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestUploadService_Upload_ProbesUnknownDimensions(t *testing.T) {
	f := newUploadFixture(0)

	result, err := f.service.Upload(context.Background(), testIdentity, textFile("a.txt", "metin"), domain.UploadOptions{})
	require.NoError(t, err)

	info, err := f.vectors.GetCollection(context.Background(), result.CollectionName)
	require.NoError(t, err)
	assert.Equal(t, 4, info.VectorSize, "size comes from the embedded vectors")
}

func TestUploadService_Upload_DimensionConflict(t *testing.T) {
	f := newUploadFixture(4)
	ctx := context.Background()
	require.NoError(t, f.vectors.CreateCollection(ctx, domain.UserCollectionName(testIdentity), 8, domain.DistanceCosine))

	_, err := f.service.Upload(ctx, testIdentity, textFile("a.txt", "metin"), domain.UploadOptions{})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUploadService_Upload_InvalidInput(t *testing.T) {
	f := newUploadFixture(4)
	ctx := context.Background()

	_, err := f.service.Upload(ctx, "  ", textFile("a.txt", "x"), domain.UploadOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.service.Upload(ctx, testIdentity, nil, domain.UploadOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.service.Upload(ctx, testIdentity, textFile("a.txt", " \n\n "), domain.UploadOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUploadService_Upload_UnsupportedType(t *testing.T) {
	f := newUploadFixture(4)

	_, err := f.service.Upload(context.Background(), testIdentity,
		&domain.RawDocument{FileName: "plan.exe", Content: []byte{0x4d, 0x5a}}, domain.UploadOptions{})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestUploadService_Upload_EmbeddingFailure(t *testing.T) {
	f := newUploadFixture(4)
	f.embedder.errOn = map[string]error{"ikinci": domain.ErrUpstreamUnavailable}

	_, err := f.service.Upload(context.Background(), testIdentity, textFile("a.txt", "birinci\n\nikinci"), domain.UploadOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)

	var indexErr *IndexError
	require.ErrorAs(t, err, &indexErr)
	assert.Equal(t, 1, indexErr.ChunkIndex)

	records, err := f.service.History(context.Background(), testIdentity)
	require.NoError(t, err)
	assert.Empty(t, records, "failed uploads are not recorded")
}

func TestUploadService_Upload_MissingServices(t *testing.T) {
	reg := normalisers.NewRegistry(plaintext.New())
	ctx := context.Background()
	file := textFile("a.txt", "x")

	noEmbedder := NewUploadService(reg, paragraphChunker{}, newFaultyVectors(), nil, nil)
	_, err := noEmbedder.Upload(ctx, testIdentity, file, domain.UploadOptions{})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	noVectors := NewUploadService(reg, paragraphChunker{}, nil, newMockEmbedder(4), nil)
	_, err = noVectors.Upload(ctx, testIdentity, file, domain.UploadOptions{})
	assert.ErrorIs(t, err, domain.ErrVectorStoreUnavailable)
}

func TestUploadService_History_WithoutStore(t *testing.T) {
	svc := NewUploadService(nil, nil, nil, nil, nil)

	records, err := svc.History(context.Background(), testIdentity)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = svc.History(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
