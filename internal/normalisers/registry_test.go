package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
)

// stubNormaliser records which normaliser handled a document.
type stubNormaliser struct {
	name       string
	mimeTypes  []string
	extensions []string
	priority   int
}

func (s *stubNormaliser) SupportedMIMETypes() []string  { return s.mimeTypes }
func (s *stubNormaliser) SupportedExtensions() []string { return s.extensions }
func (s *stubNormaliser) Priority() int                 { return s.priority }

func (s *stubNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	return &driven.NormaliseResult{Document: domain.Document{FileName: raw.FileName, Format: s.name}}, nil
}

func newTestRegistry() *Registry {
	return NewRegistry(
		&stubNormaliser{name: "text", mimeTypes: []string{"text/plain"}, extensions: []string{".txt", ".md"}, priority: 5},
		&stubNormaliser{name: "docx", mimeTypes: []string{"application/docx"}, extensions: []string{".docx"}, priority: 50},
		&stubNormaliser{name: "pdf", mimeTypes: []string{"application/pdf"}, extensions: []string{".pdf"}, priority: 50},
	)
}

func TestRegistry_DispatchByMIMEType(t *testing.T) {
	result, err := newTestRegistry().Normalise(context.Background(), &domain.RawDocument{
		FileName: "plan.bin",
		MIMEType: "application/pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "pdf", result.Document.Format)
}

func TestRegistry_MIMETypeParametersIgnored(t *testing.T) {
	result, err := newTestRegistry().Normalise(context.Background(), &domain.RawDocument{
		FileName: "notes",
		MIMEType: "text/plain; charset=utf-8",
	})
	require.NoError(t, err)
	assert.Equal(t, "text", result.Document.Format)
}

func TestRegistry_FallbackToExtension(t *testing.T) {
	result, err := newTestRegistry().Normalise(context.Background(), &domain.RawDocument{
		FileName: "İş Planı.DOCX",
		MIMEType: "application/octet-stream",
	})
	require.NoError(t, err)
	assert.Equal(t, "docx", result.Document.Format)
}

func TestRegistry_Unsupported(t *testing.T) {
	_, err := newTestRegistry().Normalise(context.Background(), &domain.RawDocument{FileName: "plan.xlsx"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = newTestRegistry().Normalise(context.Background(), &domain.RawDocument{FileName: "README"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRegistry_NilDocument(t *testing.T) {
	_, err := newTestRegistry().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistry_PriorityOrder(t *testing.T) {
	r := NewRegistry(
		&stubNormaliser{name: "fallback", mimeTypes: []string{"text/plain"}, priority: 1},
		&stubNormaliser{name: "preferred", mimeTypes: []string{"text/plain"}, priority: 80},
	)

	result, err := r.Normalise(context.Background(), &domain.RawDocument{MIMEType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, "preferred", result.Document.Format)
}

func TestRegistry_SupportedTypes(t *testing.T) {
	r := newTestRegistry()
	assert.ElementsMatch(t, []string{"text/plain", "application/docx", "application/pdf"}, r.SupportedMIMETypes())
	assert.ElementsMatch(t, []string{".txt", ".md", ".docx", ".pdf"}, r.SupportedExtensions())
}

func TestRegistry_RegisterNil(t *testing.T) {
	r := NewRegistry()
	r.Register(nil)
	assert.Empty(t, r.SupportedMIMETypes())
}
