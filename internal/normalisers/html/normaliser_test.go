package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
)

func TestNormaliser_ImplementsInterface(t *testing.T) {
	var _ driven.Normaliser = New()
}

func TestSupportedTypes(t *testing.T) {
	n := New()
	assert.Equal(t, []string{"text/html", "application/xhtml+xml"}, n.SupportedMIMETypes())
	assert.Contains(t, n.SupportedExtensions(), ".html")
	assert.Contains(t, n.SupportedExtensions(), ".htm")
	assert.Equal(t, 50, n.Priority())
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_ExtractsBodyText(t *testing.T) {
	raw := &domain.RawDocument{
		FileName: "plan.html",
		MIMEType: "text/html",
		Content: []byte(`<html><head><title>İş Planı</title><style>p{color:red}</style></head>
<body>
<h1>A. Girişimci</h1>
<p>Kurucu   ekip &amp; deneyim</p>
<script>alert("x")</script>
<ul><li>Birinci</li><li>İkinci</li></ul>
</body></html>`),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "plan.html", doc.FileName)
	assert.Equal(t, "html", doc.Format)
	assert.Equal(t, "A. Girişimci\nKurucu ekip & deneyim\nBirinci\nİkinci", doc.Content)
}

func TestNormalise_LineBreaks(t *testing.T) {
	raw := &domain.RawDocument{
		FileName: "x.htm",
		Content:  []byte(`<div>one<br/>two<br>three</div><table><tr><td>a</td><td>b</td></tr></table>`),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree\na\nb", result.Document.Content)
}

func TestNormalise_Empty(t *testing.T) {
	result, err := New().Normalise(context.Background(), &domain.RawDocument{FileName: "empty.html"})
	require.NoError(t, err)
	assert.Empty(t, result.Document.Content)
}
