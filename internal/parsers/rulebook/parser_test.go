package rulebook

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
)

const sampleRulebook = `İŞ PLANI YÖNERGESİ
Bu belge iş planı hazırlayanlar içindir.

A.1.1. Girişimcinin Tanıtımı
Amaç:
Girişimcinin deneyimini ve yetkinliklerini ortaya koymak.
Aranan unsurlar:
- Eğitim geçmişi
- Sektör deneyimi
Puanlama Mantığı:
Tüm unsurlar varsa tam puan verilir.
A.1.2. İş Fikri
Amaç:
İş fikrinin çözdüğü problemi açıklamak.
!Puanlama Mantığı:
Problem ve çözüm net ise yüksek puan.
B.1. Sektör Analizi
Aranan unsurlar:
- Pazar büyüklüğü
`

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.SectionParser = (*Parser)(nil)
}

func TestParse_Sample(t *testing.T) {
	records, err := New().Parse(sampleRulebook)
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "A.1.1", first.SectionCode)
	assert.Equal(t, "Girişimcinin Tanıtımı", first.Title)
	assert.Equal(t, "Girişimcinin deneyimini ve yetkinliklerini ortaya koymak.", first.Purpose)
	assert.Equal(t, "- Eğitim geçmişi\n- Sektör deneyimi", first.SearchedElements)
	assert.Equal(t, "Tüm unsurlar varsa tam puan verilir.", first.ScoringLogic)
	assert.True(t, strings.HasPrefix(first.OriginalText, "A.1.1. Girişimcinin Tanıtımı\nAmaç:"))
	assert.NotContains(t, first.OriginalText, "A.1.2")

	second := records[1]
	assert.Equal(t, "A.1.2", second.SectionCode)
	assert.Equal(t, "İş fikrinin çözdüğü problemi açıklamak.", second.Purpose)
	assert.Empty(t, second.SearchedElements)
	assert.Equal(t, "Problem ve çözüm net ise yüksek puan.", second.ScoringLogic)

	third := records[2]
	assert.Equal(t, "B.1", third.SectionCode)
	assert.Empty(t, third.Purpose)
	assert.Equal(t, "- Pazar büyüklüğü", third.SearchedElements)
}

func TestParse_OrderPreservedAndCodesUnique(t *testing.T) {
	records, err := New().Parse(sampleRulebook)
	require.NoError(t, err)

	seen := make(map[string]bool)
	var codes []string
	for _, r := range records {
		assert.False(t, seen[r.SectionCode], "duplicate code %s", r.SectionCode)
		seen[r.SectionCode] = true
		codes = append(codes, r.SectionCode)
		assert.True(t, domain.IsValidSectionCode(r.SectionCode))
		assert.True(t, r.HasFields())
	}
	assert.Equal(t, []string{"A.1.1", "A.1.2", "B.1"}, codes)
}

func TestParse_FieldlessSectionDropped(t *testing.T) {
	text := "A.1. Intro\nAmaç:\nSome purpose\nA.2. Empty\nJust prose without labels.\n"

	records, err := New().Parse(text)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A.1", records[0].SectionCode)
	assert.Equal(t, "Intro", records[0].Title)
	assert.Equal(t, "Some purpose", records[0].Purpose)
}

func TestParse_DuplicateCodesFirstWins(t *testing.T) {
	text := "A.1. First\nAmaç:\nfirst purpose\nA.1. Second\nAmaç:\nsecond purpose\n"

	records, err := New().Parse(text)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "First", records[0].Title)
	assert.Equal(t, "first purpose", records[0].Purpose)
}

func TestParse_PurposeTruncatedToFiveLines(t *testing.T) {
	text := "C.1. Teknik\nAmaç:\nl1\nl2\nl3\nl4\nl5\nl6\nl7\n"

	records, err := New().Parse(text)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "l1\nl2\nl3\nl4\nl5", records[0].Purpose)
}

func TestParse_PurposeStopsAtSubsectionNumber(t *testing.T) {
	text := "C.1. Teknik\nAmaç:\nÜrünü tanımla.\n1.2.3. Alt madde\ndevam\n"

	records, err := New().Parse(text)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ürünü tanımla.", records[0].Purpose)
}

func TestParse_LabelsAreCaseInsensitive(t *testing.T) {
	text := "D.1. Organizasyon\nAMAÇ:\nYapıyı göster.\nARANAN UNSURLAR\n- Şema\nPUANLAMA MANTIĞI:\nŞema varsa puan.\n"

	records, err := New().Parse(text)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Yapıyı göster.", records[0].Purpose)
	assert.Equal(t, "- Şema", records[0].SearchedElements)
}

func TestParse_ScoringStopsAtEmbeddedCode(t *testing.T) {
	text := "E.1. Finans\nPuanlama Mantığı:\nVarsayımlar tutarlı olmalı.\nBkz. E.2. bölümü\n"

	records, err := New().Parse(text)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Varsayımlar tutarlı olmalı.\nBkz.", records[0].ScoringLogic)
}

func TestParse_IndentedHeaderKeepsOriginalLine(t *testing.T) {
	text := "   F.1. Genel Değerlendirme\nAmaç:\nÖzetle.\n"

	records, err := New().Parse(text)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "F.1", records[0].SectionCode)
	assert.Equal(t, "   F.1. Genel Değerlendirme\nAmaç:\nÖzetle.", records[0].OriginalText)
}

func TestParse_NotAHeader(t *testing.T) {
	// Lowercase letters and a missing space after the code do not open sections.
	text := "A.1. Gerçek\nAmaç:\nmetin\na.2. sahte\nA.3.yapışık\n"

	records, err := New().Parse(text)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, records[0].OriginalText, "A.3.yapışık")
}

func TestParse_WindowsLineEndings(t *testing.T) {
	text := "A.1. Giriş\r\nAmaç:\r\nAçıklama\r\n"

	records, err := New().Parse(text)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Açıklama", records[0].Purpose)
}

func TestParse_NoHeaders(t *testing.T) {
	records, err := New().Parse("just a paragraph\nAmaç:\nnothing")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParse_EmptyText(t *testing.T) {
	_, err := New().Parse("  \n ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
