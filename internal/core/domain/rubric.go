package domain

import (
	"fmt"
	"strings"
)

// SectionLetter identifies a top-level rubric section (A to F).
type SectionLetter string

// Top-level rubric sections.
const (
	SectionA SectionLetter = "A"
	SectionB SectionLetter = "B"
	SectionC SectionLetter = "C"
	SectionD SectionLetter = "D"
	SectionE SectionLetter = "E"
	SectionF SectionLetter = "F"
)

// RubricSection describes one top-level section of the business plan rubric.
type RubricSection struct {
	// Letter is the section letter.
	Letter SectionLetter

	// Title is the display title used in evaluation prompts.
	Title string

	// Scope lists the sub-sections covered by the section.
	Scope []string

	// ScoreColumn is the directory column that stores the section score.
	ScoreColumn string
}

var rubric = []RubricSection{
	{
		Letter: SectionA,
		Title:  "BÖLÜM A – GENEL BİLGİLER",
		Scope: []string{
			"A.1.1. Girişimcinin Tanıtımı",
			"A.1.2. İş Fikri",
			"A.2. Şirket Tanıtımı",
			"A.2.1. Misyon, Vizyon ve Değerler",
			"A.2.2. Şirket Tanımı",
			"A.2.3. Sahiplik Yapısı",
			"A.2.4. Endüstri, Konum, Tarihçe ve Mevcut Durum",
			"A.3. Ürün/Hizmetin Genel Tanıtımı",
			"A.3.1. Müşteriye Sağlanan Değer",
			"A.3.2. Yenilikçi Yönler",
			"A.3.3. Fikri Mülkiyet / Patent / Marka Durumu ve Süreci",
			"A.4. İş Modeli",
			"A.4.1. Gelir Modeli",
			"A.4.2. Temel Kaynaklar / Yetkinlikler",
			"A.5. Kuruluş ve Girişim Süreci",
			"A.6. Hedefler",
		},
		ScoreColumn: "E",
	},
	{
		Letter: SectionB,
		Title:  "BÖLÜM B – PAZAR ANALİZİ",
		Scope: []string{
			"B.1. Sektör Analizi",
			"B.1.1. Pazar Büyüklüğü",
			"B.1.2. Pazarın Gelişim Potansiyeli ve Trendleri",
			"B.2. Rekabet Analizi",
			"B.2.1. Doğrudan ve Dolaylı Rakipler",
			"B.2.2. Rakiplerin Güçlü ve Zayıf Yönleri",
			"B.2.3. Pazara Giriş Engelleri",
			"B.3. Müşteri Analizi",
			"B.3.1. Müşteri Doğrulama",
			"B.3.2. Müşteri Segmentasyonu",
			"B.3.3. Müşteri Profilleri",
			"B.4. Pazarlama & Satış Stratejileri",
			"B.4.1. Konumlandırma",
			"B.4.2. Fiyatlandırma",
			"B.4.3. Dağıtım Kanalları",
			"B.4.4. Reklam ve Promosyon",
			"B.4.5. Satış Sonrası Hizmetler",
			"B.4.6. Satış Projeksiyonları",
		},
		ScoreColumn: "F",
	},
	{
		Letter: SectionC,
		Title:  "C. TEKNİK ANALİZ",
		Scope: []string{
			"C.1. Ürün / Hizmetin Teknik Tanımı",
			"C.1.1. Teknik Özellikler",
			"C.1.2. Teknolojik Üstünlükler",
			"C.1.3. Ürün Yaşam Döngüsü",
			"C.1.4. Prototip Durumu / TRL Seviyesi",
			"C.2. Üretim ve Operasyon",
			"C.2.1. Üretim Süreci ve Kapasitesi",
			"C.2.2. Tedarikçiler",
			"C.2.3. Makine, Hammadde vb. Kaynakların Seçimi",
			"C.2.4. İş Akış Şeması",
			"C.2.5. Kalite Güvence Sistemleri",
			"C.2.6. Çevresel Etki",
			"C.3. Kuruluş Yeri Seçimi",
			"C.4. Ar-Ge ve Geliştirme Planı",
			"C.4.1. Milestones",
			"C.4.2. Gelecek Geliştirmeler",
			"C.4.3. Ar-Ge Kaynak Planı",
			"C.4.4. Riskler ve Alternatif Teknik Çözümler",
		},
		ScoreColumn: "G",
	},
	{
		Letter: SectionD,
		Title:  "D. ORGANİZASYONEL ANALİZ",
		Scope: []string{
			"D.1. Organizasyon Yapısı",
			"D.1.1. Örgüt Şeması",
			"D.1.2. İş Tanımı ve İş Şartnameleri",
			"D.2. İnsan Kaynakları Planı",
			"D.2.1. Personel İhtiyacı",
			"D.2.2. Eğitim ve İşe Alım Stratejileri",
			"D.3. İşgücü Maliyetleri",
		},
		ScoreColumn: "H",
	},
	{
		Letter: SectionE,
		Title:  "E. FİNANSAL ANALİZ",
		Scope: []string{
			"E.1. Temel Finansal Varsayımlar ve Birim Ekonomi",
			"E.2. Birim Ekonomi Göstergeleri",
			"E.3. Gelirler",
			"E.4. Giderler Analizi",
			"E.4.1. Kuruluş Sermayesi",
			"E.4.2. İşletme Sermayesini Oluşturan Temel Kalemler",
			"E.5. Başa Baş Noktası Analizi",
			"E.6. Gelir-Gider Tablosu",
			"E.7. Karlılık Analizi",
			"E.8. Toplam Sermaye İhtiyacı ve Finansman Kaynakları",
			"E.9. Finansal Riskler ve Duyarlılık Analizi",
		},
		ScoreColumn: "I",
	},
	{
		Letter: SectionF,
		Title:  "F. SONUÇ",
		Scope: []string{
			"F.1. Genel Değerlendirme ve Yatırımcı Özeti",
			"F.2. SWOT Analizi (Yatırımcı Perspektifiyle)",
		},
		ScoreColumn: "J",
	},
}

// Rubric returns the top-level sections in order.
func Rubric() []RubricSection {
	out := make([]RubricSection, len(rubric))
	copy(out, rubric)
	return out
}

// ParseSectionLetter converts user input ("a", " B ") to a SectionLetter.
func ParseSectionLetter(s string) (SectionLetter, error) {
	l := SectionLetter(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := l.Section(); !ok {
		return "", fmt.Errorf("%w: unknown section %q (expected A-F)", ErrInvalidInput, s)
	}
	return l, nil
}

// IsValid returns true if the letter names a rubric section.
func (l SectionLetter) IsValid() bool {
	_, ok := l.Section()
	return ok
}

// Section returns the rubric entry for the letter.
func (l SectionLetter) Section() (RubricSection, bool) {
	for _, s := range rubric {
		if s.Letter == l {
			return s, true
		}
	}
	return RubricSection{}, false
}

// ScoreColumn returns the directory column for the letter's score, or "".
func (l SectionLetter) ScoreColumn() string {
	s, ok := l.Section()
	if !ok {
		return ""
	}
	return s.ScoreColumn
}

// ScoreHeaders returns the score column headers PUAN_A..PUAN_F.
func ScoreHeaders() []string {
	headers := make([]string, len(rubric))
	for i, s := range rubric {
		headers[i] = "PUAN_" + string(s.Letter)
	}
	return headers
}

// ColumnIndex converts a column letter ("A", "E") to its 0-based index.
// Returns -1 for anything other than a single letter A-Z.
func ColumnIndex(column string) int {
	if len(column) != 1 || column[0] < 'A' || column[0] > 'Z' {
		return -1
	}
	return int(column[0] - 'A')
}

// ColumnLetter converts a 0-based column index to its letter.
// Returns "" for indices outside A-Z.
func ColumnLetter(index int) string {
	if index < 0 || index > 25 {
		return ""
	}
	return string(rune('A' + index))
}
