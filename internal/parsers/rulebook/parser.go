// Package rulebook parses the business plan rulebook into section records.
//
// The rulebook is a flat text in which headers such as "A.1.1. Girişimcinin
// Tanıtımı" open sections. Each section may carry three labelled fields:
// "Amaç" (purpose), "Aranan unsurlar" (searched elements) and
// "Puanlama Mantığı" (scoring logic).
package rulebook

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
	"github.com/custodia-labs/plancheck/internal/logger"
)

// Ensure Parser implements the interface.
var _ driven.SectionParser = (*Parser)(nil)

// maxPurposeLines is the number of purpose lines kept.
const maxPurposeLines = 5

var headerPattern = regexp.MustCompile(`^([A-Z])\.(\d+(?:\.\d+)*)\.\s+(.+)$`)

// field locates a labelled value inside a section span. The value starts
// after the label and ends at the earliest terminator or the end of the span.
type field struct {
	start       *regexp.Regexp
	terminators []*regexp.Regexp
}

// Dotted and dotless i are matched explicitly: case folding does not map
// between the Turkish and ASCII forms.
var (
	purposeField = field{
		start: regexp.MustCompile(`(?is)Amaç[:\s]*\n`),
		terminators: []*regexp.Regexp{
			regexp.MustCompile(`\d+\.\d+\.\d+\.`),
			regexp.MustCompile(`(?i)Aranan unsurlar`),
			regexp.MustCompile(`(?i)!Puanlama`),
			regexp.MustCompile(`(?i)Puanlama Mant[ıiIİ]ğ[ıiIİ]`),
		},
	}
	searchedField = field{
		start: regexp.MustCompile(`(?is)Aranan unsurlar[:\s]*\n`),
		terminators: []*regexp.Regexp{
			regexp.MustCompile(`(?i)!Puanlama`),
			regexp.MustCompile(`(?i)Puanlama Mant[ıiIİ]ğ[ıiIİ]`),
		},
	}
	scoringField = field{
		start: regexp.MustCompile(`(?is)!?Puanlama Mant[ıiIİ]ğ[ıiIİ][:\s]*\n`),
		terminators: []*regexp.Regexp{
			regexp.MustCompile(`(?i)[A-Z]\.\d+\.`),
		},
	}
)

// extract returns the trimmed value of the field in span, or "".
func (f field) extract(span string) string {
	loc := f.start.FindStringIndex(span)
	if loc == nil {
		return ""
	}
	rest := span[loc[1]:]
	end := len(rest)
	for _, t := range f.terminators {
		if m := t.FindStringIndex(rest); m != nil && m[0] < end {
			end = m[0]
		}
	}
	return strings.TrimSpace(rest[:end])
}

// Parser is the regex rulebook parser.
type Parser struct{}

// New creates a rulebook parser.
func New() *Parser {
	return &Parser{}
}

// Parse splits text into section records in document order.
// Sections without any field are dropped; duplicate codes keep the first occurrence.
func (p *Parser) Parse(text string) ([]domain.SectionRecord, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: rulebook text is empty", domain.ErrInvalidInput)
	}

	var (
		records []domain.SectionRecord
		seen    = make(map[string]bool)
		current *openSection
		dropped int
	)

	closeSection := func() {
		if current == nil {
			return
		}
		record := current.record()
		switch {
		case !record.HasFields():
			dropped++
		case seen[record.SectionCode]:
			logger.Warn("rulebook: duplicate section %s (%q) skipped", record.SectionCode, record.Title)
		default:
			seen[record.SectionCode] = true
			records = append(records, record)
		}
		current = nil
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if m := headerPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			closeSection()
			current = &openSection{
				code:  m[1] + "." + m[2],
				title: strings.TrimSpace(m[3]),
			}
		}
		if current != nil {
			current.lines = append(current.lines, line)
		}
	}
	closeSection()

	logger.Debug("rulebook: parsed %d sections, dropped %d without fields", len(records), dropped)
	return records, nil
}

// openSection collects the raw lines of a section until the next header.
type openSection struct {
	code  string
	title string
	lines []string
}

func (s *openSection) record() domain.SectionRecord {
	span := strings.Join(s.lines, "\n")
	return domain.SectionRecord{
		SectionCode:      s.code,
		Title:            s.title,
		Purpose:          firstLines(purposeField.extract(span), maxPurposeLines),
		SearchedElements: searchedField.extract(span),
		ScoringLogic:     scoringField.extract(span),
		OriginalText:     strings.TrimRight(span, " \t\r\n"),
	}
}

// firstLines truncates text to its first n lines.
func firstLines(text string, n int) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= n {
		return text
	}
	return strings.TrimSpace(strings.Join(lines[:n], "\n"))
}
