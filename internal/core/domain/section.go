package domain

import (
	"regexp"
	"strings"
)

// sectionCodePattern matches hierarchical codes such as "A.1" or "B.2.1".
var sectionCodePattern = regexp.MustCompile(`^[A-Z]\.\d+(\.\d+)*$`)

// SectionRecord is one structured unit of the rulebook,
// addressed by a hierarchical section code.
type SectionRecord struct {
	// SectionCode is the hierarchical identifier, e.g. "A.1.1".
	SectionCode string `json:"sectionCode"`

	// Title is the header text following the code.
	Title string `json:"title"`

	// Purpose is the "Amaç" prose, at most five lines.
	Purpose string `json:"purpose"`

	// SearchedElements is the "Aranan unsurlar" prose or list.
	SearchedElements string `json:"searchedElements"`

	// ScoringLogic is the "Puanlama Mantığı" prose.
	ScoringLogic string `json:"scoringLogic"`

	// OriginalText is the verbatim source span, header line included.
	OriginalText string `json:"originalText"`
}

// IsValidSectionCode reports whether code follows the <Letter>.<digit>(.<digit>)* pattern.
func IsValidSectionCode(code string) bool {
	return sectionCodePattern.MatchString(code)
}

// HasFields reports whether at least one of purpose, searched elements
// or scoring logic is populated. Records without fields are noise.
func (r SectionRecord) HasFields() bool {
	return r.Purpose != "" || r.SearchedElements != "" || r.ScoringLogic != ""
}

// Letter returns the top-level section letter ("A" for "A.1.2").
func (r SectionRecord) Letter() string {
	if r.SectionCode == "" {
		return ""
	}
	return r.SectionCode[:1]
}

// EmbeddingText is the text embedded for this record in the guideline collection.
func (r SectionRecord) EmbeddingText() string {
	parts := []string{"Bölüm: " + r.SectionCode + " - " + r.Title}
	if r.Purpose != "" {
		parts = append(parts, "Amaç: "+r.Purpose)
	}
	if r.SearchedElements != "" {
		parts = append(parts, "Aranan Unsurlar: "+r.SearchedElements)
	}
	if r.ScoringLogic != "" {
		parts = append(parts, "Puanlama Mantığı: "+r.ScoringLogic)
	}
	return strings.Join(parts, "\n\n")
}
