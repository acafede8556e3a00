package domain

import (
	"strings"
	"time"
)

// Directory columns. Rows hold first name, last name, email and
// registration time, followed by one score column per rubric section.
const (
	ColumnFirstName = 0
	ColumnLastName  = 1
	ColumnEmail     = 2
	ColumnCreatedAt = 3
)

// FirstScoreColumn is the column of the section A score.
const FirstScoreColumn = "E"

// LastScoreColumn is the column of the section F score.
const LastScoreColumn = "J"

// DirectoryHeader is the header row written to empty directories.
func DirectoryHeader() []string {
	return []string{"Ad", "Soyad", "E-posta", "Kayıt Tarihi"}
}

// Registration is a sign-up request.
type Registration struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
}

// Member is a registered user as returned by a registration check.
type Member struct {
	// Exists is true when the email is registered.
	Exists bool `json:"exists"`

	// Name is "First Last" when registered.
	Name string `json:"name,omitempty"`

	// Row is the 1-based directory row. Zero when not registered.
	Row int `json:"-"`
}

// ScoreEntry is a section score to persist.
type ScoreEntry struct {
	Email   string        `validate:"required,email"`
	Section SectionLetter `validate:"required,oneof=A B C D E F"`
	Score   int           `validate:"min=0,max=100"`
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsHeaderRow reports whether a directory row is the header row.
// The header's first cell contains "ad".
func IsHeaderRow(row []string) bool {
	return len(row) > 0 && strings.Contains(strings.ToLower(row[0]), "ad")
}

// FormatTimestamp renders a registration or score timestamp.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
