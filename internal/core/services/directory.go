package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
	"github.com/custodia-labs/plancheck/internal/core/ports/driving"
	"github.com/custodia-labs/plancheck/internal/logger"
)

// Ensure DirectoryService implements the interfaces.
var (
	_ driving.RegistrationService = (*DirectoryService)(nil)
	_ driving.ScoreService        = (*DirectoryService)(nil)
)

// DirectoryService registers users and stores their section scores in the
// identity directory.
type DirectoryService struct {
	dir      driven.IdentityDirectory
	validate *validator.Validate
	now      func() time.Time
}

// NewDirectoryService creates a directory service.
func NewDirectoryService(dir driven.IdentityDirectory) *DirectoryService {
	return &DirectoryService{
		dir:      dir,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

// Register adds a user row. Known emails yield domain.ErrAlreadyExists.
func (s *DirectoryService) Register(ctx context.Context, reg domain.Registration) error {
	if s.dir == nil {
		return domain.ErrDirectoryUnavailable
	}

	reg.FirstName = strings.TrimSpace(reg.FirstName)
	reg.LastName = strings.TrimSpace(reg.LastName)
	reg.Email = domain.NormalizeEmail(reg.Email)
	if err := s.check(reg); err != nil {
		return err
	}

	rows, err := s.dir.Rows(ctx)
	if err != nil {
		return fmt.Errorf("read directory: %w", err)
	}
	if _, found := findEmail(rows, reg.Email); found {
		return fmt.Errorf("%w: %s is already registered", domain.ErrAlreadyExists, reg.Email)
	}

	if len(rows) == 0 {
		if err := s.dir.AppendRow(ctx, domain.DirectoryHeader()); err != nil {
			return fmt.Errorf("write directory header: %w", err)
		}
	}

	row := []string{reg.FirstName, reg.LastName, reg.Email, domain.FormatTimestamp(s.now())}
	if err := s.dir.AppendRow(ctx, row); err != nil {
		return fmt.Errorf("append registration: %w", err)
	}
	logger.Info("Registered %s", reg.Email)
	return nil
}

// Check looks up a user by email.
func (s *DirectoryService) Check(ctx context.Context, email string) (*domain.Member, error) {
	if s.dir == nil {
		return nil, domain.ErrDirectoryUnavailable
	}

	email = domain.NormalizeEmail(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("%w: email: %s", domain.ErrInvalidInput, describe(err))
	}

	rows, err := s.dir.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	rowNum, found := findEmail(rows, email)
	if !found {
		return &domain.Member{Exists: false}, nil
	}

	row := rows[rowNum-1]
	name := strings.TrimSpace(cell(row, domain.ColumnFirstName) + " " + cell(row, domain.ColumnLastName))
	return &domain.Member{Exists: true, Name: name, Row: rowNum}, nil
}

// Save writes a section score to the user's row. An unknown email gets a
// placeholder row first. On a sheet with a header row, the score column
// headers are written once.
func (s *DirectoryService) Save(ctx context.Context, entry domain.ScoreEntry) error {
	if s.dir == nil {
		return domain.ErrDirectoryUnavailable
	}

	entry.Email = domain.NormalizeEmail(entry.Email)
	entry.Section = domain.SectionLetter(strings.ToUpper(string(entry.Section)))
	if err := s.check(entry); err != nil {
		return err
	}

	rows, err := s.dir.Rows(ctx)
	if err != nil {
		return fmt.Errorf("read directory: %w", err)
	}

	rowNum, found := findEmail(rows, entry.Email)
	if !found {
		placeholder := []string{"", "", entry.Email, domain.FormatTimestamp(s.now())}
		if err := s.dir.AppendRow(ctx, placeholder); err != nil {
			return fmt.Errorf("append score row: %w", err)
		}
		if rows, err = s.dir.Rows(ctx); err != nil {
			return fmt.Errorf("read directory: %w", err)
		}
		if rowNum, found = findEmail(rows, entry.Email); !found {
			return fmt.Errorf("%w: row for %s not found after append", domain.ErrUpstreamUnavailable, entry.Email)
		}
	}

	if len(rows) > 0 && domain.IsHeaderRow(rows[0]) && scoreHeadersEmpty(rows[0]) {
		if err := s.dir.UpdateCells(ctx, 1, domain.FirstScoreColumn, domain.ScoreHeaders()); err != nil {
			return fmt.Errorf("write score headers: %w", err)
		}
	}

	column := entry.Section.ScoreColumn()
	if err := s.dir.UpdateCells(ctx, rowNum, column, []string{strconv.Itoa(entry.Score)}); err != nil {
		return fmt.Errorf("write score: %w", err)
	}
	logger.Debug("Score %d written to %s%d", entry.Score, column, rowNum)
	return nil
}

// check validates a struct and maps failures to domain.ErrInvalidInput.
func (s *DirectoryService) check(v any) error {
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, describe(err))
	}
	return nil
}

// describe renders validation errors as "field: rule" pairs.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, len(verrs))
	for i, fe := range verrs {
		field := fe.Field()
		if field == "" {
			field = "value"
		}
		parts[i] = strings.ToLower(field) + " failed " + fe.Tag()
	}
	return strings.Join(parts, ", ")
}

// findEmail returns the 1-based row holding email in the email column,
// skipping the header row.
func findEmail(rows [][]string, email string) (int, bool) {
	for i, row := range rows {
		if i == 0 && domain.IsHeaderRow(row) {
			continue
		}
		if domain.NormalizeEmail(cell(row, domain.ColumnEmail)) == email {
			return i + 1, true
		}
	}
	return 0, false
}

func scoreHeadersEmpty(header []string) bool {
	first := domain.ColumnIndex(domain.FirstScoreColumn)
	last := domain.ColumnIndex(domain.LastScoreColumn)
	for i := first; i <= last; i++ {
		if strings.TrimSpace(cell(header, i)) != "" {
			return false
		}
	}
	return true
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
