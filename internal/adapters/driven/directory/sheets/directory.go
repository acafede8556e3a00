package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
	"github.com/custodia-labs/plancheck/internal/logger"
)

// Ensure Directory implements the interface.
var _ driven.IdentityDirectory = (*Directory)(nil)

// DefaultSheetName is used when the spreadsheet lists no sheets.
const DefaultSheetName = "Sheet1"

// dataColumns spans the user columns and every score column.
const dataColumns = "A:" + domain.LastScoreColumn

// Config holds the service account credentials and target spreadsheet.
type Config struct {
	SpreadsheetID       string
	ServiceAccountEmail string
	PrivateKey          string

	// SheetName pins the users sheet and skips header detection.
	SheetName string
}

// Directory reads and writes directory rows through the Sheets API.
type Directory struct {
	svc           *sheets.Service
	spreadsheetID string

	mu        sync.Mutex
	sheetName string
}

// New authenticates the service account and returns a directory.
// No request is made until the first operation.
func New(ctx context.Context, cfg Config) (*Directory, error) {
	if cfg.SpreadsheetID == "" {
		return nil, &domain.MissingConfigError{Setting: "directory.spreadsheet_id", Hint: "set GOOGLE_SPREADSHEET_ID"}
	}
	if cfg.ServiceAccountEmail == "" {
		return nil, &domain.MissingConfigError{Setting: "directory.service_account_email", Hint: "set GOOGLE_SERVICE_ACCOUNT_EMAIL"}
	}
	if cfg.PrivateKey == "" {
		return nil, &domain.MissingConfigError{Setting: "directory.private_key", Hint: "set GOOGLE_PRIVATE_KEY"}
	}

	key, err := NormalizePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}

	conf := &jwt.Config{
		Email:      cfg.ServiceAccountEmail,
		PrivateKey: []byte(key),
		Scopes:     []string{sheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return newDirectory(svc, cfg.SpreadsheetID, cfg.SheetName), nil
}

// NewWithClient builds a directory on a preconfigured HTTP client and endpoint.
// The caller is responsible for authentication.
func NewWithClient(ctx context.Context, client *http.Client, endpoint, spreadsheetID, sheetName string) (*Directory, error) {
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return newDirectory(svc, spreadsheetID, sheetName), nil
}

func newDirectory(svc *sheets.Service, spreadsheetID, sheetName string) *Directory {
	return &Directory{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}
}

// Rows returns every row of the users sheet, header included.
func (d *Directory) Rows(ctx context.Context) ([][]string, error) {
	sheet, err := d.usersSheet(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := d.svc.Spreadsheets.Values.Get(d.spreadsheetID, a1(sheet, dataColumns)).Context(ctx).Do()
	if err != nil {
		return nil, classify("read rows", err)
	}
	return toStrings(resp.Values), nil
}

// AppendRow inserts a row after the table.
func (d *Directory) AppendRow(ctx context.Context, values []string) error {
	sheet, err := d.usersSheet(ctx)
	if err != nil {
		return err
	}

	body := &sheets.ValueRange{Values: [][]any{toCells(values)}}
	_, err = d.svc.Spreadsheets.Values.Append(d.spreadsheetID, a1(sheet, dataColumns), body).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return classify("append row", err)
	}
	return nil
}

// UpdateCells overwrites cells of one row starting at startColumn.
func (d *Directory) UpdateCells(ctx context.Context, row int, startColumn string, values []string) error {
	start := domain.ColumnIndex(startColumn)
	end := domain.ColumnLetter(start + len(values) - 1)
	if row < 1 || start < 0 || len(values) == 0 || end == "" {
		return fmt.Errorf("%w: invalid cell range %s%d (+%d)", domain.ErrInvalidInput, startColumn, row, len(values))
	}

	sheet, err := d.usersSheet(ctx)
	if err != nil {
		return err
	}

	rng := a1(sheet, fmt.Sprintf("%s%d:%s%d", startColumn, row, end, row))
	body := &sheets.ValueRange{Values: [][]any{toCells(values)}}
	_, err = d.svc.Spreadsheets.Values.Update(d.spreadsheetID, rng, body).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return classify("update cells", err)
	}
	return nil
}

// usersSheet resolves and caches the users sheet title.
func (d *Directory) usersSheet(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sheetName != "" {
		return d.sheetName, nil
	}

	meta, err := d.svc.Spreadsheets.Get(d.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return "", classify("read spreadsheet", err)
	}

	var titles []string
	for _, s := range meta.Sheets {
		if s.Properties != nil && s.Properties.Title != "" {
			titles = append(titles, s.Properties.Title)
		}
	}

	name := ""
	for _, title := range titles {
		header, err := d.svc.Spreadsheets.Values.Get(d.spreadsheetID, a1(title, "A1:D1")).Context(ctx).Do()
		if err != nil {
			logger.Debug("sheets: header of %q unreadable: %v", title, err)
			continue
		}
		if looksLikeUsers(toStrings(header.Values)) {
			name = title
			break
		}
	}
	if name == "" && len(titles) > 0 {
		name = titles[0]
	}
	if name == "" {
		name = DefaultSheetName
	}

	logger.Debug("sheets: using sheet %q", name)
	d.sheetName = name
	return name, nil
}

// looksLikeUsers reports whether a header row has a name and an email column.
func looksLikeUsers(rows [][]string) bool {
	if len(rows) == 0 {
		return false
	}
	var hasName, hasEmail bool
	for _, cell := range rows[0] {
		v := strings.ToLower(strings.TrimSpace(cell))
		if strings.Contains(v, "ad") {
			hasName = true
		}
		if strings.Contains(v, "e-posta") || strings.Contains(v, "eposta") {
			hasEmail = true
		}
	}
	return hasName && hasEmail
}

// a1 builds an A1 range with a quoted sheet title.
func a1(sheet, cells string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + cells
}

func toStrings(values [][]any) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			if cell == nil {
				continue
			}
			rows[i][j] = fmt.Sprint(cell)
		}
	}
	return rows
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

// classify maps Sheets API failures onto domain errors.
func classify(op string, err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: sheets %s: %v", domain.ErrUpstreamUnavailable, op, err)
	}

	switch gerr.Code {
	case http.StatusNotFound:
		return fmt.Errorf("%w: sheets %s: %s", domain.ErrNotFound, op, gerr.Message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: sheets %s: %s", domain.ErrRateLimited, op, gerr.Message)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: sheets %s: access denied (share the spreadsheet with the service account): %s",
			domain.ErrUpstreamUnavailable, op, gerr.Message)
	default:
		return fmt.Errorf("%w: sheets %s: %s", domain.ErrUpstreamUnavailable, op, gerr.Message)
	}
}
