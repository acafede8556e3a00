package driven

import "context"

// IdentityDirectory is a row-oriented store of registered users and their
// section scores. Rows are 1-based as in a spreadsheet; columns are letters.
type IdentityDirectory interface {
	// Rows returns every row, header included. Trailing empty cells may be omitted.
	Rows(ctx context.Context) ([][]string, error)

	// AppendRow adds a row after the last non-empty row.
	AppendRow(ctx context.Context, values []string) error

	// UpdateCells overwrites consecutive cells of a row starting at startColumn.
	UpdateCells(ctx context.Context, row int, startColumn string, values []string) error
}
