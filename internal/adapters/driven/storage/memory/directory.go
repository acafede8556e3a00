package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
)

// Ensure Directory implements the interface.
var _ driven.IdentityDirectory = (*Directory)(nil)

// Directory is an in-memory driven.IdentityDirectory.
type Directory struct {
	mu   sync.RWMutex
	rows [][]string
}

// NewDirectory creates a directory holding a copy of rows.
func NewDirectory(rows ...[]string) *Directory {
	d := &Directory{}
	for _, row := range rows {
		d.rows = append(d.rows, append([]string(nil), row...))
	}
	return d
}

// Rows returns a copy of every row.
func (d *Directory) Rows(_ context.Context) ([][]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([][]string, len(d.rows))
	for i, row := range d.rows {
		out[i] = append([]string{}, row...)
	}
	return out, nil
}

// AppendRow adds a row at the end.
func (d *Directory) AppendRow(_ context.Context, values []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rows = append(d.rows, append([]string{}, values...))
	return nil
}

// UpdateCells overwrites cells, growing the table as needed.
func (d *Directory) UpdateCells(_ context.Context, row int, startColumn string, values []string) error {
	start := domain.ColumnIndex(startColumn)
	if row < 1 || start < 0 {
		return fmt.Errorf("%w: invalid cell address %s%d", domain.ErrInvalidInput, startColumn, row)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for len(d.rows) < row {
		d.rows = append(d.rows, []string{})
	}
	cells := d.rows[row-1]
	for len(cells) < start+len(values) {
		cells = append(cells, "")
	}
	copy(cells[start:], values)
	d.rows[row-1] = cells
	return nil
}
