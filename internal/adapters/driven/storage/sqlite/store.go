package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/plancheck/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
)

// Store is a SQLite database that serves the directory and upload
// store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.plancheck/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".plancheck", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "plancheck.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Directory returns an IdentityDirectory backed by this store.
func (s *Store) Directory() driven.IdentityDirectory {
	return &directory{store: s}
}

// UploadStore returns an UploadStore backed by this store.
func (s *Store) UploadStore() driven.UploadStore {
	return &uploadStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Identity Directory ====================

// directory implements driven.IdentityDirectory with one JSON-encoded
// row per record, keyed by the 1-based row number.
type directory struct {
	store *Store
}

var _ driven.IdentityDirectory = (*directory)(nil)

// Rows returns rows 1..N. Gaps are returned as empty rows.
func (d *directory) Rows(ctx context.Context) ([][]string, error) {
	rows, err := d.store.db.QueryContext(ctx, `SELECT row_num, cells FROM directory_rows ORDER BY row_num`)
	if err != nil {
		return nil, fmt.Errorf("querying directory rows: %w", err)
	}
	defer rows.Close()

	var result [][]string
	for rows.Next() {
		var rowNum int
		var cellsJSON string
		if err := rows.Scan(&rowNum, &cellsJSON); err != nil {
			return nil, fmt.Errorf("scanning directory row: %w", err)
		}
		cells, err := decodeCells(cellsJSON)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}
		for len(result) < rowNum-1 {
			result = append(result, []string{})
		}
		result = append(result, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating directory rows: %w", err)
	}
	return result, nil
}

// AppendRow adds a row after the last row.
func (d *directory) AppendRow(ctx context.Context, values []string) error {
	cellsJSON, err := encodeCells(values)
	if err != nil {
		return err
	}

	_, err = d.store.db.ExecContext(ctx, `
		INSERT INTO directory_rows (row_num, cells, updated_at)
		SELECT COALESCE(MAX(row_num), 0) + 1, ?, ? FROM directory_rows
	`, cellsJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("appending directory row: %w", err)
	}
	return nil
}

// UpdateCells overwrites cells of a row starting at startColumn. The row is
// created when absent and padded with empty cells as needed.
func (d *directory) UpdateCells(ctx context.Context, row int, startColumn string, values []string) error {
	start := domain.ColumnIndex(startColumn)
	if row < 1 || start < 0 {
		return fmt.Errorf("%w: invalid cell address %s%d", domain.ErrInvalidInput, startColumn, row)
	}

	tx, err := d.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var cells []string
	var cellsJSON string
	err = tx.QueryRowContext(ctx, `SELECT cells FROM directory_rows WHERE row_num = ?`, row).Scan(&cellsJSON)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("reading directory row: %w", err)
	default:
		if cells, err = decodeCells(cellsJSON); err != nil {
			return err
		}
	}

	for len(cells) < start+len(values) {
		cells = append(cells, "")
	}
	copy(cells[start:], values)

	encoded, err := encodeCells(cells)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO directory_rows (row_num, cells, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(row_num) DO UPDATE SET cells = excluded.cells, updated_at = excluded.updated_at
	`, row, encoded, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("writing directory row: %w", err)
	}

	return tx.Commit()
}

// ==================== Upload Store ====================

// uploadStore implements driven.UploadStore.
type uploadStore struct {
	store *Store
}

var _ driven.UploadStore = (*uploadStore)(nil)

// Record stores an upload.
func (u *uploadStore) Record(ctx context.Context, upload *domain.UploadRecord) error {
	if upload == nil || upload.ID == "" {
		return domain.ErrInvalidInput
	}
	if upload.CreatedAt.IsZero() {
		upload.CreatedAt = time.Now().UTC()
	}

	_, err := u.store.db.ExecContext(ctx, `
		INSERT INTO uploads (id, identity, collection_name, file_name, chunk_count, replaced, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, upload.ID, domain.NormalizeIdentity(upload.Identity), upload.CollectionName,
		upload.FileName, upload.ChunkCount, upload.Replaced, upload.CreatedAt.UTC())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: upload %s", domain.ErrAlreadyExists, upload.ID)
		}
		return fmt.Errorf("recording upload: %w", err)
	}
	return nil
}

// List returns uploads for an identity, newest first.
func (u *uploadStore) List(ctx context.Context, identity string) ([]domain.UploadRecord, error) {
	rows, err := u.store.db.QueryContext(ctx, `
		SELECT id, identity, collection_name, file_name, chunk_count, replaced, created_at
		FROM uploads WHERE identity = ?
		ORDER BY created_at DESC, id DESC
	`, domain.NormalizeIdentity(identity))
	if err != nil {
		return nil, fmt.Errorf("querying uploads: %w", err)
	}
	defer rows.Close()

	var records []domain.UploadRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var rec domain.UploadRecord
		if err := rows.Scan(&rec.ID, &rec.Identity, &rec.CollectionName, &rec.FileName,
			&rec.ChunkCount, &rec.Replaced, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning upload: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating uploads: %w", err)
	}
	return records, nil
}

// ==================== Helper Functions ====================

func encodeCells(cells []string) (string, error) {
	if cells == nil {
		cells = []string{}
	}
	data, err := json.Marshal(cells)
	if err != nil {
		return "", fmt.Errorf("encoding cells: %w", err)
	}
	return string(data), nil
}

func decodeCells(data string) ([]string, error) {
	var cells []string
	if err := json.Unmarshal([]byte(data), &cells); err != nil {
		return nil, fmt.Errorf("decoding cells: %w", err)
	}
	if cells == nil {
		cells = []string{}
	}
	return cells, nil
}
