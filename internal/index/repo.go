package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/ansuz/internal/apperr"
)

// FileRow represents a row in the files table.
type FileRow struct {
	Path      string
	Stem      string
	Name      string
	Checksum  string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// UpsertFile inserts or replaces a file row and its FTS entry within a
// transaction.
func (db *DB) UpsertFile(f FileRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO files (path, stem, name, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			stem       = excluded.stem,
			name       = excluded.name,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, f.Path, f.Stem, f.Name, f.Checksum, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert file: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, f.Path, f.Stem, f.Name); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteFile removes a file row and its FTS entry.
func (db *DB) DeleteFile(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM files WHERE path = ?`, path)

	return tx.Commit()
}

// GetFile returns the indexed row for a path, or apperr.ErrNotFound.
func (db *DB) GetFile(path string) (*FileRow, error) {
	var f FileRow
	err := db.conn.QueryRow(`
		SELECT path, stem, name, checksum, updated_at FROM files WHERE path = ?
	`, path).Scan(&f.Path, &f.Stem, &f.Name, &f.Checksum, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get file: %w", err)
	}
	return &f, nil
}

// ListFiles returns paginated file rows ordered by path, plus the total count.
func (db *DB) ListFiles(limit, offset int) ([]FileRow, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count files: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT path, stem, name, checksum, updated_at
		FROM files ORDER BY path LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list files: %w", err)
	}
	defer rows.Close()

	var out []FileRow
	for rows.Next() {
		var f FileRow
		if err := rows.Scan(&f.Path, &f.Stem, &f.Name, &f.Checksum, &f.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, f)
	}
	return out, total, rows.Err()
}

// AllChecksums returns path -> checksum for every indexed file.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM files`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
