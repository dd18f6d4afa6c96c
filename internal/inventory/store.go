// Package inventory provides read-only access to the downloadable files
// directory: a recursive scan producing match records for link resolution,
// and traversal-safe path resolution for the download endpoint.
package inventory

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/ansuz/internal/models"
)

// Provider is the interface for file inventory operations.
type Provider interface {
	// Scan walks the files root and returns a record per regular file.
	// A missing or empty root yields nil (no match possible), never an error.
	Scan() []models.FileRecord
	// Resolve maps a root-relative path to an absolute path, rejecting
	// anything that escapes the root.
	Resolve(rel string) (string, error)
	// Read returns the raw bytes of the file at the root-relative path.
	Read(rel string) ([]byte, error)
	// Root returns the absolute path of the files root.
	Root() string
}

// Store implements Provider backed by the local file system.
type Store struct {
	root   string // absolute path to the files directory
	logger *slog.Logger
}

// New creates a Store rooted at the given directory. The directory does not
// have to exist yet; a missing root simply produces empty scans.
func New(root string, logger *slog.Logger) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("inventory: resolve root: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{root: abs, logger: logger}, nil
}

// Root returns the absolute path of the files root.
func (s *Store) Root() string {
	return s.root
}

// Scan walks the files root recursively and returns a FileRecord for every
// regular file. Symbolic links are not followed. Any walk failure is logged
// and degrades to a nil inventory; Scan never fails the caller.
func (s *Store) Scan() []models.FileRecord {
	info, err := os.Stat(s.root)
	if err != nil || !info.IsDir() {
		s.logger.Warn("inventory: files root missing", slog.String("root", s.root))
		return nil
	}

	var out []models.FileRecord
	err = filepath.WalkDir(s.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, relErr := filepath.Rel(s.root, p)
		if relErr != nil {
			return relErr
		}
		name := d.Name()
		out = append(out, models.FileRecord{
			Path: filepath.ToSlash(rel),
			Stem: strings.TrimSuffix(name, filepath.Ext(name)),
			Name: name,
		})
		return nil
	})
	if err != nil {
		s.logger.Warn("inventory: scan failed", slog.String("root", s.root), slog.String("error", err.Error()))
		return nil
	}
	if len(out) == 0 {
		s.logger.Info("inventory: no files found", slog.String("root", s.root))
		return nil
	}
	return out
}

// Resolve maps a root-relative path to an absolute path under the root and
// rejects any result that escapes it (directory traversal).
func (s *Store) Resolve(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("inventory: empty path")
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("inventory: absolute paths not allowed: %s", rel)
	}
	abs, err := filepath.Abs(filepath.Join(s.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("inventory: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, s.root+string(os.PathSeparator)) && abs != s.root {
		return "", fmt.Errorf("inventory: path escapes files root: %s", rel)
	}
	return abs, nil
}

// Read returns the raw bytes of the file at the root-relative path.
func (s *Store) Read(rel string) ([]byte, error) {
	abs, err := s.Resolve(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("inventory: read %s: %w", rel, err)
	}
	return data, nil
}
