package index

import (
	"log/slog"
	"time"

	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/inventory"
)

// Sync walks the files root and brings the index up to date:
//   - new/changed files are checksummed and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store inventory.Provider, logger *slog.Logger) error {
	return syncOnce(db, store, logger, nil)
}

func syncOnce(db *DB, store inventory.Provider, logger *slog.Logger, cb EventCallback) error {
	recs := store.Scan()

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		disk[r.Path] = struct{}{}

		data, err := store.Read(r.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", r.Path), slog.String("error", err.Error()))
			continue
		}
		cs := checksum.Sum(data)
		if checksums[r.Path] == cs {
			continue
		}

		kind := "updated"
		if _, ok := checksums[r.Path]; !ok {
			kind = "created"
		}
		if err := db.UpsertFile(FileRow{
			Path:      r.Path,
			Stem:      r.Stem,
			Name:      r.Name,
			Checksum:  cs,
			UpdatedAt: time.Now(),
		}); err != nil {
			logger.Warn("sync: index failed", slog.String("path", r.Path), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: indexed", slog.String("path", r.Path))
		if cb != nil {
			cb(kind, r.Path)
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteFile(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
				continue
			}
			logger.Debug("sync: removed stale", slog.String("path", p))
			if cb != nil {
				cb("deleted", p)
			}
		}
	}

	return nil
}
