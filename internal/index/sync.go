package index

import (
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/frontmatter"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/storage"
)

// syncParallelism bounds concurrent file decodes during Sync.
const syncParallelism = 4

// Sync walks the docs root and brings the cache up to date:
//   - new/changed files are decoded and upserted
//   - files removed from disk are deleted from the cache
//
// skip is the root-relative path of the generated index document, which
// is never cached. Decoding is pure, so changed files are processed in
// parallel; writes are serialized on the database.
func Sync(db *DB, store storage.Provider, skip string, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(syncParallelism)

	for _, m := range metas {
		if m.Path == skip {
			continue
		}
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		g.Go(func() error {
			data, readErr := store.Read(m.Path)
			if readErr != nil {
				logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", readErr.Error()))
				return nil
			}

			meta, body := frontmatter.Decode(string(data))
			info := models.NewDocInfo(m.Path, meta)

			mu.Lock()
			defer mu.Unlock()
			if upErr := db.UpsertDoc(info, m.Checksum, body); upErr != nil {
				logger.Warn("sync: cache failed", slog.String("path", m.Path), slog.String("error", upErr.Error()))
			} else {
				logger.Debug("sync: cached", slog.String("path", m.Path))
			}
			return nil
		})
	}
	_ = g.Wait()

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteDoc(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// SyncFile decodes a single file and upserts its cache row. Used by the
// watcher to avoid a full walk on every event.
func SyncFile(db *DB, path string, data []byte, checksum string) error {
	meta, body := frontmatter.Decode(string(data))
	return db.UpsertDoc(models.NewDocInfo(path, meta), checksum, body)
}
