package index

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/ansuz/internal/storage"
)

// watcherTestEnv sets up a docs dir, storage, and DB for watcher tests.
func watcherTestEnv(t *testing.T) (string, storage.Provider, *DB) {
	t.Helper()
	docsDir := t.TempDir()
	store, err := storage.NewFS(docsDir)
	if err != nil {
		t.Fatal(err)
	}
	dbFile, err := os.CreateTemp("", "ansuz-watcher-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })
	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return docsDir, store, db
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func cached(db *DB, path string) bool {
	info, _ := db.GetDoc(path)
	return info != nil
}

func TestWatcher_NewFileCached(t *testing.T) {
	docsDir, store, db := watcherTestEnv(t)
	logger := discardLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string
	var regens atomic.Int32

	go Watch(ctx, db, store, docsDir, "auto-index.md", logger, func(kind, path string) {
		mu.Lock()
		events = append(events, kind+":"+path)
		mu.Unlock()
	}, func() { regens.Add(1) })

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(docsDir, "new.md"), []byte("---\ntitle: New\n---\n\nbody"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return cached(db, "new.md")
	}, "new file not cached by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "created:new.md" {
				return true
			}
		}
		return false
	}, "expected created:new.md callback")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		return regens.Load() > 0
	}, "expected a debounced regeneration call")
}

func TestWatcher_SkipsGeneratedIndex(t *testing.T) {
	docsDir, store, db := watcherTestEnv(t)
	logger := discardLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, docsDir, "auto-index.md", logger, nil, nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(docsDir, "auto-index.md"), []byte("---\ntype: index\n---\n\n"), 0o644)
	_ = os.WriteFile(filepath.Join(docsDir, "real.md"), []byte("real"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return cached(db, "real.md")
	}, "real file not cached")

	if cached(db, "auto-index.md") {
		t.Error("generated index file must never be cached")
	}
}

func TestWatcher_NewDirWatched(t *testing.T) {
	docsDir, store, db := watcherTestEnv(t)
	logger := discardLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, docsDir, "auto-index.md", logger, nil, nil)
	time.Sleep(100 * time.Millisecond)

	subDir := filepath.Join(docsDir, "workflows")
	_ = os.MkdirAll(subDir, 0o755)
	time.Sleep(200 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(subDir, "deploy.md"), []byte("# Deploy"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return cached(db, "workflows/deploy.md")
	}, "file in new subdir not cached by watcher")
}

func TestWatcher_DeleteRemovesFromCache(t *testing.T) {
	docsDir, store, db := watcherTestEnv(t)
	logger := discardLogger()

	_ = os.WriteFile(filepath.Join(docsDir, "del.md"), []byte("# Delete Me"), 0o644)
	_ = Sync(db, store, "auto-index.md", logger)

	if !cached(db, "del.md") {
		t.Fatal("precondition: file should be cached")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, docsDir, "auto-index.md", logger, nil, nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(docsDir, "del.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return !cached(db, "del.md")
	}, "deleted file still cached")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	docsDir, store, db := watcherTestEnv(t)
	logger := discardLogger()

	_ = os.WriteFile(filepath.Join(docsDir, "old.md"), []byte("# Rename"), 0o644)
	_ = Sync(db, store, "auto-index.md", logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, docsDir, "auto-index.md", logger, nil, nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Rename(filepath.Join(docsDir, "old.md"), filepath.Join(docsDir, "renamed.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return !cached(db, "old.md") && cached(db, "renamed.md")
	}, "rename reconciliation failed: old path should be removed and new path cached")
}
