// Package touch updates the `updated` frontmatter field of changed
// Markdown files, writing only when the value actually differs.
package touch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/ansuz/internal/frontmatter"
	"github.com/starford/ansuz/internal/storage"
)

// Result reports what happened to one file.
type Result struct {
	Path    string
	Skipped bool // not a Markdown file, or unreadable frontmatter shape
	Changed bool // the file was rewritten
}

// Files applies Update to each path and collects results. Non-Markdown
// paths are skipped silently; missing files are skipped as well, since
// the caller typically passes a change-set that may include deletions.
// The first I/O error writing a file aborts the run.
func Files(paths []string, today string) ([]Result, error) {
	results := make([]Result, 0, len(paths))
	for _, p := range paths {
		if !strings.EqualFold(filepath.Ext(p), ".md") {
			results = append(results, Result{Path: p, Skipped: true})
			continue
		}
		if _, err := os.Stat(p); err != nil {
			results = append(results, Result{Path: p, Skipped: true})
			continue
		}
		changed, err := Update(p, today)
		if err != nil {
			return results, err
		}
		results = append(results, Result{Path: p, Changed: changed})
	}
	return results, nil
}

// Update sets the `updated` field of the file's frontmatter to today,
// creating a block containing only `updated` when the file has none.
// The file is rewritten only if the value changed; a second run on the
// same day leaves it byte-identical. Returns whether a write occurred.
func Update(path, today string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("touch: read %s: %w", path, err)
	}
	text := string(data)

	meta, body := frontmatter.Decode(text)

	if !frontmatter.HasFrontmatter(text) {
		if strings.TrimSpace(firstLine(text)) == frontmatter.Marker {
			// The file opens with a marker but the block is dangling or
			// malformed. Prepending a fresh block would corrupt it
			// further, so leave the file alone.
			return false, nil
		}
		// No frontmatter at all: create a block holding only `updated`.
		meta = frontmatter.New()
		meta.Set("updated", frontmatter.String(today))
		out := frontmatter.Encode(meta, strings.TrimSpace(body)+"\n")
		if err := storage.WriteFileAtomic(path, []byte(out)); err != nil {
			return false, err
		}
		return true, nil
	}

	if cur, ok := meta.Get("updated").AsString(); ok && cur == today {
		return false, nil
	}

	meta.Set("updated", frontmatter.String(today))
	out := frontmatter.Encode(meta, body)
	if err := storage.WriteFileAtomic(path, []byte(out)); err != nil {
		return false, err
	}
	return true, nil
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}
