// Package models defines the domain types for Ansuz.
package models

import (
	"path"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/frontmatter"
)

// Document represents a decoded Markdown file under the docs root.
type Document struct {
	Path     string               `json:"path"`
	Metadata frontmatter.Metadata `json:"-"`
	Body     string               `json:"body"`
	Checksum string               `json:"checksum"`
}

// DocMeta is a lightweight representation returned by list operations.
type DocMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocInfo is one row of the generated documentation index: the fields
// read from frontmatter with defaults applied for anything missing.
type DocInfo struct {
	Path    string   `json:"path"`
	Section string   `json:"section"`
	Title   string   `json:"title"`
	Status  string   `json:"status"`
	Updated string   `json:"updated"`
	Version string   `json:"version"`
	Tags    []string `json:"tags"`
}

// Index field defaults.
const (
	DefaultStatus  = "draft"
	DefaultUpdated = "n/a"
)

// NewDocInfo builds a DocInfo from a document's path and metadata,
// applying the index defaults: title falls back to a name derived from
// the file name, status to "draft", updated to "n/a", version to empty,
// tags to an empty list. Section is the first path segment, or empty
// for files directly under the root.
func NewDocInfo(relPath string, meta frontmatter.Metadata) DocInfo {
	info := DocInfo{
		Path:    relPath,
		Status:  DefaultStatus,
		Updated: DefaultUpdated,
		Tags:    []string{},
	}

	if i := strings.IndexByte(relPath, '/'); i >= 0 {
		info.Section = relPath[:i]
	}

	if s, ok := meta.Get("title").AsString(); ok && s != "" {
		info.Title = s
	} else {
		info.Title = TitleFromFilename(relPath)
	}
	if s, ok := meta.Get("status").AsString(); ok && s != "" {
		info.Status = s
	}
	if s, ok := meta.Get("updated").AsString(); ok && s != "" {
		info.Updated = s
	}
	if s, ok := meta.Get("version").AsString(); ok {
		info.Version = s
	}
	if l, ok := meta.Get("tags").AsList(); ok {
		info.Tags = l
	}

	return info
}

// TitleFromFilename derives a human-readable title from a file name:
// "api/error-codes.md" becomes "Error Codes".
func TitleFromFilename(relPath string) string {
	name := strings.TrimSuffix(path.Base(relPath), ".md")
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
