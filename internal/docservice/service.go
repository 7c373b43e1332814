// Package docservice coordinates storage, the metadata cache, and the
// codec for the HTTP API and MCP layers.
package docservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/frontmatter"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/summarize"
)

// Service exposes document operations over a docs root.
type Service struct {
	store      storage.Provider
	db         *index.DB
	summarizer *summarize.Summarizer // nil when no API key is configured
	docsRoot   string                // absolute path, for summary siblings
	indexPath  string                // root-relative path of the generated index
	sections   map[string]string
	now        func() time.Time
}

// New creates a Service. summarizer may be nil; summarize operations
// then fail with a configuration error instead of an API error.
func New(store storage.Provider, db *index.DB, summarizer *summarize.Summarizer, docsRoot, indexPath string, sections map[string]string) *Service {
	if sections == nil {
		sections = index.DefaultSectionNames
	}
	return &Service{
		store:      store,
		db:         db,
		summarizer: summarizer,
		docsRoot:   docsRoot,
		indexPath:  indexPath,
		sections:   sections,
		now:        time.Now,
	}
}

// DocDetail is the full response payload for a single document.
type DocDetail struct {
	models.DocInfo
	Content  string `json:"content"`
	Body     string `json:"body"`
	Checksum string `json:"checksum"`
}

// GetDoc reads and decodes one document.
func (s *Service) GetDoc(path string) (*DocDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, apperr.ErrNotFound)
		}
		return nil, err
	}

	meta, body := frontmatter.Decode(string(data))
	return &DocDetail{
		DocInfo:  models.NewDocInfo(path, meta),
		Content:  string(data),
		Body:     body,
		Checksum: checksum.Sum(data),
	}, nil
}

// ListDocs returns the cached rows for every document.
func (s *Service) ListDocs() ([]models.DocInfo, error) {
	docs, err := s.db.ListDocs()
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []models.DocInfo{}
	}
	return docs, nil
}

// Search delegates to the cache.
func (s *Service) Search(query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// RegenerateIndex renders the aggregate index document from the cache
// and writes it to its configured path under the docs root. Returns the
// rendered text. Callers are responsible for syncing the cache first.
func (s *Service) RegenerateIndex() (string, error) {
	text, err := s.db.Generate(s.sections, s.today())
	if err != nil {
		return "", err
	}
	if err := s.store.Write(s.indexPath, []byte(text)); err != nil {
		return "", err
	}
	return text, nil
}

// ReadIndex returns the generated index document, regenerating it first
// if it does not exist yet.
func (s *Service) ReadIndex() (string, error) {
	data, err := s.store.Read(s.indexPath)
	if err == nil {
		return string(data), nil
	}
	return s.RegenerateIndex()
}

// SummarizeDoc runs the summarizer for one root-relative document and
// returns the root-relative path of the written summary.
func (s *Service) SummarizeDoc(ctx context.Context, path string) (string, error) {
	if s.summarizer == nil {
		return "", errors.New("docservice: summarizer not configured (missing API key)")
	}
	if _, err := s.store.Read(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", path, apperr.ErrNotFound)
		}
		return "", err
	}

	abs := filepath.Join(s.docsRoot, filepath.FromSlash(path))
	outAbs, err := s.summarizer.File(ctx, abs, "")
	if err != nil {
		return "", err
	}
	rel, relErr := filepath.Rel(s.docsRoot, outAbs)
	if relErr != nil {
		return outAbs, nil
	}
	return filepath.ToSlash(rel), nil
}

func (s *Service) today() string {
	return s.now().Format("2006-01-02")
}
