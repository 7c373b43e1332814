package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/ansuz/internal/models"
)

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// UpsertDoc inserts or replaces a document's cached metadata row.
func (db *DB) UpsertDoc(info models.DocInfo, checksum, body string) error {
	tagsJSON, _ := json.Marshal(info.Tags)

	_, err := db.conn.Exec(`
		INSERT INTO docs (path, section, title, status, updated, version, tags, checksum, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			section  = excluded.section,
			title    = excluded.title,
			status   = excluded.status,
			updated  = excluded.updated,
			version  = excluded.version,
			tags     = excluded.tags,
			checksum = excluded.checksum,
			body     = excluded.body
	`, info.Path, info.Section, info.Title, info.Status, info.Updated,
		info.Version, string(tagsJSON), checksum, body)
	if err != nil {
		return fmt.Errorf("index: upsert doc: %w", err)
	}
	return nil
}

// DeleteDoc removes a document from the cache.
func (db *DB) DeleteDoc(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM docs WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete doc: %w", err)
	}
	return nil
}

// GetDoc returns the cached row for path, or nil if not cached.
func (db *DB) GetDoc(path string) (*models.DocInfo, error) {
	row := db.conn.QueryRow(`
		SELECT path, section, title, status, updated, version, tags
		FROM docs WHERE path = ?
	`, path)
	info, err := scanDocInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get doc: %w", err)
	}
	return info, nil
}

// ListDocs returns every cached row ordered by path.
func (db *DB) ListDocs() ([]models.DocInfo, error) {
	rows, err := db.conn.Query(`
		SELECT path, section, title, status, updated, version, tags
		FROM docs ORDER BY path
	`)
	if err != nil {
		return nil, fmt.Errorf("index: list docs: %w", err)
	}
	defer rows.Close()

	var out []models.DocInfo
	for rows.Next() {
		info, err := scanDocInfo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *info)
	}
	return out, rows.Err()
}

// AllChecksums returns a path → checksum map for every cached row.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM docs`)
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

// Search performs a LIKE-based search over title, body, and tags.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT path, title, substr(body, 1, 200)
		FROM docs
		WHERE title LIKE ? OR body LIKE ? OR tags LIKE ?
		ORDER BY path
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocInfo(s scanner) (*models.DocInfo, error) {
	var info models.DocInfo
	var tagsJSON string
	if err := s.Scan(&info.Path, &info.Section, &info.Title, &info.Status,
		&info.Updated, &info.Version, &tagsJSON); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &info.Tags); err != nil {
		info.Tags = []string{}
	}
	if info.Tags == nil {
		info.Tags = []string{}
	}
	return &info, nil
}
