// Package storage defines the docs-root file-system abstraction.
package storage

import "github.com/starford/ansuz/internal/models"

// Provider is the interface for docs file operations.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to the docs root).
	List(dir string) ([]models.DocMeta, error)
	// Read returns the raw bytes of the file at path (relative to the docs root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the docs root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to the docs root).
	Delete(path string) error
	// Move renames oldPath to newPath (both relative to the docs root).
	Move(oldPath, newPath string) error
}
