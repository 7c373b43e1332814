package summarize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/ansuz/internal/frontmatter"
	"github.com/starford/ansuz/internal/storage"
)

// DefaultSuffix replaces the .md extension of the source file to form
// the summary file name.
const DefaultSuffix = ".summary.md"

// SummaryPath returns the sibling path the summary is written to:
// the input path with its extension replaced by suffix.
func SummaryPath(inputPath, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + suffix
}

// File summarizes a single Markdown file: it decodes the document,
// sends the body to the model, and writes a summary document next to
// the input carrying the original metadata plus generated/source/type
// fields. Nothing is written unless the API call succeeded.
// Returns the path of the written summary.
func (s *Summarizer) File(ctx context.Context, inputPath, suffix string) (string, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return "", fmt.Errorf("summarize: read input: %w", err)
	}

	meta, body := frontmatter.Decode(string(data))

	summary, err := s.Summarize(ctx, body)
	if err != nil {
		return "", err
	}

	out := BuildSummaryDoc(meta, summary, filepath.Base(inputPath))
	outPath := SummaryPath(inputPath, suffix)
	if err := storage.WriteFileAtomic(outPath, []byte(out)); err != nil {
		return "", fmt.Errorf("summarize: write summary: %w", err)
	}
	return outPath, nil
}

// BuildSummaryDoc assembles the summary document text: a copy of the
// source metadata with generated=true, source=<file name>, and
// type=summary appended (or overwritten in place), followed by the
// summary body.
func BuildSummaryDoc(meta frontmatter.Metadata, summary, sourceName string) string {
	out := meta.Clone()
	out.Set("generated", frontmatter.Bool(true))
	out.Set("source", frontmatter.String(sourceName))
	out.Set("type", frontmatter.String("summary"))
	return frontmatter.Encode(out, strings.TrimSpace(summary)+"\n")
}
