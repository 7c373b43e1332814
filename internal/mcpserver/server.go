// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Ansuz tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/docservice"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/touch"
)

// Server wraps the MCP server with Ansuz tools.
type Server struct {
	mcp       *server.MCPServer
	svc       *docservice.Service
	store     storage.Provider
	db        *index.DB
	docsRoot  string
	indexPath string
	logger    *slog.Logger
}

// New creates a new MCP server with all Ansuz tools registered.
func New(svc *docservice.Service, store storage.Provider, db *index.DB, docsRoot, indexPath string, logger *slog.Logger) *Server {
	s := &Server{
		svc:       svc,
		store:     store,
		db:        db,
		docsRoot:  docsRoot,
		indexPath: indexPath,
		logger:    logger,
	}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_docs",
		mcp.WithDescription("List all documents with their frontmatter metadata (title, status, updated, tags)."),
		mcp.WithString("section", mcp.Description("Optional section filter (api, system, workflows, templates)")),
	), s.listDocs)

	s.mcp.AddTool(mcp.NewTool("read_doc",
		mcp.WithDescription("Read the full content of a Markdown document, frontmatter included."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document (e.g. api/auth.md)")),
	), s.readDoc)

	s.mcp.AddTool(mcp.NewTool("search_docs",
		mcp.WithDescription("Search document titles, bodies and tags in the metadata cache."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDocs)

	s.mcp.AddTool(mcp.NewTool("summarize_doc",
		mcp.WithDescription("Generate an LLM summary of a document. Writes a sibling "+
			"<name>.summary.md file carrying the source document's frontmatter plus "+
			"generated/source markers, and returns its path."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document to summarize")),
	), s.summarizeDoc)

	s.mcp.AddTool(mcp.NewTool("generate_index",
		mcp.WithDescription("Rescan the docs tree and regenerate the auto index document "+
			"grouped by section. Returns the rendered Markdown."),
	), s.generateIndex)

	s.mcp.AddTool(mcp.NewTool("touch_docs",
		mcp.WithDescription("Set the `updated` frontmatter field of the given documents to "+
			"today's date. Files without frontmatter get a block containing only `updated`; "+
			"non-Markdown paths are skipped."),
		mcp.WithString("paths", mcp.Required(), mcp.Description("Newline- or comma-separated relative paths")),
	), s.touchDocs)

	s.mcp.AddTool(mcp.NewTool("get_doc_contract",
		mcp.WithDescription("Returns the canonical Ansuz document format contract. "+
			"Call this before creating documents to ensure correct frontmatter structure."),
	), s.getDocContract)

	// Resource: document format contract.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://doc-format", "Document Format Contract",
			mcp.WithResourceDescription("Canonical Markdown document format for the docs tree."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDocFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listDocs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	section := ""
	if v, err := req.RequireString("section"); err == nil {
		section = v
	}

	docs, err := s.svc.ListDocs()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if section != "" {
		filtered := docs[:0]
		for _, d := range docs {
			if d.Section == section {
				filtered = append(filtered, d)
			}
		}
		docs = filtered
	}
	out, _ := json.MarshalIndent(docs, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDoc(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) searchDocs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) summarizeDoc(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.svc.SummarizeDoc(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("summary written: %s", out)), nil
}

func (s *Server) generateIndex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := index.Sync(s.db, s.store, s.indexPath, s.logger); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := s.svc.RegenerateIndex()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) touchDocs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("paths")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rels := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == ','
	})

	var abs []string
	for _, rel := range rels {
		rel = strings.TrimSpace(rel)
		if rel == "" {
			continue
		}
		abs = append(abs, filepath.Join(s.docsRoot, filepath.FromSlash(rel)))
	}
	if len(abs) == 0 {
		return mcp.NewToolResultError("paths is empty"), nil
	}

	today := time.Now().Format("2006-01-02")
	results, err := touch.Files(abs, today)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	for i, res := range results {
		rel, relErr := filepath.Rel(s.docsRoot, res.Path)
		if relErr != nil {
			rel = res.Path
		}
		switch {
		case res.Skipped:
			fmt.Fprintf(&b, "skipped: %s", filepath.ToSlash(rel))
		case res.Changed:
			fmt.Fprintf(&b, "updated: %s", filepath.ToSlash(rel))
		default:
			fmt.Fprintf(&b, "unchanged: %s", filepath.ToSlash(rel))
		}
		if i < len(results)-1 {
			b.WriteByte('\n')
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) getDocContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocFormatContract), nil
}

func (s *Server) readDocFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://doc-format",
			MIMEType: "text/markdown",
			Text:     DocFormatContract,
		},
	}, nil
}
