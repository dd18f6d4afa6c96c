// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Ansuz file tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/fuzzy"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/inventory"
)

// Server wraps the MCP server with Ansuz tools.
type Server struct {
	mcp      *server.MCPServer
	store    inventory.Provider
	db       *index.DB
	resolver *fuzzy.Resolver
}

// New creates a new MCP server with all Ansuz tools registered.
func New(store inventory.Provider, db *index.DB, resolver *fuzzy.Resolver) *Server {
	if resolver == nil {
		resolver = fuzzy.NewResolver(nil, nil)
	}
	s := &Server{store: store, db: db, resolver: resolver}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_files",
		mcp.WithDescription("List all downloadable files known to the inventory."),
	), s.listFiles)

	s.mcp.AddTool(mcp.NewTool("search_files",
		mcp.WithDescription("Search the file index by path, stem, or name."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchFiles)

	s.mcp.AddTool(mcp.NewTool("resolve_file",
		mcp.WithDescription("Resolve a cited filename to a real inventory path by "+
			"fuzzy stem matching. Use this to turn a filename mentioned in a "+
			"reply into a working /files/ download path. Citations MUST follow "+
			"the format described by the get_citation_contract tool or the "+
			"ansuz://citation-format resource."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Filename to resolve (e.g. report.pdf)")),
	), s.resolveFile)

	s.mcp.AddTool(mcp.NewTool("get_citation_contract",
		mcp.WithDescription("Returns the canonical Ansuz citation format contract. "+
			"Call this before emitting file references in replies."),
	), s.getCitationContract)

	// Resource: citation format contract.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://citation-format", "Citation Format Contract",
			mcp.WithResourceDescription("Canonical file citation format that replies should follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readCitationFormatResource,
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

func (s *Server) listFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records := s.store.Scan()
	if len(records) == 0 {
		return mcp.NewToolResultText("no files available"), nil
	}
	var paths []string
	for _, rec := range records {
		paths = append(paths, rec.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) searchFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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

func (s *Server) resolveFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	match, ok := s.resolver.Resolve(name, s.store.Scan())
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no match for: %s", name)), nil
	}
	out, _ := json.Marshal(map[string]any{
		"path":  match.Path,
		"url":   "/files/" + match.Path,
		"score": match.Score,
	})
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getCitationContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(CitationFormatContract), nil
}

func (s *Server) readCitationFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://citation-format",
			MIMEType: "text/markdown",
			Text:     CitationFormatContract,
		},
	}, nil
}
