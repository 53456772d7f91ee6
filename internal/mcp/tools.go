// ABOUTME: MCP tool definitions and registration for the nyaya server
// ABOUTME: Exposes the retrieval core as 5 tools over the MCP protocol
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/arjun/nyaya/internal/core"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, service *core.Service) *Handlers {
	handlers := &Handlers{service: service}

	// 1. legal_query - answer a legal question from the indexed corpus
	server.AddTool(mcp.Tool{
		Name:        "legal_query",
		Description: "Answer a legal question using retrieved passages from the indexed Indian legal corpus. Returns the answer with citations and a grounded flag.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "The legal question to answer",
				},
				"origin": map[string]interface{}{
					"type":        "string",
					"description": "Optional origin filter: statute, judgment, notice, or user-upload",
				},
				"domain": map[string]interface{}{
					"type":        "string",
					"description": "Optional legal domain filter: constitutional, criminal, civil, family, corporate, or general",
				},
			},
			Required: []string{"question"},
		},
	}, handlers.LegalQuery)

	// 2. analyze_document - score a document's clauses for validity/risk
	server.AddTool(mcp.Tool{
		Name:        "analyze_document",
		Description: "Analyze a legal document's clauses for validity and risk against known clause patterns. Returns structured findings ordered by severity.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Full text of the document to analyze",
				},
			},
			Required: []string{"text"},
		},
	}, handlers.AnalyzeDocument)

	// 3. ingest_document - add or update a document in the corpus
	server.AddTool(mcp.Tool{
		Name:        "ingest_document",
		Description: "Ingest a document into the legal corpus (or the reference clause-pattern index when reference is true). Re-ingesting unchanged content is a no-op.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Full document text",
				},
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Document title for citations",
				},
				"origin": map[string]interface{}{
					"type":        "string",
					"description": "Document origin: statute, judgment, notice, or user-upload",
				},
				"source_id": map[string]interface{}{
					"type":        "string",
					"description": "Stable source identifier; generated when omitted",
				},
				"reference": map[string]interface{}{
					"type":        "boolean",
					"description": "Ingest into the reference clause-pattern index instead of the corpus",
				},
				"issue_kind": map[string]interface{}{
					"type":        "string",
					"description": "Issue kind tag for reference ingestion (e.g. 'unconscionable penalty clause')",
				},
				"severity": map[string]interface{}{
					"type":        "string",
					"description": "Severity tag for reference ingestion: critical, high, medium, low, or info",
				},
			},
			Required: []string{"text", "title", "origin"},
		},
	}, handlers.IngestDocument)

	// 4. refresh_source - re-ingest a known source with new content
	server.AddTool(mcp.Tool{
		Name:        "refresh_source",
		Description: "Refresh a known corpus source with new content. No-op when the content hash is unchanged; otherwise the source is atomically re-indexed.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"source_id": map[string]interface{}{
					"type":        "string",
					"description": "Identifier of the source to refresh",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Current full text of the source",
				},
			},
			Required: []string{"source_id", "text"},
		},
	}, handlers.RefreshSource)

	// 5. list_sources - list indexed corpus sources
	server.AddTool(mcp.Tool{
		Name:        "list_sources",
		Description: "List all indexed corpus sources with their versions, chunk counts, and ingestion times.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ListSources)

	return handlers
}
