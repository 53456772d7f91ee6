// ABOUTME: MCP tool handler implementations for the nyaya server
// ABOUTME: User faults become tool errors; infrastructure faults propagate
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/arjun/nyaya/internal/core"
	"github.com/arjun/nyaya/internal/index"
	"github.com/arjun/nyaya/internal/models"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	service *core.Service
}

// LegalQuery handles the legal_query tool
func (h *Handlers) LegalQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question argument is required and must be a string"), nil
	}

	filter := index.Filter{Domain: request.GetString("domain", "")}
	if originStr := request.GetString("origin", ""); originStr != "" {
		origin, ok := models.ParseOrigin(originStr)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid origin %q", originStr)), nil
		}
		filter.Origins = []models.Origin{origin}
	}

	answer, err := h.service.Query(ctx, question, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}

	return jsonResult(answer)
}

// AnalyzeDocument handles the analyze_document tool
func (h *Handlers) AnalyzeDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}

	report, err := h.service.AnalyzeDocument(ctx, text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	return jsonResult(report)
}

// IngestDocument handles the ingest_document tool
func (h *Handlers) IngestDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title argument is required and must be a string"), nil
	}
	originStr := request.GetString("origin", "")
	origin, ok := models.ParseOrigin(originStr)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("invalid origin %q", originStr)), nil
	}

	sourceID := request.GetString("source_id", "")
	if sourceID == "" {
		sourceID = fmt.Sprintf("doc_%s", uuid.New().String()[:8])
	}

	doc := models.SourceDocument{
		ID:         sourceID,
		Origin:     origin,
		Title:      title,
		FullText:   text,
		IngestedAt: time.Now().UTC(),
	}

	var version int64
	var updated bool
	if request.GetBool("reference", false) {
		issueKind := request.GetString("issue_kind", "")
		if issueKind == "" {
			return mcp.NewToolResultError("issue_kind is required for reference ingestion"), nil
		}
		severity := models.ParseSeverity(request.GetString("severity", "medium"))
		version, updated, err = h.service.IngestReference(ctx, doc, issueKind, severity)
	} else {
		version, updated, err = h.service.IngestSource(ctx, doc)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ingestion failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"source_id":     sourceID,
		"index_version": version,
		"updated":       updated,
	})
}

// RefreshSource handles the refresh_source tool
func (h *Handlers) RefreshSource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceID, err := request.RequireString("source_id")
	if err != nil {
		return mcp.NewToolResultError("source_id argument is required and must be a string"), nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}

	info, err := h.service.Source(sourceID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("looking up source: %v", err)), nil
	}
	if info == nil {
		return mcp.NewToolResultError(fmt.Sprintf("unknown source %q; ingest it first", sourceID)), nil
	}

	version, updated, err := h.service.IngestSource(ctx, models.SourceDocument{
		ID:         info.ID,
		Origin:     info.Origin,
		Title:      info.Title,
		FullText:   text,
		IngestedAt: time.Now().UTC(),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("refresh failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"source_id":     sourceID,
		"index_version": version,
		"updated":       updated,
	})
}

// ListSources handles the list_sources tool
func (h *Handlers) ListSources(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sources, err := h.service.Sources()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing sources: %v", err)), nil
	}
	version, err := h.service.Version()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading index version: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"index_version": version,
		"sources":       sources,
	})
}

// jsonResult marshals a payload into a text tool result
func jsonResult(payload interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
