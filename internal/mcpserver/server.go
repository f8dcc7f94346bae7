// Package mcpserver exposes the digest service as MCP tools over stdio.
package mcpserver

import (
	"context"
	"log/slog"

	"github.com/dgallion1/paperdigest/internal/digest"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	Name    = "paperdigest"
	Version = "v0.1.0"
)

func CreateServer(svc *digest.Service, log *slog.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: Name, Version: Version}, nil)

	mcp.AddTool(server, SummarizeTool(), func(ctx context.Context, req *mcp.CallToolRequest, query DocumentQuery) (*mcp.CallToolResult, *SummarizeResponse, error) {
		return SummarizeToolHandler(ctx, req, query, svc, log)
	})

	mcp.AddTool(server, ExtractTool(), func(ctx context.Context, req *mcp.CallToolRequest, query DocumentQuery) (*mcp.CallToolResult, *ExtractResponse, error) {
		return ExtractToolHandler(ctx, req, query, svc, log)
	})

	mcp.AddTool(server, ChunksTool(), func(ctx context.Context, req *mcp.CallToolRequest, query DocumentQuery) (*mcp.CallToolResult, *ChunksResponse, error) {
		return ChunksToolHandler(ctx, req, query, svc)
	})

	return server
}

// Run serves the tools on stdin/stdout until ctx is done or the client leaves.
func Run(ctx context.Context, svc *digest.Service, log *slog.Logger) error {
	log.Info("starting mcp server", "name", Name, "version", Version)
	return CreateServer(svc, log).Run(ctx, &mcp.StdioTransport{})
}
