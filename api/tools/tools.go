// Package tools declares the search and fetch tools and serves them over MCP.
package tools

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/meghashyamc/awquery/logger"
	"github.com/meghashyamc/awquery/services/search"
)

// Version is set at build time via ldflags.
var Version = "dev"

const defaultInstructions = "Search and fetch ActivityWatch window events."

// Service is what the tools need from the query adapter.
type Service interface {
	Search(ctx context.Context, query string, limit int, cursor string) (*search.Response, error)
	Fetch(ctx context.Context, id string) (*search.FetchResult, error)
}

// Validator checks decoded tool arguments.
type Validator interface {
	Validate(i any) error
}

// NewMCPServer builds the MCP server with both tools registered. With debug set, every
// tool call's arguments and result are logged.
func NewMCPServer(name string, logger logger.Logger, service Service, validator Validator, debug bool) *server.MCPServer {
	s := server.NewMCPServer(
		name,
		Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(defaultInstructions),
	)

	searchTool := NewSearchTool(logger, service, validator)
	fetchTool := NewFetchTool(logger, service)

	s.AddTool(searchTool.Definition(), withCallLogging(logger, debug, searchTool.Handle))
	s.AddTool(fetchTool.Definition(), withCallLogging(logger, debug, fetchTool.Handle))

	return s
}

func withCallLogging(logger logger.Logger, debug bool, handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	if !debug {
		return handler
	}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		requestID := uuid.NewString()
		logger.Debug("tool call", "request_id", requestID, "tool", request.Params.Name, "arguments", request.GetArguments())

		result, err := handler(ctx, request)
		if err != nil {
			logger.Debug("tool call failed", "request_id", requestID, "tool", request.Params.Name, "err", err.Error())
			return result, err
		}

		output, marshalErr := json.Marshal(result)
		if marshalErr != nil {
			logger.Warn("could not encode tool result for logging", "request_id", requestID, "err", marshalErr.Error())
			return result, nil
		}
		logger.Debug("tool result", "request_id", requestID, "tool", request.Params.Name, "result", string(output))

		return result, nil
	}
}

// structuredResult carries value both as JSON text content and as structured content.
func structuredResult(value any, content ...mcp.Content) (*mcp.CallToolResult, error) {
	if len(content) == 0 {
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		content = []mcp.Content{mcp.NewTextContent(string(encoded))}
	}

	return &mcp.CallToolResult{
		Content:           content,
		StructuredContent: value,
	}, nil
}
