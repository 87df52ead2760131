package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meghashyamc/awquery/logger"
	"github.com/meghashyamc/awquery/services/search"
)

type FetchTool struct {
	logger  logger.Logger
	service Service
}

func NewFetchTool(logger logger.Logger, service Service) *FetchTool {
	return &FetchTool{logger: logger, service: service}
}

func (t *FetchTool) Definition() mcp.Tool {
	return mcp.NewTool("fetch",
		mcp.WithDescription("Fetch full event JSON for a search result."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("id of a search result, in the form <bucket_id>:<timestamp>"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func (t *FetchTool) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		t.logger.Warn("fetch called without an id", "err", err.Error())
		return mcp.NewToolResultError("Invalid id"), nil
	}

	fetched, err := t.service.Fetch(ctx, id)
	switch {
	case errors.Is(err, search.ErrInvalidID):
		return mcp.NewToolResultError("Invalid id"), nil
	case errors.Is(err, search.ErrNotFound):
		return mcp.NewToolResultError("Event not found"), nil
	case err != nil:
		return mcp.NewToolResultError(fmt.Sprintf("Fetch failed: %s", err)), nil
	}

	content := make([]mcp.Content, 0, len(fetched.Content))
	for _, block := range fetched.Content {
		content = append(content, mcp.NewTextContent(block.Text))
	}

	result, err := structuredResult(fetched, content...)
	if err != nil {
		t.logger.Error("could not encode fetch result", "err", err.Error())
		return mcp.NewToolResultError(fmt.Sprintf("Fetch failed: %s", err)), nil
	}

	return result, nil
}
