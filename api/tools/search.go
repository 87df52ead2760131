package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meghashyamc/awquery/logger"
	"github.com/meghashyamc/awquery/services/search"
)

type SearchTool struct {
	logger    logger.Logger
	service   Service
	validator Validator
}

func NewSearchTool(logger logger.Logger, service Service, validator Validator) *SearchTool {
	return &SearchTool{logger: logger, service: service, validator: validator}
}

func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("search",
		mcp.WithDescription("Search window events by title using ActivityWatch."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Case-insensitive text to look for in window titles"),
		),
		mcp.WithNumber("limit",
			mcp.DefaultNumber(search.DefaultLimit),
			mcp.Min(1),
			mcp.Description("Maximum number of results to return"),
		),
		mcp.WithString("cursor",
			mcp.Description("next_cursor from a previous search, to get the following page"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func (t *SearchTool) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		t.logger.Warn("search called without a query", "err", err.Error())
		return mcp.NewToolResultError(fmt.Sprintf("Search failed: %s", err)), nil
	}

	searchRequest := search.Request{
		Query:  query,
		Limit:  request.GetInt("limit", search.DefaultLimit),
		Cursor: request.GetString("cursor", ""),
	}
	if err := t.validator.Validate(searchRequest); err != nil {
		t.logger.Warn("could not validate search arguments", "err", err.Error())
		return mcp.NewToolResultError(fmt.Sprintf("Search failed: %s", err)), nil
	}

	response, err := t.service.Search(ctx, searchRequest.Query, searchRequest.Limit, searchRequest.Cursor)
	if err != nil {
		t.logger.Error("search failed", "err", err.Error())
		return mcp.NewToolResultError(fmt.Sprintf("Search failed: %s", err)), nil
	}

	result, err := structuredResult(response)
	if err != nil {
		t.logger.Error("could not encode search response", "err", err.Error())
		return mcp.NewToolResultError(fmt.Sprintf("Search failed: %s", err)), nil
	}

	return result, nil
}
