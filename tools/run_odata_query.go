package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"mcp-dynamics-go/distill"
	"mcp-dynamics-go/internal/pipeline"
)

// Input: `query_path` (required) relative OData path after /data/, e.g.
// "CustomersV3?$top=5".
// Output: heuristic distillation of the response. No LLM involvement.
func RunODataQuery(fetcher pipeline.Fetcher) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("query_path")
		if err != nil {
			return mcp.NewToolResultError("'query_path' is required"), nil
		}

		res, err := fetcher.Fetch(ctx, path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("OData error: %v", err)), nil
		}

		text, err := (distill.Heuristic{}).Distill(ctx, res)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("processing error: %v", err)), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}
