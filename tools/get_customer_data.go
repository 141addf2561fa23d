package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"mcp-dynamics-go/internal/pipeline"
)

// Input: `context` (required) free-text intent about customer data.
// Output: JSON {"message": ..., "processedContext": ...}
// Errors carry an HTTP-style status prefix (400 for missing input, 500 for
// pipeline failures).
func GetCustomerData(p *pipeline.Pipeline) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		intent := req.GetString("context", "")

		resp, err := p.Run(ctx, intent)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		b, _ := json.MarshalIndent(resp, "", "  ")
		return mcp.NewToolResultText(string(b)), nil
	}
}
