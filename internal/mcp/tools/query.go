package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/formjson-mcp/pkg/jsonvalue"
	"github.com/usestring/formjson-mcp/pkg/types"
)

// QueryPathInput is the input for formjson_query.
type QueryPathInput struct {
	JSON string `json:"json" jsonschema:"required,JSON document to query"`
	Path string `json:"path,omitempty" jsonschema:"JSONPath expression (default: $.). A trailing dot returns a single match as a value"`
}

// ToolQueryPath evaluates a JSONPath expression against an inline document
// the way a widget would, including the single-match collapse rule.
func ToolQueryPath(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryPathInput) (*sdkmcp.CallToolResult, types.PathQueryResponse, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryPathInput) (*sdkmcp.CallToolResult, types.PathQueryResponse, error) {
		doc, err := jsonvalue.Parse([]byte(input.JSON))
		if err != nil {
			return nil, types.PathQueryResponse{}, ErrInvalidInput(err.Error())
		}

		x, err := d.Paths.Extract(doc, input.Path)
		if err != nil {
			return nil, types.PathQueryResponse{}, ErrInvalidInput(fmt.Sprintf("path %q: %v", input.Path, err))
		}

		out := types.PathQueryResponse{
			Path:      x.Path,
			Count:     len(x.Values),
			Collapsed: x.Collapsed,
			Defined:   x.Defined,
			Value:     jsonvalue.ToAny(x.Value()),
		}
		for _, v := range x.Values {
			out.Values = append(out.Values, jsonvalue.ToAny(v))
		}
		return nil, out, nil
	}
}
