package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/formjson-mcp/internal/schema"
	"github.com/usestring/formjson-mcp/internal/widgetfile"
	"github.com/usestring/formjson-mcp/pkg/types"
)

// ValidateConfigInput is the input for formjson_validate_config.
type ValidateConfigInput struct {
	Config        string `json:"config" jsonschema:"required,Widget configuration document"`
	Format        string `json:"format,omitempty" jsonschema:"Document format: json or toml or yaml (default: json). JSON may contain comments"`
	IncludeSchema bool   `json:"include_schema,omitempty" jsonschema:"Return the configuration JSON Schema (default: false)"`
}

// ToolValidateConfig validates a widget configuration document.
func ToolValidateConfig(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateConfigInput) (*sdkmcp.CallToolResult, types.ConfigValidationResponse, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateConfigInput) (*sdkmcp.CallToolResult, types.ConfigValidationResponse, error) {
		format, err := widgetfile.ParseFormat(input.Format)
		if err != nil {
			return nil, types.ConfigValidationResponse{}, ErrInvalidInput(err.Error())
		}

		result, err := widgetfile.Validate([]byte(input.Config), format)
		if err != nil {
			return nil, types.ConfigValidationResponse{}, ErrInvalidInput(err.Error())
		}

		out := types.ConfigValidationResponse{
			Valid:  result.Valid,
			Format: string(format),
			Errors: result.Errors,
		}
		if input.IncludeSchema {
			v, err := schema.WidgetConfig()
			if err != nil {
				return nil, types.ConfigValidationResponse{}, WrapWidgetError(err)
			}
			s, err := v.Schema()
			if err != nil {
				return nil, types.ConfigValidationResponse{}, WrapWidgetError(err)
			}
			out.Schema = s
		}
		return nil, out, nil
	}
}
