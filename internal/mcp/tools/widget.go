package tools

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/formjson-mcp/internal/widgets"
	"github.com/usestring/formjson-mcp/pkg/types"
)

// WidgetRunInput is the input for formjson_run and formjson_fetch.
type WidgetRunInput struct {
	WidgetID string             `json:"widget_id" jsonschema:"required,Widget identifier. Calls with the same id share state"`
	PageURL  string             `json:"page_url,omitempty" jsonschema:"Form page URL carrying the mode and SPHostUrl and SPAppWebUrl parameters (default: server page URL)"`
	Config   types.WidgetConfig `json:"config" jsonschema:"required,Widget configuration"`
}

// WidgetSelectInput is the input for formjson_select.
type WidgetSelectInput struct {
	WidgetID string `json:"widget_id" jsonschema:"required,Widget identifier"`
	Value    string `json:"value" jsonschema:"required,Option text to select. Must be one of the options of the last run"`
}

// WidgetStateInput is the input for formjson_state.
type WidgetStateInput struct {
	WidgetID string `json:"widget_id" jsonschema:"required,Widget identifier"`
}

// ToolRun runs the Parse JSON control of a widget.
func ToolRun(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input WidgetRunInput) (*sdkmcp.CallToolResult, types.WidgetState, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input WidgetRunInput) (*sdkmcp.CallToolResult, types.WidgetState, error) {
		w, err := openWidget(d, input)
		if err != nil {
			return nil, types.WidgetState{}, err
		}

		mark := w.Events.Len()
		st := w.Pipeline.Run(ctx, input.Config)
		w.SetConfig(input.Config)

		return nil, WidgetStateOf(w, st, w.Events.Since(mark)), nil
	}
}

// ToolFetch runs the WebApi Request control of a widget.
func ToolFetch(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input WidgetRunInput) (*sdkmcp.CallToolResult, types.WidgetState, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input WidgetRunInput) (*sdkmcp.CallToolResult, types.WidgetState, error) {
		w, err := openWidget(d, input)
		if err != nil {
			return nil, types.WidgetState{}, err
		}

		mark := w.Events.Len()
		st := w.Pipeline.Fetch(ctx, input.Config)
		w.SetConfig(input.Config)

		return nil, WidgetStateOf(w, st, w.Events.Since(mark)), nil
	}
}

// ToolSelect selects a dropdown option of a widget.
func ToolSelect(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input WidgetSelectInput) (*sdkmcp.CallToolResult, types.WidgetState, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input WidgetSelectInput) (*sdkmcp.CallToolResult, types.WidgetState, error) {
		w, err := lookupWidget(d, input.WidgetID)
		if err != nil {
			return nil, types.WidgetState{}, err
		}

		mark := w.Events.Len()
		st, err := w.Pipeline.Select(input.Value)
		if err != nil {
			return nil, types.WidgetState{}, WrapWidgetError(err)
		}

		return nil, WidgetStateOf(w, st, w.Events.Since(mark)), nil
	}
}

// ToolState returns the current render of a widget.
func ToolState(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input WidgetStateInput) (*sdkmcp.CallToolResult, types.WidgetState, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input WidgetStateInput) (*sdkmcp.CallToolResult, types.WidgetState, error) {
		w, err := lookupWidget(d, input.WidgetID)
		if err != nil {
			return nil, types.WidgetState{}, err
		}

		out := WidgetStateOf(w, w.Pipeline.State(), nil)
		out.Config = w.Config()
		return nil, out, nil
	}
}

func openWidget(d *Deps, input WidgetRunInput) (*widgets.Widget, error) {
	id := strings.TrimSpace(input.WidgetID)
	if id == "" {
		return nil, ErrInvalidInput("widget_id is required")
	}
	w, err := d.Widgets.Open(id, strings.TrimSpace(input.PageURL))
	if err != nil {
		return nil, WrapWidgetError(err)
	}
	return w, nil
}

func lookupWidget(d *Deps, id string) (*widgets.Widget, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidInput("widget_id is required")
	}
	w, ok := d.Widgets.Get(id)
	if !ok {
		return nil, ErrNotFound("widget", id)
	}
	return w, nil
}
