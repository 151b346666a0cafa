// Package tools contains the MCP tool implementations for form widgets.
package tools

import (
	"time"

	"github.com/usestring/formjson-mcp/internal/pipeline"
	"github.com/usestring/formjson-mcp/internal/widgets"
	"github.com/usestring/formjson-mcp/pkg/jsonvalue"
	"github.com/usestring/formjson-mcp/pkg/types"
)

// MIME type constant.
const MimeJSON = "application/json"

// WidgetStateOf converts a pipeline snapshot of w into tool output. events
// are the change events emitted by the call being answered.
func WidgetStateOf(w *widgets.Widget, st pipeline.State, events []pipeline.ChangeEvent) types.WidgetState {
	out := types.WidgetState{
		WidgetID:   w.ID,
		Mode:       st.Mode.String(),
		Markup:     st.Markup,
		HasOutcome: st.Outcome != nil,
		Outcome:    jsonvalue.ToAny(st.Outcome),
		Options:    st.Options,
		Selectable: st.Selectable,
		Error:      toWidgetError(st.Err),
	}
	for _, ev := range events {
		out.Events = append(out.Events, toChangeEvent(ev))
	}
	return out
}

func toChangeEvent(ev pipeline.ChangeEvent) types.ChangeEvent {
	return types.ChangeEvent{
		ID:      ev.ID,
		Name:    ev.Name,
		Value:   jsonvalue.ToAny(ev.Value),
		Trigger: string(ev.Trigger),
		At:      ev.At.UTC().Format(time.RFC3339Nano),
	}
}
