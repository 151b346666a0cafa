package mcpsrv

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/formjson-mcp/internal/mcp/tools"
)

// AddTool registers a tool on srv. Before registering it checks the output
// type: its zero value must validate against the schema the SDK infers (slice
// fields need omitzero), and it must not hold json.RawMessage or
// jsonvalue.Value fields, whose JSON the inferred schema cannot describe.
// A failing check panics with the offending field paths.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	tools.AddTool(srv, t, h)
}
