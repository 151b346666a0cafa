package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	AddTool(srv, &sdkmcp.Tool{
		Name:        "formjson_run",
		Description: "Run a Parse JSON widget: load inline JSON (config.jsonResponse) or fetch it (config.webApiUrl), apply config.jsonPath and render it as a Label, Dropdown or Mustache template. Returns markup, outcome, options and the change events emitted. Failures are rendered inline and reported in error, not as tool errors.",
	}, ToolRun(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "formjson_fetch",
		Description: "Run a WebApi Request widget: fetch config.webApiUrl directly or through the app-web proxy (chosen from the URL and page parameters), render the JSON document and set the outcome to its compact text.",
	}, ToolFetch(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "formjson_select",
		Description: "Select a dropdown option on a widget rendered by formjson_run. value must be one of the returned options. Emits a change event carrying the option text.",
	}, ToolSelect(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "formjson_state",
		Description: "Get the current markup, outcome and last configuration of a widget without running it.",
	}, ToolState(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "formjson_query",
		Description: "Evaluate a JSONPath expression against a JSON document. Returns all matches plus the single value a widget would display (a path ending in '.' with exactly one match yields that match). Use to debug config.jsonPath before running a widget.",
	}, ToolQueryPath(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "formjson_validate_config",
		Description: "Validate a widget configuration document (JSON, JSONC, TOML or YAML) against the configuration schema. Set include_schema to get the schema itself.",
	}, ToolValidateConfig(d))
}
