package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleConfigureWidget serves the widget configuration guide.
// The page section reflects whether a default form page is configured.
func HandleConfigureWidget(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		var goal, sample string
		if req != nil && req.Params != nil {
			goal = req.Params.Arguments["goal"]
			sample = req.Params.Arguments["sample_json"]
		}

		var sb strings.Builder

		sb.WriteString("# Configure a Form Widget\n\n")
		if goal != "" {
			fmt.Fprintf(&sb, "**Goal**: %s\n\n", goal)
		}

		// --- Data source ---
		sb.WriteString("## 1. Data Source (exactly one)\n\n")
		sb.WriteString("| Source | Property | Notes |\n")
		sb.WriteString("|--------|----------|-------|\n")
		sb.WriteString("| Inline document | `jsonResponse` | JSON text. Blank or malformed gives `Please provide valid jsonResponse` |\n")
		sb.WriteString("| WebApi | `webApiUrl` | URLs containing `/_api/web/` or `/_api/site/` go through the app-web proxy |\n")
		sb.WriteString("\nSetting both or neither renders `Please configure control`.\n")
		sb.WriteString("- `headers` must be a JSON object of strings (default `{ \"Accept\" : \"application/json\" }`)\n")
		sb.WriteString("- `isIntegratedAuth: true` sends ambient credentials on direct requests\n")

		// --- Path ---
		sb.WriteString("\n## 2. JSONPath\n")
		sb.WriteString("- Default `$.` selects the whole document\n")
		sb.WriteString("- A path ending in `.` with exactly one match yields that value; otherwise the matches stay an array\n")
		sb.WriteString("- Test first: `formjson_query(json: <sample>, path: \"$.items[*].name\")`\n")
		if sample != "" {
			sb.WriteString("\nSample document:\n```json\n")
			sb.WriteString(sample)
			sb.WriteString("\n```\n")
		}

		// --- Display ---
		sb.WriteString("\n## 3. Display Variant (`displayAs`)\n")
		sb.WriteString("- `Label` (default): scalar text; integers, strings and booleans render, anything else is blank\n")
		sb.WriteString("- `Dropdown`: needs an array (a string becomes one option). `sortOrder` is `As Is`, `Asc` or `Desc`; `defaultMessage` is the placeholder\n")
		sb.WriteString("- `Label using Mustache Template`: `mustacheTemplate` renders the value; arrays are passed whole (`{{#.}}...{{/.}}`)\n")

		// --- Page ---
		sb.WriteString("\n## 4. Page Mode\n")
		sb.WriteString("The form page URL decides the mode: `mode=0` New, `mode=1` Edit, anything else Display.\n")
		sb.WriteString("Dropdowns are selectable only in New and Edit; Display shows the stored `outcome` as a label.\n")
		if cfg.PageURL != "" {
			fmt.Fprintf(&sb, "Default page: `%s` (override with `page_url`).\n", cfg.PageURL)
		} else {
			sb.WriteString("No default page is configured: pass `page_url` to `formjson_run` for New/Edit behaviour and proxied requests.\n")
		}

		// --- Workflow ---
		sb.WriteString("\n## Workflow\n")
		sb.WriteString("1. `formjson_validate_config(config: ...)` - schema check\n")
		sb.WriteString("2. `formjson_run(widget_id, config, page_url)` - render; inspect `error`, `outcome` and `events`\n")
		sb.WriteString("3. `formjson_select(widget_id, value)` - for dropdowns, pick one of `options`\n")
		sb.WriteString("4. `formjson_fetch` - raw WebApi response when the path is unclear\n")

		return &sdkmcp.GetPromptResult{
			Description: "Guide for configuring a form widget",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
