package prompts

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all prompts with the MCP server.
func Register(srv *sdkmcp.Server, cfg *Config) {
	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "configure_widget",
		Description: "RECOMMENDED: Build a widget configuration step by step. Covers data source choice, JSONPath, display variants and how to verify the result with the formjson tools.",
		Arguments: []*sdkmcp.PromptArgument{
			{
				Name:        "goal",
				Description: "What the widget should show (e.g., 'customer name from the order API', 'dropdown of project codes')",
				Required:    false,
			},
			{
				Name:        "sample_json",
				Description: "A sample of the JSON document the widget will read",
				Required:    false,
			},
		},
	}, HandleConfigureWidget(cfg))
}
