// Package prompts contains MCP prompt implementations for form widgets.
package prompts

// Config holds configuration needed by prompts.
type Config struct {
	// PageURL is the server's default form page, if any.
	PageURL string
}
