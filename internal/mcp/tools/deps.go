package tools

import (
	"github.com/usestring/formjson-mcp/internal/config"
	"github.com/usestring/formjson-mcp/internal/jsonpath"
	"github.com/usestring/formjson-mcp/internal/widgets"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Config  *config.Config
	Widgets *widgets.Registry
	Paths   *jsonpath.Extractor
}
