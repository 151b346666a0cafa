package mcpsrv

import (
	"github.com/usestring/formjson-mcp/internal/config"
	"github.com/usestring/formjson-mcp/internal/jsonpath"
	"github.com/usestring/formjson-mcp/internal/widgets"
)

// Deps contains all dependencies available to custom tools.
// This gives custom tools access to the same widgets and path engine as the
// builtin tools.
type Deps struct {
	Config  *config.Config
	Widgets *widgets.Registry
	Paths   *jsonpath.Extractor
}
