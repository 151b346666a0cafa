package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/formjson-mcp/internal/mcp/tools"
	"github.com/usestring/formjson-mcp/internal/schema"
)

// Resource URI scheme: formjson://
// Supported URIs:
//   formjson://widget/{id}
//   formjson://schema/widget-config

const (
	resourceScheme    = "formjson://"
	widgetConfigURI   = resourceScheme + "schema/widget-config"
	widgetURITemplate = resourceScheme + "widget/{id}"
)

// registerResources registers resources, resource templates and their handlers.
func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: widgetURITemplate,
		Name:        "Widget State",
		Description: "Current markup, outcome, options and last configuration of a live widget. The formjson_state tool returns the same data.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.6,
		},
	}, s.handleResourceWidget)

	s.mcpServer.AddResource(&sdkmcp.Resource{
		URI:         widgetConfigURI,
		Name:        "Widget Configuration Schema",
		Description: "JSON Schema of the widget configuration accepted by formjson_run, formjson_fetch and widget files.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.5,
		},
	}, s.handleResourceSchema)
}

// Resource handlers

func (s *Server) handleResourceWidget(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	w, ok := s.deps.Widgets.Get(params["id"])
	if !ok {
		return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
	}

	state := tools.WidgetStateOf(w, w.Pipeline.State(), nil)
	state.Config = w.Config()
	return toResourceResult(req.Params.URI, state)
}

func (s *Server) handleResourceSchema(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	v, err := schema.WidgetConfig()
	if err != nil {
		return nil, tools.WrapWidgetError(err)
	}
	doc, err := v.Schema()
	if err != nil {
		return nil, tools.WrapWidgetError(err)
	}
	return toResourceResult(req.Params.URI, doc)
}

// Helper functions

// parseResourceURI extracts parameters from a formjson:// URI.
func parseResourceURI(uri string) (map[string]string, error) {
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, tools.ErrInvalidInput("invalid URI scheme: expected " + resourceScheme)
	}

	path := strings.TrimPrefix(uri, resourceScheme)
	parts := strings.Split(path, "/")

	params := make(map[string]string)
	resourceType := parts[0]

	switch resourceType {
	case "widget":
		if len(parts) < 2 || parts[1] == "" {
			return nil, tools.ErrInvalidInput("widget URI requires a widget ID")
		}
		params["id"] = strings.Join(parts[1:], "/")

	case "schema":
		if len(parts) < 2 || parts[1] == "" {
			return nil, tools.ErrInvalidInput("schema URI requires a schema name")
		}
		params["name"] = parts[1]

	default:
		return nil, tools.ErrInvalidInput(fmt.Sprintf("unknown resource type: %s", resourceType))
	}

	return params, nil
}

// toResourceResult serializes content to a ReadResourceResult.
func toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: tools.MimeJSON,
				Text:     string(data),
			},
		},
	}, nil
}
