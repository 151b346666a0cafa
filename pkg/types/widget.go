// Package types provides the widget configuration and the MCP tool result
// types. They are designed for external consumption.
package types

import (
	"github.com/invopop/jsonschema"
)

// Display variant names accepted by WidgetConfig.DisplayAs.
const (
	DisplayLabel         = "Label"
	DisplayDropdown      = "Dropdown"
	DisplayLabelTemplate = "Label using Mustache Template"
)

// Sort orders accepted by WidgetConfig.SortOrder.
const (
	SortAsIs = "As Is"
	SortAsc  = "Asc"
	SortDesc = "Desc"
)

// DefaultHeaders is used when WidgetConfig.Headers is empty.
const DefaultHeaders = `{ "Accept" : "application/json" }`

// WidgetConfig is the property set of a Parse JSON or WebApi Request widget.
// JSONResponse and WebAPIURL are mutually exclusive data sources.
type WidgetConfig struct {
	JSONResponse     string `json:"jsonResponse,omitempty" toml:"jsonResponse,omitempty" yaml:"jsonResponse,omitempty" jsonschema:"Inline JSON document to parse"`
	WebAPIURL        string `json:"webApiUrl,omitempty" toml:"webApiUrl,omitempty" yaml:"webApiUrl,omitempty" jsonschema:"URL of the WebApi returning JSON"`
	JSONPath         string `json:"jsonPath,omitempty" toml:"jsonPath,omitempty" yaml:"jsonPath,omitempty" jsonschema:"JSONPath selecting the value to show. Defaults to $."`
	DisplayAs        string `json:"displayAs,omitempty" toml:"displayAs,omitempty" yaml:"displayAs,omitempty" jsonschema:"Label or Dropdown or Label using Mustache Template"`
	MustacheTemplate string `json:"mustacheTemplate,omitempty" toml:"mustacheTemplate,omitempty" yaml:"mustacheTemplate,omitempty" jsonschema:"Template for the Label using Mustache Template variant"`
	DefaultMessage   string `json:"defaultMessage,omitempty" toml:"defaultMessage,omitempty" yaml:"defaultMessage,omitempty" jsonschema:"Dropdown placeholder text"`
	SortOrder        string `json:"sortOrder,omitempty" toml:"sortOrder,omitempty" yaml:"sortOrder,omitempty" jsonschema:"As Is or Asc or Desc"`
	Headers          string `json:"headers,omitempty" toml:"headers,omitempty" yaml:"headers,omitempty" jsonschema:"JSON object of request headers"`
	IsIntegratedAuth bool   `json:"isIntegratedAuth,omitempty" toml:"isIntegratedAuth,omitempty" yaml:"isIntegratedAuth,omitempty" jsonschema:"Send ambient credentials with direct requests"`
	// Outcome is the value stored by the host form, if any.
	Outcome any `json:"outcome,omitempty" toml:"outcome,omitempty" yaml:"outcome,omitempty" jsonschema:"Previously stored outcome value"`
}

// JSONSchemaExtend adds the enumerations to the reflected schema.
func (WidgetConfig) JSONSchemaExtend(s *jsonschema.Schema) {
	if s.Properties == nil {
		return
	}
	if p, ok := s.Properties.Get("displayAs"); ok {
		p.Enum = []any{"", DisplayLabel, DisplayDropdown, DisplayLabelTemplate}
	}
	if p, ok := s.Properties.Get("sortOrder"); ok {
		p.Enum = []any{"", SortAsIs, SortAsc, SortDesc}
	}
}
