// Package widgetfile loads widget configurations from TOML, YAML, JSON or
// JSONC files and validates them against the reflected configuration schema.
package widgetfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/usestring/formjson-mcp/internal/schema"
	"github.com/usestring/formjson-mcp/pkg/types"
)

// Format is the encoding of a widget file.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for an unsupported format name or extension.
var ErrUnknownFormat = errors.New("unknown widget file format")

// ValidationError lists the schema violations of a widget document.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid widget configuration: " + strings.Join(e.Errors, "; ")
}

// ParseFormat maps a format name to a Format. An empty name is JSON.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json", "jsonc":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// FormatFromPath derives the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// Load reads, validates and decodes the widget file at path.
func Load(path string) (types.WidgetConfig, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return types.WidgetConfig{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.WidgetConfig{}, fmt.Errorf("reading widget file: %w", err)
	}
	return Parse(data, format)
}

// Parse validates and decodes a widget document. Schema violations are
// reported as *ValidationError.
func Parse(data []byte, format Format) (types.WidgetConfig, error) {
	result, err := Validate(data, format)
	if err != nil {
		return types.WidgetConfig{}, err
	}
	if !result.Valid {
		return types.WidgetConfig{}, &ValidationError{Errors: result.Errors}
	}

	var cfg types.WidgetConfig
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &cfg)
	case FormatYAML:
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(jsonc.ToJSON(data), &cfg)
	}
	if err != nil {
		return types.WidgetConfig{}, fmt.Errorf("decoding %s widget: %w", format, err)
	}
	return cfg, nil
}

// Validate checks a widget document against the configuration schema. The
// error is non-nil only when the document cannot be decoded at all.
func Validate(data []byte, format Format) (*types.ValidationResult, error) {
	doc, err := normalize(data, format)
	if err != nil {
		return nil, err
	}
	v, err := schema.WidgetConfig()
	if err != nil {
		return nil, fmt.Errorf("loading widget schema: %w", err)
	}
	return v.Validate(doc), nil
}

// normalize converts a document of any format into plain JSON.
func normalize(data []byte, format Format) ([]byte, error) {
	var doc any
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing toml: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing yaml: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parsing json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("normalizing %s document: %w", format, err)
	}
	return out, nil
}
