// Package schema validates widget configuration documents against JSON
// Schemas reflected from Go types.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/usestring/formjson-mcp/pkg/types"
)

// Validator validates JSON data against a schema.
type Validator struct {
	source *invopop.Schema
	schema *jsonschema.Schema
}

// ForType reflects T into a JSON Schema and compiles it.
func ForType[T any]() (*Validator, error) {
	t := reflect.TypeFor[T]()
	r := &invopop.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		// Expanding a non-struct root dereferences a missing definition.
		ExpandedStruct: t.Kind() == reflect.Struct,
	}
	return compileSchema(r.ReflectFromType(t))
}

// stringMap is the schema of a JSON object whose values are all strings.
func stringMap() (*Validator, error) {
	return compileSchema(&invopop.Schema{
		Type:                 "object",
		AdditionalProperties: &invopop.Schema{Type: "string"},
	})
}

var (
	widgetConfigOnce = sync.OnceValues(ForType[types.WidgetConfig])
	headersOnce      = sync.OnceValues(stringMap)
)

// WidgetConfig returns the shared validator for types.WidgetConfig documents.
func WidgetConfig() (*Validator, error) {
	return widgetConfigOnce()
}

// Headers returns the shared validator for the headers property: a JSON
// object whose values are strings.
func Headers() (*Validator, error) {
	return headersOnce()
}

// compileSchema compiles a reflected schema into a validator.
func compileSchema(schema *invopop.Schema) (*Validator, error) {
	// Round-trip to get a clean map[string]any
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}

	var schemaValue any
	if err := json.Unmarshal(schemaJSON, &schemaValue); err != nil {
		return nil, fmt.Errorf("unmarshaling schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", schemaValue); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}

	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}

	return &Validator{source: schema, schema: compiled}, nil
}

// Validate validates raw JSON against the schema.
func (v *Validator) Validate(data []byte) *types.ValidationResult {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return &types.ValidationResult{
			Valid:  false,
			Errors: []string{fmt.Sprintf("invalid JSON: %s", err.Error())},
		}
	}
	return v.ValidateValue(value)
}

// ValidateValue validates an already-decoded value. Numbers must be float64
// or json.Number, as produced by encoding/json.
func (v *Validator) ValidateValue(value any) *types.ValidationResult {
	err := v.schema.Validate(value)
	if err == nil {
		return &types.ValidationResult{Valid: true}
	}
	return &types.ValidationResult{
		Valid:  false,
		Errors: extractValidationErrors(err),
	}
}

// Schema returns the reflected schema as a generic map.
func (v *Validator) Schema() (map[string]any, error) {
	data, err := json.Marshal(v.source)
	if err != nil {
		return nil, err
	}
	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// extractValidationErrors extracts human-readable error messages from a validation error.
func extractValidationErrors(err error) []string {
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) {
		return extractDetailedErrors(validationErr)
	}
	return []string{err.Error()}
}

// printer is a default English printer for localized error messages.
var printer = message.NewPrinter(language.English)

// extractDetailedErrors flattens a ValidationError into sorted, deduplicated
// "path: message" strings.
func extractDetailedErrors(err *jsonschema.ValidationError) []string {
	errorsByPath := make(map[string][]string)
	collectErrors(err, errorsByPath)

	var result []string
	for path, msgs := range errorsByPath {
		seen := make(map[string]bool)
		for _, msg := range msgs {
			if seen[msg] {
				continue
			}
			seen[msg] = true
			if path != "" {
				result = append(result, fmt.Sprintf("%s: %s", path, msg))
			} else {
				result = append(result, msg)
			}
		}
	}
	slices.Sort(result)
	return result
}

// collectErrors recursively collects leaf errors (those without causes).
func collectErrors(err *jsonschema.ValidationError, errorsByPath map[string][]string) {
	instancePath := ""
	if len(err.InstanceLocation) > 0 {
		instancePath = "/" + strings.Join(err.InstanceLocation, "/")
	}

	if err.ErrorKind != nil && len(err.Causes) == 0 {
		errMsg := err.ErrorKind.LocalizedString(printer)
		// $ref wrappers say nothing useful
		if !strings.HasPrefix(errMsg, "$ref ") && !strings.HasPrefix(errMsg, "doesn't validate with") {
			errorsByPath[instancePath] = append(errorsByPath[instancePath], errMsg)
		}
	}

	for _, cause := range err.Causes {
		collectErrors(cause, errorsByPath)
	}
}
