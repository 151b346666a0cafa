package tools

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/formjson-mcp/pkg/jsonvalue"
)

// AddTool registers a tool after checking that its output type round-trips
// through the schema the SDK infers for it. It panics at registration when
// CheckOutputSchema reports a problem.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	if err := CheckOutputSchema[Out](); err != nil {
		panic(fmt.Sprintf("AddTool %q: %v", t.Name, err))
	}
	sdkmcp.AddTool(srv, t, h)
}

// opaqueTypes marshal as arbitrary JSON while the schema generator describes
// their Go shape. Tool outputs carry such values as any (see jsonvalue.ToAny).
var opaqueTypes = map[reflect.Type]string{
	reflect.TypeFor[json.RawMessage]():  "json.RawMessage",
	reflect.TypeFor[jsonvalue.Value]():  "jsonvalue.Value",
	reflect.TypeFor[jsonvalue.Array]():  "jsonvalue.Array",
	reflect.TypeFor[jsonvalue.Object](): "jsonvalue.Object",
}

// CheckOutputSchema reports whether the zero value of T validates against the
// inferred output schema, and whether T holds values whose JSON form the
// schema cannot describe.
//
// A nil slice marshals as null where the schema expects an array, so slice
// fields of tool outputs need omitzero or omitempty. The untyped any output
// is always accepted, as are types the SDK itself fails to infer.
func CheckOutputSchema[T any]() error {
	rt := reflect.TypeFor[T]()
	if rt == reflect.TypeFor[any]() {
		return nil
	}
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	if found := opaqueFields(rt, nil, map[reflect.Type]bool{}); len(found) > 0 {
		return fmt.Errorf("output type %s carries opaque JSON at %s; declare those fields as any",
			rt, strings.Join(found, ", "))
	}

	schema, err := jsonschema.ForType(rt, &jsonschema.ForOptions{})
	if err != nil {
		return nil
	}
	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return nil
	}

	data, err := json.Marshal(reflect.Zero(rt).Interface())
	if err != nil {
		return nil
	}
	var zero map[string]any
	if err := json.Unmarshal(data, &zero); err != nil {
		return nil
	}
	if err := resolved.Validate(&zero); err != nil {
		return fmt.Errorf("zero value of %s (%s) fails its schema: %w; add omitzero to slice fields",
			rt, data, err)
	}
	return nil
}

// opaqueFields walks t and returns the dotted paths of opaque values. Slice
// elements are marked "[]" and map values "[value]".
func opaqueFields(t reflect.Type, path []string, seen map[reflect.Type]bool) []string {
	if name, ok := opaqueTypes[t]; ok {
		return []string{describePath(path, name)}
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
		if name, ok := opaqueTypes[t]; ok {
			return []string{describePath(path, name)}
		}
	}
	if seen[t] {
		return nil
	}
	seen[t] = true
	defer delete(seen, t)

	switch t.Kind() {
	case reflect.Struct:
		var found []string
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			found = append(found, opaqueFields(f.Type, append(path, f.Name), seen)...)
		}
		return found
	case reflect.Slice, reflect.Array:
		return opaqueFields(t.Elem(), append(path, "[]"), seen)
	case reflect.Map:
		return opaqueFields(t.Elem(), append(path, "[value]"), seen)
	}
	return nil
}

func describePath(path []string, typeName string) string {
	if len(path) == 0 {
		return typeName
	}
	return strings.Join(path, ".") + " (" + typeName + ")"
}
