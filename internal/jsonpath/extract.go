package jsonpath

import (
	"log/slog"
	"strings"

	"github.com/usestring/formjson-mcp/pkg/jsonvalue"
)

// DefaultPath selects the whole document.
const DefaultPath = "$."

// Extraction is the outcome of applying a path to a document.
type Extraction struct {
	Path      string            // Path actually evaluated (after defaulting)
	Values    []jsonvalue.Value // All matches
	Collapsed bool              // Exactly one match and the path ends with '.'
	Defined   bool              // False when the document was falsy and not queried
}

// Value returns the extraction as a single value: the match itself when
// collapsed, otherwise the matches as an array. An undefined extraction
// yields Null.
func (x Extraction) Value() jsonvalue.Value {
	switch {
	case !x.Defined:
		return jsonvalue.Null{}
	case x.Collapsed:
		return x.Values[0]
	default:
		return jsonvalue.Array(x.Values)
	}
}

// Extractor applies paths to documents with the collapse rule: a path
// ending in '.' that matches exactly one value yields that value rather than
// a one-element sequence.
type Extractor struct {
	engine *Engine
}

// NewExtractor creates an extractor backed by engine.
func NewExtractor(engine *Engine) *Extractor {
	return &Extractor{engine: engine}
}

// Extract evaluates path against doc. An empty path defaults to DefaultPath.
// Falsy documents (null, false, 0, "") short-circuit to an undefined result.
func (x *Extractor) Extract(doc jsonvalue.Value, path string) (Extraction, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}
	if !jsonvalue.Truthy(doc) {
		return Extraction{Path: path}, nil
	}

	result, err := x.engine.Query(doc, path)
	if err != nil {
		return Extraction{Path: path}, err
	}
	for _, e := range result.Errors {
		slog.Debug("path evaluation error",
			slog.String("path", path),
			slog.String("error", e),
		)
	}

	out := Extraction{
		Path:    path,
		Values:  result.Values,
		Defined: true,
	}
	if len(result.Values) == 1 && strings.HasSuffix(path, ".") {
		out.Collapsed = true
	}
	return out, nil
}
