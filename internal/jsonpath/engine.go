// Package jsonpath evaluates JSONPath expressions against JSON documents.
//
// Expressions are translated to jq and executed by gojq; compiled programs
// are kept in an LRU cache keyed by the original expression.
package jsonpath

import (
	"errors"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"

	"github.com/usestring/formjson-mcp/internal/cache"
	"github.com/usestring/formjson-mcp/pkg/jsonvalue"
)

// DefaultCacheSize is the number of compiled programs kept by NewEngine
// when no size is given.
const DefaultCacheSize = 256

// Engine executes JSONPath expressions.
type Engine struct {
	programs *cache.LRU[string, *gojq.Code]
}

// NewEngine creates a new query engine caching up to cacheSize programs.
func NewEngine(cacheSize int) (*Engine, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	programs, err := cache.New[string, *gojq.Code](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating program cache: %w", err)
	}
	return &Engine{programs: programs}, nil
}

// QueryResult contains the matches of a JSONPath expression.
type QueryResult struct {
	Values []jsonvalue.Value // Matched values in document order
	Errors []string          // Evaluation errors that were skipped
}

// Query evaluates path against doc.
func (e *Engine) Query(doc jsonvalue.Value, path string) (*QueryResult, error) {
	code, err := e.compile(path)
	if err != nil {
		return nil, err
	}

	result := &QueryResult{
		Values: make([]jsonvalue.Value, 0),
	}

	iter := code.Run(jsonvalue.ToAny(doc))
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			var haltErr *gojq.HaltError
			if errors.As(err, &haltErr) && haltErr.Value() == nil {
				break
			}
			result.Errors = append(result.Errors, formatEvalError(err))
			continue
		}
		result.Values = append(result.Values, jsonvalue.FromAny(v))
	}

	return result, nil
}

// Validate checks that path parses and compiles without evaluating it.
func (e *Engine) Validate(path string) error {
	_, err := e.compile(path)
	return err
}

func (e *Engine) compile(path string) (*gojq.Code, error) {
	return e.programs.GetOrCreate(path, func() (*gojq.Code, error) {
		program, err := Translate(path)
		if err != nil {
			return nil, fmt.Errorf("invalid path expression %q: %w", path, err)
		}
		query, err := gojq.Parse(program)
		if err != nil {
			return nil, fmt.Errorf("invalid path expression %q: %w", path, err)
		}
		code, err := gojq.Compile(query)
		if err != nil {
			return nil, fmt.Errorf("failed to compile path expression %q: %w", path, err)
		}
		return code, nil
	})
}

// formatEvalError adds a hint for the runtime errors a filter can raise.
func formatEvalError(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "cannot be matched"), strings.Contains(msg, "invalid regular expression"):
		return msg + " (check the =~ pattern)"
	case strings.Contains(msg, "cannot be compared"):
		return msg + " (filter compares incompatible values)"
	}
	return msg
}
