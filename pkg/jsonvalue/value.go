// Package jsonvalue models JSON documents as a closed set of value types.
//
// Every stage of the form pipeline (path extraction, coercion, sorting and
// rendering) narrows values with an exhaustive type switch over the six
// variants below instead of inspecting untyped interface values:
//
//	switch v := value.(type) {
//	case jsonvalue.String:
//	case jsonvalue.Number:
//	case jsonvalue.Bool:
//	case jsonvalue.Array:
//	case jsonvalue.Object:
//	case jsonvalue.Null:
//	}
//
// The package also carries the loose conversions of a browser script host
// (ToNumber, ToString, ParseFloat, LooseEqual, Greater) because the widget
// semantics are defined in those terms.
package jsonvalue

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// Kind identifies the variant of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is one of Null, Bool, Number, String, Array or Object.
type Value interface {
	Kind() Kind
	sealed()
}

// Null is the JSON null literal.
type Null struct{}

// Bool is a JSON boolean.
type Bool bool

// Number is a JSON number. JSON numbers are IEEE-754 doubles.
type Number float64

// String is a JSON string.
type String string

// Array is a JSON array.
type Array []Value

// Object is a JSON object. Key order is not preserved.
type Object map[string]Value

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Number) Kind() Kind { return KindNumber }
func (String) Kind() Kind { return KindString }
func (Array) Kind() Kind  { return KindArray }
func (Object) Kind() Kind { return KindObject }

func (Null) sealed()   {}
func (Bool) sealed()   {}
func (Number) sealed() {}
func (String) sealed() {}
func (Array) sealed()  {}
func (Object) sealed() {}

// MarshalJSON encodes Null as the null literal rather than an empty object.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Parse decodes a JSON document. Trailing data after the document is an error.
func Parse(data []byte) (Value, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return FromAny(raw), nil
}

// FromAny converts the output of encoding/json or gojq into a Value.
// Unknown types are converted to their fmt representation as a String.
func FromAny(v any) Value {
	switch val := v.(type) {
	case nil:
		return Null{}
	case Value:
		return val
	case bool:
		return Bool(val)
	case float64:
		return Number(val)
	case float32:
		return Number(val)
	case int:
		return Number(float64(val))
	case int64:
		return Number(float64(val))
	case int32:
		return Number(float64(val))
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return String(val.String())
		}
		return Number(f)
	case *big.Int:
		f, _ := new(big.Float).SetInt(val).Float64()
		return Number(f)
	case string:
		return String(val)
	case []any:
		arr := make(Array, len(val))
		for i, item := range val {
			arr[i] = FromAny(item)
		}
		return arr
	case map[string]any:
		obj := make(Object, len(val))
		for k, item := range val {
			obj[k] = FromAny(item)
		}
		return obj
	default:
		return String(fmt.Sprint(val))
	}
}

// ToAny converts a Value back into the plain Go representation used by
// encoding/json, gojq and template engines.
func ToAny(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(val)
	case Number:
		return float64(val)
	case String:
		return string(val)
	case Array:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = ToAny(item)
		}
		return out
	case Object:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = ToAny(item)
		}
		return out
	default:
		return nil
	}
}

// Truthy reports whether v is truthy under script-host rules: null, false,
// 0, NaN and the empty string are falsy, everything else is truthy.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil, Null:
		return false
	case Bool:
		return bool(val)
	case Number:
		f := float64(val)
		return f != 0 && !math.IsNaN(f)
	case String:
		return val != ""
	case Array, Object:
		return true
	default:
		return false
	}
}

// Compact returns the minimal JSON encoding of v.
func Compact(v Value) string {
	b, err := json.Marshal(ToAny(v))
	if err != nil {
		return ""
	}
	return string(b)
}

// Indent returns the JSON encoding of v indented with two spaces.
func Indent(v Value) string {
	b, err := json.MarshalIndent(ToAny(v), "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}
