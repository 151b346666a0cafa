// Package coerce turns extracted JSON values into the display text used by
// the Label and template variants.
package coerce

import (
	"math"

	"github.com/usestring/formjson-mcp/pkg/jsonvalue"
)

// Text returns the display text for v and whether v has one. Strings are
// returned unchanged, integral values use their string form and booleans
// become "true" or "false". Everything else has no text.
func Text(v jsonvalue.Value) (string, bool) {
	if IsInt(v) {
		return jsonvalue.ToString(v), true
	}
	switch val := v.(type) {
	case jsonvalue.String:
		return string(val), true
	case jsonvalue.Bool:
		if val {
			return "true", true
		}
		return "false", true
	}
	return "", false
}

// IsInt reports whether v passes the numeric truncation check: v converts to
// a number, and the leading float of its string form survives a 32-bit
// integer truncation unchanged. Numeric strings like "007" and single
// element arrays like [5] pass.
func IsInt(v jsonvalue.Value) bool {
	if v == nil || jsonvalue.IsNaN(v) {
		return false
	}
	f := jsonvalue.ParseFloat(jsonvalue.ToString(v))
	return float64(toInt32(f)) == f
}

// toInt32 applies the script host's ToInt32 conversion.
func toInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Trunc(f)
	f = math.Mod(f, 1<<32)
	if f < 0 {
		f += 1 << 32
	}
	return int32(uint32(f))
}
