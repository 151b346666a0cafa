package jsonvalue

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

var (
	// decimalLiteral is the full-string numeric grammar used by ToNumber.
	decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
	// floatPrefix is the longest-prefix grammar used by ParseFloat.
	floatPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)
	// exponentZeros matches the zero padding Go adds to exponents ("e-07").
	exponentZeros = regexp.MustCompile(`e([+-])0+(\d)`)
)

// ToNumber converts v to a number the way the script host's Number() does.
// Arrays and objects are first converted to their string form.
func ToNumber(v Value) float64 {
	switch val := v.(type) {
	case nil, Null:
		return 0
	case Bool:
		if val {
			return 1
		}
		return 0
	case Number:
		return float64(val)
	case String:
		return stringToNumber(string(val))
	case Array, Object:
		return stringToNumber(ToString(v))
	default:
		return math.NaN()
	}
}

// IsNaN reports whether ToNumber(v) is NaN.
func IsNaN(v Value) bool {
	return math.IsNaN(ToNumber(v))
}

func stringToNumber(s string) float64 {
	s = strings.TrimFunc(s, unicode.IsSpace)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	if !decimalLiteral.MatchString(s) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

// ParseFloat parses the longest numeric prefix of s after leading
// whitespace, like the script host's parseFloat. It returns NaN when no
// prefix is numeric.
func ParseFloat(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	m := floatPrefix.FindString(s)
	if m == "" {
		return math.NaN()
	}
	switch m {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	// Range errors still carry the saturated value.
	f, _ := strconv.ParseFloat(m, 64)
	return f
}

// ToString converts v to its script-host string form. Arrays join their
// elements with commas (null elements become empty) and objects become
// "[object Object]".
func ToString(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return "null"
	case Bool:
		if val {
			return "true"
		}
		return "false"
	case Number:
		return NumberToString(float64(val))
	case String:
		return string(val)
	case Array:
		parts := make([]string, len(val))
		for i, item := range val {
			if _, isNull := item.(Null); isNull || item == nil {
				continue
			}
			parts[i] = ToString(item)
		}
		return strings.Join(parts, ",")
	case Object:
		return "[object Object]"
	default:
		return ""
	}
}

// NumberToString formats f the way the script host prints numbers:
// integers without a fraction, exponent form outside [1e-6, 1e21).
func NumberToString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		return exponentZeros.ReplaceAllString(strconv.FormatFloat(f, 'e', -1, 64), "e$1$2")
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// LooseEqual implements the script host's == operator. Arrays and objects
// are only equal to primitives through their string form; two composite
// values never compare equal because identity is not modelled.
func LooseEqual(a, b Value) bool {
	a, b = orNull(a), orNull(b)
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		if bv, ok := b.(Bool); ok {
			return av == bv
		}
		return LooseEqual(Number(ToNumber(av)), b)
	case Number:
		switch bv := b.(type) {
		case Number:
			return av == bv
		case String:
			return float64(av) == stringToNumber(string(bv))
		case Bool:
			return float64(av) == ToNumber(bv)
		case Array, Object:
			return LooseEqual(av, String(ToString(bv)))
		}
		return false
	case String:
		switch bv := b.(type) {
		case String:
			return av == bv
		case Number, Bool:
			return LooseEqual(b, a)
		case Array, Object:
			return string(av) == ToString(bv)
		}
		return false
	case Array, Object:
		switch b.(type) {
		case String, Number, Bool:
			return LooseEqual(b, a)
		}
		return false
	}
	return false
}

// Greater implements the script host's a > b. When both operands are
// strings after primitive conversion they compare by UTF-16 code unit;
// otherwise both are converted to numbers and NaN is unordered.
func Greater(a, b Value) bool {
	pa, pb := toPrimitive(a), toPrimitive(b)
	sa, aIsString := pa.(String)
	sb, bIsString := pb.(String)
	if aIsString && bIsString {
		return compareUTF16(string(sa), string(sb)) > 0
	}
	na, nb := ToNumber(pa), ToNumber(pb)
	if math.IsNaN(na) || math.IsNaN(nb) {
		return false
	}
	return na > nb
}

// Less implements the script host's a < b.
func Less(a, b Value) bool {
	return Greater(b, a)
}

func toPrimitive(v Value) Value {
	switch v.(type) {
	case Array, Object:
		return String(ToString(v))
	case nil:
		return Null{}
	}
	return v
}

func orNull(v Value) Value {
	if v == nil {
		return Null{}
	}
	return v
}

func compareUTF16(a, b string) int {
	if a == b {
		return 0
	}
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			if ua[i] < ub[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(ua) < len(ub):
		return -1
	case len(ua) > len(ub):
		return 1
	}
	return 0
}
