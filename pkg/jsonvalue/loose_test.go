package jsonvalue

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToNumber(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want float64
	}{
		{"null", Null{}, 0},
		{"true", Bool(true), 1},
		{"empty string", String(""), 0},
		{"padded", String("  42 "), 42},
		{"leading zeros", String("007"), 7},
		{"exponent", String("1e2"), 100},
		{"hex", String("0x1A"), 26},
		{"infinity", String("-Infinity"), math.Inf(-1)},
		{"single element array", Array{Number(5)}, 5},
		{"empty array", Array{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToNumber(tt.v))
		})
	}
}

func TestToNumber_NaN(t *testing.T) {
	for _, v := range []Value{String("abc"), String("1_000"), String("inf"), String("12px"), Array{Number(1), Number(2)}, Object{}} {
		assert.True(t, IsNaN(v), "expected NaN for %#v", v)
	}
}

func TestParseFloat(t *testing.T) {
	assert.Equal(t, 12.0, ParseFloat("12px"))
	assert.Equal(t, 3.5, ParseFloat("  3.5e0abc"))
	assert.Equal(t, 0.5, ParseFloat(".5"))
	assert.Equal(t, math.Inf(1), ParseFloat("Infinity and beyond"))
	assert.True(t, math.IsNaN(ParseFloat("")))
	assert.True(t, math.IsNaN(ParseFloat("px12")))
}

func TestToString(t *testing.T) {
	assert.Equal(t, "null", ToString(Null{}))
	assert.Equal(t, "false", ToString(Bool(false)))
	assert.Equal(t, "42", ToString(Number(42)))
	assert.Equal(t, "3.14", ToString(Number(3.14)))
	assert.Equal(t, "a,,1", ToString(Array{String("a"), Null{}, Number(1)}))
	assert.Equal(t, "1,2,3", ToString(Array{Number(1), Array{Number(2), Number(3)}}))
	assert.Equal(t, "[object Object]", ToString(Object{"a": Number(1)}))
}

func TestNumberToString(t *testing.T) {
	assert.Equal(t, "100", NumberToString(1e2))
	assert.Equal(t, "0", NumberToString(math.Copysign(0, -1)))
	assert.Equal(t, "1e+21", NumberToString(1e21))
	assert.Equal(t, "1.5e-7", NumberToString(1.5e-7))
	assert.Equal(t, "0.000001", NumberToString(1e-6))
	assert.Equal(t, "NaN", NumberToString(math.NaN()))
}

func TestLooseEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same strings", String("x"), String("x"), true},
		{"number and string", Number(5), String("5"), true},
		{"string and number", String("05"), Number(5), true},
		{"bool and number", Bool(true), Number(1), true},
		{"bool and string", Bool(false), String("0"), true},
		{"null and null", Null{}, Null{}, true},
		{"null and zero", Null{}, Number(0), false},
		{"array and string", Array{String("a"), String("b")}, String("a,b"), true},
		{"two arrays", Array{}, Array{}, false},
		{"different strings", String("a"), String("b"), false},
		{"nan", Number(math.NaN()), Number(math.NaN()), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LooseEqual(tt.a, tt.b))
		})
	}
}

func TestGreater(t *testing.T) {
	assert.True(t, Greater(String("b"), String("a")))
	assert.True(t, Greater(String("a"), String("B")))
	assert.False(t, Greater(String("10"), String("9")), "strings compare lexically")
	assert.True(t, Greater(Number(10), String("9")), "mixed operands compare numerically")
	assert.False(t, Greater(String("x"), Number(1)), "NaN is unordered")
	assert.False(t, Greater(Number(1), String("x")))
	assert.True(t, Less(Bool(false), Bool(true)))
	assert.True(t, Greater(String("｡"), String("\U0001F600")), "UTF-16 code unit order")
}
