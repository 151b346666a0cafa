// Package sorter orders dropdown items.
package sorter

import (
	"slices"

	"github.com/usestring/formjson-mcp/pkg/jsonvalue"
)

// Order is a configured sort order.
type Order int

const (
	AsIs Order = iota
	Asc
	Desc
)

func (o Order) String() string {
	switch o {
	case Asc:
		return "Asc"
	case Desc:
		return "Desc"
	default:
		return "As Is"
	}
}

// ParseOrder maps a configuration string to an Order. Unknown values,
// including the empty string, mean AsIs.
func ParseOrder(s string) Order {
	switch s {
	case "Asc":
		return Asc
	case "Desc":
		return Desc
	default:
		return AsIs
	}
}

// Sort returns a sorted copy of items. Items compare with the script host's
// relational operators, so two strings order by code unit and anything else
// orders numerically. Items that are neither greater nor less than each
// other keep their relative order.
func Sort(items []jsonvalue.Value, order Order) []jsonvalue.Value {
	out := slices.Clone(items)
	if out == nil {
		out = []jsonvalue.Value{}
	}
	switch order {
	case Asc:
		slices.SortStableFunc(out, compare)
	case Desc:
		slices.SortStableFunc(out, func(a, b jsonvalue.Value) int { return compare(b, a) })
	}
	return out
}

func compare(a, b jsonvalue.Value) int {
	switch {
	case jsonvalue.Greater(a, b):
		return 1
	case jsonvalue.Less(a, b):
		return -1
	default:
		return 0
	}
}
