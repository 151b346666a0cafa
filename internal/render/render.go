// Package render turns an extracted JSON value into widget markup. Three
// variants exist: a read-only label, a dropdown and a label rendered through
// a mustache template.
package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cbroglie/mustache"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/usestring/formjson-mcp/internal/coerce"
	"github.com/usestring/formjson-mcp/internal/hostenv"
	"github.com/usestring/formjson-mcp/internal/sorter"
	"github.com/usestring/formjson-mcp/pkg/jsonvalue"
)

// Variant is a display variant.
type Variant int

const (
	Label Variant = iota
	Dropdown
	LabelWithTemplate
)

// Configuration names of the variants.
const (
	LabelName             = "Label"
	DropdownName          = "Dropdown"
	LabelWithTemplateName = "Label using Mustache Template"
)

func (v Variant) String() string {
	switch v {
	case Dropdown:
		return DropdownName
	case LabelWithTemplate:
		return LabelWithTemplateName
	default:
		return LabelName
	}
}

// ErrUnknownVariant is returned by ParseVariant.
var ErrUnknownVariant = errors.New("unknown display variant")

// ParseVariant maps a displayAs configuration value to a Variant. The empty
// string is Label.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "", LabelName:
		return Label, nil
	case DropdownName:
		return Dropdown, nil
	case LabelWithTemplateName:
		return LabelWithTemplate, nil
	}
	return Label, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// Errors reported by Render. The returned Output still carries markup.
var (
	ErrNotArray = errors.New("WebApi response not in array. Check WebApi Configuration")
	ErrTemplate = errors.New("invalid mustache template")
)

// DefaultPlaceholder is shown by the dropdown when no default message is set.
const DefaultPlaceholder = "Select an option"

const controlClass = "form-control webapi-control"

// Input is everything a render needs.
type Input struct {
	Variant Variant
	// Value is the extraction result. Defined is false when extraction was
	// skipped, in which case Value is ignored.
	Value   jsonvalue.Value
	Defined bool
	Mode    hostenv.PageMode
	// Current is the outcome before this render, or nil.
	Current        jsonvalue.Value
	Template       string
	DefaultMessage string
	Order          sorter.Order
}

// Output is a rendered widget.
type Output struct {
	Markup string
	// Outcome is the new outcome when HasOutcome is set. Otherwise the
	// current outcome stays.
	Outcome    jsonvalue.Value
	HasOutcome bool
	// Options are the selectable values of a dropdown, in display order.
	Options    []string
	Selectable bool
}

// Render renders in. On error the Output holds replacement markup and no
// outcome.
func Render(in Input) (Output, error) {
	value := in.Value
	if !in.Defined {
		value = nil
	}
	switch in.Variant {
	case Label:
		return renderLabel(value), nil
	case Dropdown:
		return renderDropdown(in, value)
	case LabelWithTemplate:
		return renderTemplate(in.Template, value)
	default:
		return Output{}, fmt.Errorf("%w: %d", ErrUnknownVariant, in.Variant)
	}
}

func renderLabel(value jsonvalue.Value) Output {
	text, _ := coerce.Text(value)
	div := element(atom.Div, attr("class", controlClass))
	div.AppendChild(textNode(text))
	return Output{
		Markup:     renderNode(div),
		Outcome:    jsonvalue.String(text),
		HasOutcome: true,
	}
}

func renderDropdown(in Input, value jsonvalue.Value) (Output, error) {
	if in.Mode == hostenv.Display {
		return renderLabel(in.Current), nil
	}

	var items []jsonvalue.Value
	switch v := value.(type) {
	case jsonvalue.String:
		items = []jsonvalue.Value{v}
	case jsonvalue.Array:
		items = v
	default:
		p := element(atom.P)
		p.AppendChild(textNode(ErrNotArray.Error()))
		return Output{Markup: renderNode(p)}, ErrNotArray
	}
	items = sorter.Sort(items, in.Order)

	placeholder := in.DefaultMessage
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}

	sel := element(atom.Select, attr("class", controlClass))
	opt := element(atom.Option, attr("value", ""), attr("disabled", ""), attr("selected", ""))
	opt.AppendChild(textNode(placeholder))
	sel.AppendChild(opt)

	options := make([]string, 0, len(items))
	for _, item := range items {
		text := optionText(item)
		options = append(options, OptionValue(text))

		opt := element(atom.Option)
		if in.Mode == hostenv.Edit && jsonvalue.LooseEqual(item, in.Current) {
			opt.Attr = append(opt.Attr, attr("selected", ""))
		}
		opt.AppendChild(textNode(text))
		sel.AppendChild(opt)
	}

	return Output{
		Markup:     renderNode(sel),
		Options:    options,
		Selectable: true,
	}, nil
}

func renderTemplate(tmpl string, value jsonvalue.Value) (Output, error) {
	raw := TemplateValue(value)

	parsed, err := mustache.ParseString(tmpl)
	if err != nil {
		return Output{Markup: Message("Invalid Mustache Template")}, fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	text, err := parsed.Render(jsonvalue.ToAny(raw))
	if err != nil {
		return Output{Markup: Message("Invalid Mustache Template")}, fmt.Errorf("%w: %w", ErrTemplate, err)
	}

	div := element(atom.Div, attr("class", controlClass))
	div.AppendChild(&html.Node{Type: html.RawNode, Data: text})
	return Output{
		Markup:     renderNode(div),
		Outcome:    raw,
		HasOutcome: true,
	}, nil
}

// TemplateValue is the context a template renders against: the coerced text
// of a scalar, an array unchanged, or "" for anything else.
func TemplateValue(value jsonvalue.Value) jsonvalue.Value {
	if arr, ok := value.(jsonvalue.Array); ok {
		return arr
	}
	text, _ := coerce.Text(value)
	return jsonvalue.String(text)
}

// OptionValue is the value a browser reports for an option without a value
// attribute: its text with whitespace collapsed.
func OptionValue(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// optionText is the text shown for a dropdown item. Null renders empty.
func optionText(item jsonvalue.Value) string {
	if _, ok := item.(jsonvalue.Null); ok || item == nil {
		return ""
	}
	return jsonvalue.ToString(item)
}
