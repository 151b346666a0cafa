package jsonpath

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// prelude defines the jq helpers the translated program is built from.
// Missing keys and out-of-range indexes produce no output instead of null so
// that a path which does not exist matches nothing.
const prelude = `def jp_key($k): if type == "object" and has($k) then .[$k] ` +
	`elif type == "array" and $k == "length" then length ` +
	`elif type == "array" and ($k | test("^[0-9]+$")) then ($k | tonumber) as $i | if $i < length then .[$i] else empty end ` +
	`else empty end;
def jp_idx($i): if type == "array" then (if $i < 0 then length + $i else $i end) as $j | if $j >= 0 and $j < length then .[$j] else empty end else empty end;
def jp_all: if type == "array" or type == "object" then .[] else empty end;
def jp_length: if type == "array" or type == "string" then length elif type == "object" then .["length"] else null end;
def jp_truthy: . != null and . != false and . != 0 and . != "";
`

// Translate compiles a JSONPath expression into a complete jq program.
//
// Supported syntax: $, .name, ['name'], ["name"], [n] (negative counts from
// the end), [*], .*, recursive descent (..name, ..*, ..[...]), unions
// ['a','b'] and [0,2], slices [start:end], and filters [?(...)] over @ and $
// paths with comparison, regex match (=~), &&, || and ! operators.
// A trailing '.' is accepted and selects nothing further.
func Translate(path string) (string, error) {
	body, err := translateBody(path)
	if err != nil {
		return "", err
	}
	return prelude + ". as $root | " + body, nil
}

func translateBody(path string) (string, error) {
	p := &parser{src: strings.TrimSpace(path)}
	if p.src == "" {
		return "", fmt.Errorf("empty path")
	}
	if p.peek() == '$' {
		p.pos++
	}

	var steps []string
	for !p.eof() {
		step, err := p.segment()
		if err != nil {
			return "", err
		}
		if step != "" {
			steps = append(steps, step)
		}
	}
	if len(steps) == 0 {
		return ".", nil
	}
	return strings.Join(steps, " | "), nil
}

// parser walks a path expression one segment at a time.
type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) hasPrefix(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *parser) consume(c byte) bool {
	if p.peek() == c && !p.eof() {
		p.pos++
		return true
	}
	return false
}

func (p *parser) skipSpaces() {
	for !p.eof() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n' || p.src[p.pos] == '\r') {
		p.pos++
	}
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("at position %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) segment() (string, error) {
	switch c := p.peek(); c {
	case '.':
		if p.hasPrefix("..") {
			p.pos += 2
			if p.eof() {
				return "recurse", nil
			}
			var inner string
			var err error
			switch p.peek() {
			case '[':
				inner, err = p.bracket()
			case '.':
				return "", p.errorf("unexpected '.'")
			default:
				inner, err = p.member()
			}
			if err != nil {
				return "", err
			}
			return "recurse | " + inner, nil
		}
		p.pos++
		if p.eof() {
			return "", nil
		}
		if p.peek() == '[' {
			return p.bracket()
		}
		return p.member()
	case '[':
		return p.bracket()
	default:
		if p.pos == 0 {
			return p.member()
		}
		return "", p.errorf("unexpected %q", c)
	}
}

// member parses a dot-notation name or wildcard.
func (p *parser) member() (string, error) {
	if p.consume('*') {
		return "jp_all", nil
	}
	start := p.pos
	for !p.eof() && p.src[p.pos] != '.' && p.src[p.pos] != '[' {
		p.pos++
	}
	name := p.src[start:p.pos]
	if name == "" {
		return "", p.errorf("expected member name")
	}
	return "jp_key(" + quote(name) + ")", nil
}

// bracket parses [...] selectors.
func (p *parser) bracket() (string, error) {
	p.pos++ // '['
	p.skipSpaces()

	switch p.peek() {
	case '?':
		p.pos++
		p.skipSpaces()
		expr, err := p.filter()
		if err != nil {
			return "", err
		}
		if err := p.closeBracket(); err != nil {
			return "", err
		}
		return "jp_all | select(" + expr + ")", nil
	case '(':
		return "", p.errorf("script expressions are not supported")
	case '*':
		p.pos++
		if err := p.closeBracket(); err != nil {
			return "", err
		}
		return "jp_all", nil
	}

	var items []string
	for {
		p.skipSpaces()
		item, err := p.bracketItem()
		if err != nil {
			return "", err
		}
		items = append(items, item)
		p.skipSpaces()
		if p.consume(',') {
			continue
		}
		if err := p.closeBracket(); err != nil {
			return "", err
		}
		break
	}

	if len(items) == 1 {
		return items[0], nil
	}
	return "(" + strings.Join(items, ", ") + ")", nil
}

func (p *parser) closeBracket() error {
	p.skipSpaces()
	if !p.consume(']') {
		return p.errorf("expected ']'")
	}
	return nil
}

func (p *parser) bracketItem() (string, error) {
	if c := p.peek(); c == '\'' || c == '"' {
		s, err := p.quoted()
		if err != nil {
			return "", err
		}
		return "jp_key(" + quote(s) + ")", nil
	}

	start := p.pos
	for !p.eof() && p.src[p.pos] != ',' && p.src[p.pos] != ']' {
		p.pos++
	}
	raw := strings.TrimSpace(p.src[start:p.pos])
	if raw == "" {
		return "", p.errorf("empty selector")
	}
	if strings.Contains(raw, ":") {
		return slice(raw, p)
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return "jp_idx(" + strconv.Itoa(n) + ")", nil
	}
	return "jp_key(" + quote(raw) + ")", nil
}

func slice(raw string, p *parser) (string, error) {
	parts := strings.Split(raw, ":")
	if len(parts) > 3 {
		return "", p.errorf("invalid slice %q", raw)
	}
	if len(parts) == 3 {
		if step := strings.TrimSpace(parts[2]); step != "" && step != "1" {
			return "", p.errorf("slice steps are not supported: %q", raw)
		}
	}
	bounds := make([]string, 2)
	for i := 0; i < 2; i++ {
		b := strings.TrimSpace(parts[i])
		if b == "" {
			continue
		}
		n, err := strconv.Atoi(b)
		if err != nil {
			return "", p.errorf("invalid slice bound %q", b)
		}
		bounds[i] = strconv.Itoa(n)
	}
	if bounds[0] == "" && bounds[1] == "" {
		return `if type == "array" then .[] else empty end`, nil
	}
	return fmt.Sprintf(`if type == "array" then .[%s:%s][] else empty end`, bounds[0], bounds[1]), nil
}

// quoted reads a single- or double-quoted string literal.
func (p *parser) quoted() (string, error) {
	q := p.src[p.pos]
	p.pos++
	var b strings.Builder
	for !p.eof() {
		c := p.src[p.pos]
		p.pos++
		switch c {
		case q:
			return b.String(), nil
		case '\\':
			if p.eof() {
				return "", p.errorf("unterminated string")
			}
			esc := p.src[p.pos]
			p.pos++
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(esc)
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", p.errorf("unterminated string")
}

// quote renders s as a jq string literal.
func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
