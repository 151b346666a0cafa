package jsonpath

import (
	"fmt"
	"strconv"
	"strings"
)

// filter parses a parenthesized filter expression such as
// (@.price < 10 && @.tags) and returns a jq boolean expression.
func (p *parser) filter() (string, error) {
	if !p.consume('(') {
		return "", p.errorf("expected '(' after '?'")
	}
	expr, err := p.orExpr()
	if err != nil {
		return "", err
	}
	p.skipSpaces()
	if !p.consume(')') {
		return "", p.errorf("unterminated filter expression")
	}
	return expr, nil
}

func (p *parser) orExpr() (string, error) {
	left, err := p.andExpr()
	if err != nil {
		return "", err
	}
	for {
		p.skipSpaces()
		if !p.hasPrefix("||") {
			return left, nil
		}
		p.pos += 2
		right, err := p.andExpr()
		if err != nil {
			return "", err
		}
		left = fmt.Sprintf("(%s or %s)", left, right)
	}
}

func (p *parser) andExpr() (string, error) {
	left, err := p.unary()
	if err != nil {
		return "", err
	}
	for {
		p.skipSpaces()
		if !p.hasPrefix("&&") {
			return left, nil
		}
		p.pos += 2
		right, err := p.unary()
		if err != nil {
			return "", err
		}
		left = fmt.Sprintf("(%s and %s)", left, right)
	}
}

func (p *parser) unary() (string, error) {
	p.skipSpaces()
	if p.peek() == '!' && !p.hasPrefix("!=") {
		p.pos++
		operand, err := p.unary()
		if err != nil {
			return "", err
		}
		return "(" + operand + " | not)", nil
	}
	return p.comparison()
}

// comparisonOps is ordered so that longer operators match first.
var comparisonOps = []string{"===", "!==", "==", "!=", "<=", ">=", "=~", "<", ">"}

func (p *parser) comparison() (string, error) {
	left, err := p.operand()
	if err != nil {
		return "", err
	}
	p.skipSpaces()

	op := ""
	for _, candidate := range comparisonOps {
		if p.hasPrefix(candidate) {
			op = candidate
			break
		}
	}
	if op == "" {
		return "(" + left + " | jp_truthy)", nil
	}
	p.pos += len(op)
	p.skipSpaces()

	if op == "=~" {
		pattern, flags, err := p.pattern()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(`((%s) | type == "string" and test(%s; %s))`, left, quote(pattern), quote(flags)), nil
	}

	right, err := p.operand()
	if err != nil {
		return "", err
	}

	switch op {
	case "==", "===":
		return fmt.Sprintf("((%s) == (%s))", left, right), nil
	case "!=", "!==":
		return fmt.Sprintf("((%s) != (%s))", left, right), nil
	default:
		// Ordering only holds between non-null values of the same type.
		return fmt.Sprintf("((%s) as $l | (%s) as $r | $l != null and $r != null and ($l | type) == ($r | type) and $l %s $r)",
			left, right, op), nil
	}
}

// operand parses a value: a path, literal or parenthesized expression.
func (p *parser) operand() (string, error) {
	p.skipSpaces()
	switch c := p.peek(); {
	case c == '(':
		p.pos++
		expr, err := p.orExpr()
		if err != nil {
			return "", err
		}
		p.skipSpaces()
		if !p.consume(')') {
			return "", p.errorf("expected ')'")
		}
		return expr, nil
	case c == '@' || c == '$':
		return p.filterPath()
	case c == '\'' || c == '"':
		s, err := p.quoted()
		if err != nil {
			return "", err
		}
		return quote(s), nil
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	case isIdentStart(c):
		start := p.pos
		for !p.eof() && isIdentPart(p.peek()) {
			p.pos++
		}
		switch word := p.src[start:p.pos]; word {
		case "true", "false", "null":
			return word, nil
		case "undefined":
			return "null", nil
		default:
			return "", p.errorf("unknown identifier %q", word)
		}
	case p.eof():
		return "", p.errorf("unexpected end of filter")
	default:
		return "", p.errorf("unexpected %q in filter", c)
	}
}

// filterPath parses @.a['b'][0] or $.a and returns a jq expression yielding
// null for missing members.
func (p *parser) filterPath() (string, error) {
	base := "."
	if p.src[p.pos] == '$' {
		base = "$root"
	}
	p.pos++

	var b strings.Builder
	b.WriteString(base)
	for !p.eof() {
		switch p.peek() {
		case '.':
			p.pos++
			start := p.pos
			for !p.eof() && isIdentPart(p.peek()) {
				p.pos++
			}
			name := p.src[start:p.pos]
			if name == "" {
				return "", p.errorf("expected member name in filter path")
			}
			if name == "length" {
				b.WriteString(" | jp_length")
			} else {
				b.WriteString(" | .[" + quote(name) + "]?")
			}
		case '[':
			p.pos++
			p.skipSpaces()
			if c := p.peek(); c == '\'' || c == '"' {
				s, err := p.quoted()
				if err != nil {
					return "", err
				}
				b.WriteString(" | .[" + quote(s) + "]?")
			} else {
				start := p.pos
				for !p.eof() && p.peek() != ']' {
					p.pos++
				}
				n, err := strconv.Atoi(strings.TrimSpace(p.src[start:p.pos]))
				if err != nil {
					return "", p.errorf("invalid index in filter path")
				}
				b.WriteString(" | .[" + strconv.Itoa(n) + "]?")
			}
			if err := p.closeBracket(); err != nil {
				return "", err
			}
		default:
			return "(" + b.String() + ")", nil
		}
	}
	return "(" + b.String() + ")", nil
}

func (p *parser) number() (string, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}
	for !p.eof() {
		c := p.peek()
		if (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' {
			p.pos++
			continue
		}
		if (c == '-' || c == '+') && (p.src[p.pos-1] == 'e' || p.src[p.pos-1] == 'E') {
			p.pos++
			continue
		}
		break
	}
	raw := p.src[start:p.pos]
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", p.errorf("invalid number %q", raw)
	}
	return strconv.FormatFloat(f, 'g', -1, 64), nil
}

// pattern parses the right-hand side of =~: a /regex/flags literal or a
// quoted string. Only the case-insensitive flag carries over.
func (p *parser) pattern() (string, string, error) {
	if c := p.peek(); c == '\'' || c == '"' {
		s, err := p.quoted()
		return s, "", err
	}
	if !p.consume('/') {
		return "", "", p.errorf("expected regular expression after =~")
	}
	var b strings.Builder
	closed := false
	for !p.eof() {
		c := p.src[p.pos]
		p.pos++
		if c == '\\' && !p.eof() && p.src[p.pos] == '/' {
			b.WriteByte('/')
			p.pos++
			continue
		}
		if c == '\\' && !p.eof() {
			b.WriteByte(c)
			b.WriteByte(p.src[p.pos])
			p.pos++
			continue
		}
		if c == '/' {
			closed = true
			break
		}
		b.WriteByte(c)
	}
	if !closed {
		return "", "", p.errorf("unterminated regular expression")
	}
	flags := ""
	for !p.eof() && isIdentPart(p.peek()) {
		if p.peek() == 'i' {
			flags = "i"
		}
		p.pos++
	}
	return b.String(), flags, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '-'
}
