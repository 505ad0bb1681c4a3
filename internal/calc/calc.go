// Package calc provides a sandboxed arithmetic evaluator used by the answer
// synthesizer for calculation queries. It accepts only numbers, the operators
// + - * / // % ^ ** and parentheses; everything else is stripped before
// evaluation, so a hostile expression degrades to its numeric residue instead
// of reaching anything executable.
package calc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Result is the outcome of evaluating one expression. On failure Value is nil,
// Success is false and Error carries a human-readable message. Evaluate never
// panics and never returns a non-finite Value.
type Result struct {
	Expression string   `json:"expression"`
	Value      *float64 `json:"result"`
	Success    bool     `json:"success"`
	Error      string   `json:"error,omitempty"`
}

// Evaluate parses and evaluates a simple arithmetic expression.
//
// Supported operators: +, -, *, /, // (floor division), % (modulo),
// ^ and ** (power, right-associative). Unary minus and parentheses work as
// expected. Division, floor division and modulo by zero are errors, as are
// results that overflow to infinity or NaN.
func Evaluate(expression string) Result {
	fail := func(msg string) Result {
		return Result{Expression: expression, Success: false, Error: msg}
	}

	sanitized := sanitize(expression)
	if strings.TrimSpace(sanitized) == "" {
		return fail("empty or invalid expression")
	}
	if !strings.ContainsAny(sanitized, "0123456789") {
		return fail("no numbers found in expression")
	}

	// ^ is an alias for ** everywhere.
	sanitized = strings.ReplaceAll(sanitized, "^", "**")

	if err := checkParens(sanitized); err != nil {
		return fail(err.Error())
	}

	tokens, err := tokenize(sanitized)
	if err != nil {
		return fail(err.Error())
	}

	p := &parser{tokens: tokens}
	value, err := p.parseExpr()
	if err != nil {
		return fail(err.Error())
	}
	if !p.atEnd() {
		return fail(fmt.Sprintf("unexpected token %q", p.peek().text))
	}

	if math.IsNaN(value) {
		return fail("result is not a number (NaN)")
	}
	if math.IsInf(value, 0) {
		return fail("result is infinite (overflow)")
	}

	return Result{Expression: expression, Value: &value, Success: true}
}

// sanitize removes every rune outside digits, operators, parentheses,
// whitespace and the decimal point. This runs before any parsing so that
// identifiers, quotes and control characters can never reach the evaluator.
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' || r == '-' || r == '*' || r == '/' || r == '%' || r == '^':
			b.WriteRune(r)
		case r == '(' || r == ')' || r == '.':
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func checkParens(s string) error {
	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return fmt.Errorf("unbalanced parentheses")
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("unbalanced parentheses")
	}
	return nil
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

func tokenize(s string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c >= '0' && c <= '9' || c == '.':
			j := i
			for j < len(s) && (s[j] >= '0' && s[j] <= '9' || s[j] == '.') {
				j++
			}
			num, err := strconv.ParseFloat(s[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q", s[i:j])
			}
			tokens = append(tokens, token{kind: tokNumber, text: s[i:j], num: num})
			i = j
		case c == '*':
			if i+1 < len(s) && s[i+1] == '*' {
				tokens = append(tokens, token{kind: tokOp, text: "**"})
				i += 2
			} else {
				tokens = append(tokens, token{kind: tokOp, text: "*"})
				i++
			}
		case c == '/':
			if i+1 < len(s) && s[i+1] == '/' {
				tokens = append(tokens, token{kind: tokOp, text: "//"})
				i += 2
			} else {
				tokens = append(tokens, token{kind: tokOp, text: "/"})
				i++
			}
		case c == '+' || c == '-' || c == '%':
			tokens = append(tokens, token{kind: tokOp, text: string(c)})
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "("})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")"})
			i++
		default:
			// Sanitization should make this unreachable; reject anyway.
			return nil, fmt.Errorf("invalid operation: %q", string(c))
		}
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty or invalid expression")
	}
	return tokens, nil
}

// parser is a recursive-descent evaluator over the token stream.
// Grammar, lowest precedence first:
//
//	expr   = term   { ("+" | "-") term }
//	term   = factor { ("*" | "/" | "//" | "%") factor }
//	factor = { "-" | "+" } power
//	power  = atom [ "**" factor ]        (right-associative)
//	atom   = number | "(" expr ")"
type parser struct {
	tokens []token
	pos    int
}

func (p *parser) atEnd() bool { return p.pos >= len(p.tokens) }

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}

func (p *parser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for !p.atEnd() && p.peek().kind == tokOp && (p.peek().text == "+" || p.peek().text == "-") {
		op := p.next().text
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			left += right
		} else {
			left -= right
		}
	}
	return left, nil
}

func (p *parser) parseTerm() (float64, error) {
	left, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for !p.atEnd() && p.peek().kind == tokOp {
		op := p.peek().text
		if op != "*" && op != "/" && op != "//" && op != "%" {
			break
		}
		p.next()
		right, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		switch op {
		case "*":
			left *= right
		case "/":
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		case "//":
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left = math.Floor(left / right)
		case "%":
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			// Floored modulo: the result takes the sign of the divisor,
			// consistent with // being floor division.
			left = math.Mod(left, right)
			if left != 0 && (left < 0) != (right < 0) {
				left += right
			}
		}
	}
	return left, nil
}

func (p *parser) parseFactor() (float64, error) {
	neg := false
	for !p.atEnd() && p.peek().kind == tokOp && (p.peek().text == "-" || p.peek().text == "+") {
		if p.next().text == "-" {
			neg = !neg
		}
	}
	value, err := p.parsePower()
	if err != nil {
		return 0, err
	}
	if neg {
		value = -value
	}
	return value, nil
}

func (p *parser) parsePower() (float64, error) {
	base, err := p.parseAtom()
	if err != nil {
		return 0, err
	}
	if !p.atEnd() && p.peek().kind == tokOp && p.peek().text == "**" {
		p.next()
		// Right-associative: 2 ** 3 ** 2 == 2 ** (3 ** 2).
		exp, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		return math.Pow(base, exp), nil
	}
	return base, nil
}

func (p *parser) parseAtom() (float64, error) {
	if p.atEnd() {
		return 0, fmt.Errorf("invalid expression syntax: unexpected end of expression")
	}
	t := p.next()
	switch t.kind {
	case tokNumber:
		return t.num, nil
	case tokLParen:
		value, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.atEnd() || p.peek().kind != tokRParen {
			return 0, fmt.Errorf("unbalanced parentheses")
		}
		p.next()
		return value, nil
	default:
		return 0, fmt.Errorf("invalid expression syntax: unexpected token %q", t.text)
	}
}
