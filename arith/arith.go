package arith

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errors returned by Eval.
var (
	ErrInvalidCharacters = errors.New("invalid characters in expression")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrSyntax            = errors.New("syntax error")
	ErrEmpty             = errors.New("empty expression")
)

// SyntaxError locates a parse failure within the expression.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Msg)
}

// Is matches ErrSyntax.
func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

// Allowed reports whether expr uses only the permitted character set.
func Allowed(expr string) bool {
	for _, r := range expr {
		if !allowedRune(r) {
			return false
		}
	}
	return true
}

func allowedRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case strings.ContainsRune("+-*/(). \t\r\n", r):
		return true
	}
	return false
}

// Eval parses and evaluates expr.
func Eval(expr string) (decimal.Decimal, error) {
	if !Allowed(expr) {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidCharacters, expr)
	}
	if strings.TrimSpace(expr) == "" {
		return decimal.Zero, ErrEmpty
	}

	p := &parser{src: expr}
	v, err := p.expr()
	if err != nil {
		return decimal.Zero, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return decimal.Zero, &SyntaxError{Pos: p.pos, Msg: fmt.Sprintf("unexpected %q", p.src[p.pos])}
	}
	return v, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

// peek returns the next non-space byte, or 0 at end of input.
func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) expr() (decimal.Decimal, error) {
	left, err := p.term()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.term()
		if err != nil {
			return decimal.Zero, err
		}
		if op == '+' {
			left = left.Add(right)
		} else {
			left = left.Sub(right)
		}
	}
}

func (p *parser) term() (decimal.Decimal, error) {
	left, err := p.factor()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.factor()
		if err != nil {
			return decimal.Zero, err
		}
		if op == '*' {
			left = left.Mul(right)
			continue
		}
		if right.IsZero() {
			return decimal.Zero, ErrDivisionByZero
		}
		left = left.Div(right)
	}
}

func (p *parser) factor() (decimal.Decimal, error) {
	switch c := p.peek(); {
	case c == 0:
		return decimal.Zero, &SyntaxError{Pos: p.pos, Msg: "unexpected end of expression"}
	case c == '+' || c == '-':
		p.pos++
		v, err := p.factor()
		if err != nil {
			return decimal.Zero, err
		}
		if c == '-' {
			v = v.Neg()
		}
		return v, nil
	case c == '(':
		open := p.pos
		p.pos++
		v, err := p.expr()
		if err != nil {
			return decimal.Zero, err
		}
		if p.peek() != ')' {
			return decimal.Zero, &SyntaxError{Pos: open, Msg: "unbalanced parenthesis"}
		}
		p.pos++
		return v, nil
	case c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	default:
		return decimal.Zero, &SyntaxError{Pos: p.pos, Msg: fmt.Sprintf("unexpected %q", c)}
	}
}

func (p *parser) number() (decimal.Decimal, error) {
	start := p.pos
	dots := 0
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '.' {
			dots++
		} else if c < '0' || c > '9' {
			break
		}
		p.pos++
	}
	lit := p.src[start:p.pos]
	if dots > 1 || lit == "." {
		return decimal.Zero, &SyntaxError{Pos: start, Msg: fmt.Sprintf("malformed number %q", lit)}
	}
	v, err := decimal.NewFromString(lit)
	if err != nil {
		return decimal.Zero, &SyntaxError{Pos: start, Msg: fmt.Sprintf("malformed number %q", lit)}
	}
	return v, nil
}
