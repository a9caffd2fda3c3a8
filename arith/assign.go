package arith

import (
	"regexp"

	"github.com/shopspring/decimal"
)

var assignmentPattern = regexp.MustCompile(`(?:int|float|double)\s+([a-zA-Z_]\w*)\s*=\s*(.*?)\s*;`)

// Assignment is one evaluated `<type> <name> = <expr>;` declaration.
type Assignment struct {
	Name string

	// Expr is the right-hand side after earlier names were substituted.
	Expr string

	Value decimal.Decimal
	Err   error
}

// Assignments finds typed numeric declarations in source and evaluates them
// in order. A name assigned successfully is substituted, as a whole word,
// into every later right-hand side. Failed assignments bind nothing.
func Assignments(source string) []Assignment {
	type binding struct {
		pattern *regexp.Regexp
		value   string
	}
	var (
		bound []binding
		out   []Assignment
	)

	for _, m := range assignmentPattern.FindAllStringSubmatch(source, -1) {
		a := Assignment{Name: m[1], Expr: m[2]}
		for _, b := range bound {
			a.Expr = b.pattern.ReplaceAllLiteralString(a.Expr, b.value)
		}

		a.Value, a.Err = Eval(a.Expr)
		out = append(out, a)
		if a.Err != nil {
			continue
		}

		pat := regexp.MustCompile(`\b` + regexp.QuoteMeta(a.Name) + `\b`)
		replaced := false
		for i := range bound {
			if bound[i].pattern.String() == pat.String() {
				bound[i].value = a.Value.String()
				replaced = true
			}
		}
		if !replaced {
			bound = append(bound, binding{pattern: pat, value: a.Value.String()})
		}
	}
	return out
}
