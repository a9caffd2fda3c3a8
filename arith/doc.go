// Package arith evaluates restricted arithmetic expressions.
//
// The grammar is
//
//	expr   := term (('+' | '-') term)*
//	term   := factor (('*' | '/') factor)*
//	factor := ('+' | '-') factor | number | '(' expr ')'
//
// Only digits, the four operators, parentheses, dots and whitespace are
// accepted. There are no names or functions, so evaluating user text cannot
// reach anything but arithmetic. Values are exact decimals.
package arith
