// Package interp implements a small line-oriented command language.
//
// A Session keeps variables as raw text. Each line is matched against the
// statement forms in a fixed order and the first match runs:
//
//	set <name> to <value>
//	show <name>
//	add <a> and <b>
//	multiply <a> and <b>
//	divide <a> by <b>
//	if <name> <op> <value> then print <text>    (op is >, <, == or !=)
//	exit
//
// Lines starting with // or # are ignored. Operands name a variable or are
// numbers; values are coerced to float64 only when arithmetic needs them.
//
// # Errors
//
// A bad line produces an error message as its output and the session
// continues with the next line. Only exit stops a sequence.
package interp
