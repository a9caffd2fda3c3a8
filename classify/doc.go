// Package classify turns raw C compiler diagnostics into structured error records.
//
// Classification walks an ordered list of rules and stops at the first
// match, so specific markers (a missing ';', an undefined reference) are
// always preferred over the generic "syntax error" and "error:" fallbacks.
// Each rule is a predicate plus a Record template; rules that need details
// from the input (a quoted source line, an identifier, a linker symbol)
// fill them in through Resolve.
//
// # Input format
//
// ClassifyText accepts source code and diagnostic in one string, separated
// by the first occurrence of "Error:". Without the separator the result is a
// generic record with cause "unparseable input".
package classify
