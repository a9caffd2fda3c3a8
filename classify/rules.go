package classify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Input is the material a rule inspects.
type Input struct {
	Source     string
	Diagnostic string
}

// Line returns the 1-indexed source line, trimmed, and whether it exists.
func (in Input) Line(n int) (string, bool) {
	lines := strings.Split(strings.ReplaceAll(in.Source, "\r\n", "\n"), "\n")
	if n < 1 || n > len(lines) {
		return "", false
	}
	return strings.TrimSpace(lines[n-1]), true
}

// Rule pairs a predicate with the record it produces.
// Template holds the fixed text; Resolve, when set, fills the parts that
// depend on the input.
type Rule struct {
	Name     string
	Match    func(Input) bool
	Template Record
	Resolve  func(Input, *Record)
}

// Apply builds the record for in. It assumes Match(in) is true.
func (r Rule) Apply(in Input) Record {
	rec := r.Template
	rec.Rule = r.Name
	if r.Resolve != nil {
		r.Resolve(in, &rec)
	}
	return rec
}

var (
	lineColPattern    = regexp.MustCompile(`:(\d+):\d+:`)
	undeclaredPattern = regexp.MustCompile(`undeclared identifier|'[^']+' undeclared`)
	identQuoted       = regexp.MustCompile(`undeclared identifier '([^']+)'`)
	identGCC          = regexp.MustCompile(`'([^']+)' undeclared`)
	symbolPattern     = regexp.MustCompile("undefined reference to [`'\"]([^`'\"]+)['`\"]")
)

func contains(pattern string) func(Input) bool {
	re := regexp.MustCompile(pattern)
	return func(in Input) bool { return re.MatchString(in.Diagnostic) }
}

// locateLine rewrites rec.Location to quote the line named by a
// `<line>:<col>:` token, keeping the template location when absent or out of range.
func locateLine(in Input, rec *Record) {
	m := lineColPattern.FindStringSubmatch(in.Diagnostic)
	if m == nil {
		return
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return
	}
	if line, ok := in.Line(n); ok {
		rec.Location = fmt.Sprintf("Line %d: %s", n, line)
	}
}

// DefaultRules returns the ordered rule list for C compiler diagnostics.
// Specific markers come before the generic fallbacks; the last rule
// matches everything.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:  "missing-terminator",
			Match: contains(`expected ';'`),
			Template: Record{
				Kind:        SyntaxError,
				Cause:       "A semicolon is missing at the end of a statement.",
				Location:    "Around the statement before the error.",
				Fix:         "Add a semicolon (;) at the end of the problematic statement.",
				Explanation: "C language requires most statements to be terminated by a semicolon to indicate their end.",
			},
			Resolve: locateLine,
		},
		{
			Name:  "undeclared-identifier",
			Match: func(in Input) bool { return undeclaredPattern.MatchString(in.Diagnostic) },
			Template: Record{
				Kind:        SemanticError,
				Cause:       "A variable or function is used without being declared first.",
				Location:    "Referenced identifier is undeclared.",
				Fix:         "Declare the identifier before use or check its spelling.",
				Explanation: "C requires explicit declarations for all names.",
			},
			Resolve: func(in Input, rec *Record) {
				m := identQuoted.FindStringSubmatch(in.Diagnostic)
				if m == nil {
					m = identGCC.FindStringSubmatch(in.Diagnostic)
				}
				if m == nil {
					return
				}
				rec.Location = fmt.Sprintf("Use of undeclared identifier '%s'", m[1])
				rec.Fix = fmt.Sprintf("Declare '%s' before using it, or ensure it's spelled correctly.", m[1])
				rec.Explanation = "All variables and functions in C must be declared with their type before they can be used."
			},
		},
		{
			Name: "missing-rhs",
			Match: func(in Input) bool {
				return strings.Contains(in.Diagnostic, "expected expression") && strings.Contains(in.Source, "=")
			},
			Template: Record{
				Kind:        SyntaxError,
				Cause:       "An assignment operator (=) is used, but no value is provided on the right-hand side.",
				Location:    "In an assignment without a right-hand expression.",
				Fix:         "Assign a value to the variable (e.g., `int a = 5;`) or remove the assignment operator if only declaration is intended (e.g., `int a;`).",
				Explanation: "The assignment operator expects an expression to its right. Providing a value or removing the operator corrects the syntax.",
			},
			Resolve: locateLine,
		},
		{
			Name:  "type-mismatch",
			Match: contains(`conflicting types for|incompatible types?`),
			Template: Record{
				Kind:        SemanticError,
				Cause:       "A variable or function is being used with a type that is different from its declaration or expectation.",
				Location:    "Assignment or function call with type mismatch.",
				Fix:         "Ensure that the types on both sides of an assignment, or arguments in a function call, are compatible. Use type casting if necessary.",
				Explanation: "C is a strongly-typed language. Data types must match or be compatible for assignments and function arguments.",
			},
		},
		{
			Name:  "unbalanced-parenthesis",
			Match: contains(`expected '\)'`),
			Template: Record{
				Kind:        SyntaxError,
				Cause:       "A closing parenthesis is missing, often in a function call, conditional statement (if/while), or expression.",
				Location:    "Expression or statement missing a closing parenthesis.",
				Fix:         "Add the missing closing parenthesis `)`.",
				Explanation: "Parentheses are used in C for grouping expressions and defining function arguments. Each opening parenthesis must have a corresponding closing one.",
			},
		},
		{
			Name:  "undefined-reference",
			Match: contains(`undefined reference to`),
			Template: Record{
				Kind:        LinkerError,
				Cause:       "The program refers to a function or global variable that has been declared but not defined (implemented), or the library containing its definition is not linked.",
				Location:    "Reference to an undefined symbol.",
				Fix:         "Define the symbol or link the library that provides it.",
				Explanation: "Linking combines compiled object files and resolves references to functions and variables. If a definition is missing, the linker cannot complete its task.",
			},
			Resolve: func(in Input, rec *Record) {
				m := symbolPattern.FindStringSubmatch(in.Diagnostic)
				if m == nil {
					return
				}
				rec.Location = fmt.Sprintf("Reference to undefined symbol '%s'", m[1])
				rec.Fix = fmt.Sprintf("Provide a definition (implementation) for '%s', or link the necessary library using a compiler flag (e.g., `-lm` for math functions).", m[1])
			},
		},
		{
			Name:  "syntax",
			Match: contains(`syntax error`),
			Template: Record{
				Kind:        SyntaxError,
				Cause:       "The code violates the grammatical rules of the C language.",
				Location:    "Near the reported error message.",
				Fix:         "Carefully review the code around the error message for misplaced keywords, missing operators, or incorrect statement structures.",
				Explanation: "Syntax errors prevent the compiler from understanding the structure of your code.",
				Fallback:    true,
			},
		},
		{
			Name:  "semantic",
			Match: contains(`error:`),
			Template: Record{
				Kind:        SemanticError,
				Cause:       "The code is grammatically correct but violates C's type or meaning rules (e.g., using a variable out of scope, incorrect types in operations).",
				Location:    "General location indicated by compiler error.",
				Fix:         "Analyze variable scopes, types, and the logic of operations around the error message.",
				Explanation: "Semantic errors relate to the meaning of the code, not just its structure.",
				Fallback:    true,
			},
		},
		{
			Name:  "generic",
			Match: func(Input) bool { return true },
			Template: Record{
				Kind:        GenericCompilationError,
				Cause:       "An unspecified error occurred during the compilation process.",
				Location:    "General location indicated by compiler error.",
				Fix:         "Examine the compiler error message carefully and cross-reference with C language rules. Start by checking for simple typos or missing punctuation.",
				Explanation: "This is a general category for errors that don't fit more specific classifications.",
				Fallback:    true,
			},
		},
	}
}
