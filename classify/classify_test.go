package classify

import (
	"fmt"
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const sampleSource = `#include <stdio.h>
int main(void) {
    return 0
}`

func TestClassify_MissingTerminatorQuotesLine(t *testing.T) {
	c := New()
	rec := c.Classify(sampleSource, "foo.c:3:5: error: expected ';' before 'return'")

	if rec.Kind != SyntaxError {
		t.Fatalf("Kind = %v, want %v", rec.Kind, SyntaxError)
	}
	if rec.Location != "Line 3: return 0" {
		t.Errorf("Location = %q, want %q", rec.Location, "Line 3: return 0")
	}
	if rec.Rule != "missing-terminator" {
		t.Errorf("Rule = %q, want missing-terminator", rec.Rule)
	}
	if rec.Fallback {
		t.Error("Fallback = true for a specific rule")
	}
}

func TestClassify_LineOutOfRange(t *testing.T) {
	rec := New().Classify("int x = 1", "foo.c:42:1: error: expected ';' before '}' token")
	if rec.Location != "Around the statement before the error." {
		t.Errorf("Location = %q, want fallback location", rec.Location)
	}
}

func TestClassify_LinkerErrorExtractsSymbol(t *testing.T) {
	rec := New().Classify(sampleSource, "/usr/bin/ld: main.o: in function `main':\nmain.c:(.text+0x1e): undefined reference to `add'")

	if rec.Kind != LinkerError {
		t.Fatalf("Kind = %v, want %v", rec.Kind, LinkerError)
	}
	if !strings.Contains(rec.Location, "'add'") {
		t.Errorf("Location = %q, want symbol add", rec.Location)
	}
	if !strings.Contains(rec.Fix, "'add'") {
		t.Errorf("Fix = %q, want symbol add", rec.Fix)
	}
}

func TestClassify_RuleOrder(t *testing.T) {
	tests := []struct {
		name   string
		source string
		diag   string
		kind   Kind
		rule   string
	}{
		{"clang undeclared", "x = y;", "a.c:1:5: error: use of undeclared identifier 'y'", SemanticError, "undeclared-identifier"},
		{"gcc undeclared", "x = y;", "a.c:1:5: error: 'y' undeclared (first use in this function)", SemanticError, "undeclared-identifier"},
		{"missing rhs", "int a = ;", "a.c:1:9: error: expected expression before ';' token", SyntaxError, "missing-rhs"},
		{"expected expression without assignment", "f(,);", "a.c:1:3: error: expected expression before ',' token", SemanticError, "semantic"},
		{"conflicting types", "int f(); char f();", "a.c:1:15: error: conflicting types for 'f'", SemanticError, "type-mismatch"},
		{"incompatible types", "int a = s;", "a.c:1:9: error: incompatible types when initializing type 'int'", SemanticError, "type-mismatch"},
		{"missing paren", "if (a {", "a.c:1:6: error: expected ')' before '{' token", SyntaxError, "unbalanced-parenthesis"},
		{"terminator beats paren", "f(a", "a.c:1:4: error: expected ';' or ')' before end", SyntaxError, "missing-terminator"},
		{"generic syntax", "x", "parse: syntax error near x", SyntaxError, "syntax"},
		{"generic error marker", "x", "a.c:1:1: error: something odd", SemanticError, "semantic"},
		{"nothing recognizable", "x", "ld returned 1 exit status", GenericCompilationError, "generic"},
	}
	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := c.Classify(tt.source, tt.diag)
			if rec.Kind != tt.kind || rec.Rule != tt.rule {
				t.Errorf("Classify() = (%v, %s), want (%v, %s)", rec.Kind, rec.Rule, tt.kind, tt.rule)
			}
		})
	}
}

func TestClassify_UndeclaredIdentifierText(t *testing.T) {
	got := New().Classify("x = y;", "a.c:1:5: error: use of undeclared identifier 'y'")
	want := Record{
		Kind:        SemanticError,
		Cause:       "A variable or function is used without being declared first.",
		Location:    "Use of undeclared identifier 'y'",
		Fix:         "Declare 'y' before using it, or ensure it's spelled correctly.",
		Explanation: "All variables and functions in C must be declared with their type before they can be used.",
		Rule:        "undeclared-identifier",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Classify() mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifyText(t *testing.T) {
	input := "int main() {\n  int a = 5\n  return a;\n}\nError: main.c:2:12: error: expected ';' before 'return'"
	rec := New().ClassifyText(input)

	want := Record{Kind: SyntaxError, Location: "Line 2: int a = 5", Rule: "missing-terminator"}
	opts := cmpopts.IgnoreFields(Record{}, "Cause", "Fix", "Explanation")
	if diff := cmp.Diff(want, rec, opts); diff != "" {
		t.Errorf("ClassifyText() mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifyText_MissingSentinel(t *testing.T) {
	rec := New().ClassifyText("int main() { return 0 }")
	if rec.Kind != GenericCompilationError {
		t.Errorf("Kind = %v, want %v", rec.Kind, GenericCompilationError)
	}
	if rec.Cause != "unparseable input" {
		t.Errorf("Cause = %q, want %q", rec.Cause, "unparseable input")
	}
	if !rec.Fallback {
		t.Error("Fallback = false, want true")
	}
}

func TestClassify_CustomRulesWithoutCatchAll(t *testing.T) {
	c := New(Rule{
		Name:     "never",
		Match:    func(Input) bool { return false },
		Template: Record{Kind: SyntaxError},
	})
	rec := c.Classify("x", "y")
	if rec.Kind != GenericCompilationError || !rec.Fallback || rec.Rule != "none" {
		t.Errorf("Classify() = %+v, want generic fallback", rec)
	}
}

func TestRules_ReturnsCopy(t *testing.T) {
	c := New()
	rules := c.Rules()
	rules[0].Name = "mutated"
	if c.Rules()[0].Name == "mutated" {
		t.Error("Rules() exposed internal slice")
	}
}

func TestKind_String(t *testing.T) {
	tests := map[Kind]string{
		SyntaxError:             "Syntax Error",
		SemanticError:           "Semantic Error",
		LinkerError:             "Linker Error",
		GenericCompilationError: "Compilation Error (Generic)",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestRecord_JSONCarriesKindName(t *testing.T) {
	rec := New().ClassifyText("int main() {\n  foo();\n}\nError: undefined reference to `foo'")

	data, err := gojson.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"kind":"Linker Error"`) {
		t.Errorf("Marshal() = %s, want kind as display name", data)
	}

	var back Record
	if err := gojson.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back.Kind != LinkerError {
		t.Errorf("Kind = %v, want %v", back.Kind, LinkerError)
	}

	var k Kind
	if err := k.UnmarshalText([]byte("Typo Error")); err == nil {
		t.Error("UnmarshalText(unknown) error = nil, want error")
	}
}

func ExampleClassifier_ClassifyText() {
	c := New()
	rec := c.ClassifyText("int main() {\n  foo();\n}\nError: undefined reference to `foo'")
	fmt.Println(rec.Kind)
	fmt.Println(rec.Location)
	// Output:
	// Linker Error
	// Reference to undefined symbol 'foo'
}

func ExampleRecord_String() {
	rec := New().Classify("int a = 1\nreturn a;", "t.c:1:10: error: expected ';' before 'return'")
	fmt.Println(strings.SplitN(rec.String(), "\n", 4)[:3])
	// Output:
	// [Error Type: Syntax Error Cause: A semicolon is missing at the end of a statement. Location: Line 1: int a = 1]
}
