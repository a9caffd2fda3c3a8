package dispatch

import (
	"fmt"
	"strings"

	"github.com/jonwraymond/tooldiscovery/tooldoc"
	"github.com/jonwraymond/toolfoundation/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tool is the closed set of tools the engine can run.
type Tool uint8

const (
	Calculator Tool = iota + 1
	ArithmeticCalculator
	OperatorDelimiterRecognizer
	ParserActionPrinter
	SemanticActionSimulator
	BooleanExpressionEvaluator
	ReverseConcatenate
	CompilerErrorClassifier
	CommandLanguageInterpreter
	RunFullCCode
)

// Toolchain ids used by toolchain-backed tools.
const (
	ToolchainArithmetic    = "arithmetic_calculator"
	ToolchainLexerFeatures = "lexer_features"
	ToolchainDeclarations  = "variable_declarations"
	ToolchainSemantic      = "semantic_action_simulator"
	ToolchainBoolean       = "boolean_evaluator"
	ToolchainVarExtractor  = "var_extractor"
)

var toolNames = map[Tool]string{
	Calculator:                  "calculator",
	ArithmeticCalculator:        "arithmetic_calculator",
	OperatorDelimiterRecognizer: "operator_delimiter_recognizer",
	ParserActionPrinter:         "parser_action_printer",
	SemanticActionSimulator:     "semantic_action_simulator",
	BooleanExpressionEvaluator:  "boolean_expression_evaluator",
	ReverseConcatenate:          "reverse_concatenate",
	CompilerErrorClassifier:     "compiler_error_classifier",
	CommandLanguageInterpreter:  "command_language_interpreter",
	RunFullCCode:                "run_full_c_code",
}

// aliases maps alternate request names onto tools.
var aliases = map[string]Tool{
	"flex_bison_arithmetic_calculator": ArithmeticCalculator,
}

// String returns the tool's request name.
func (t Tool) String() string {
	if name, ok := toolNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tool(%d)", uint8(t))
}

// Valid reports whether t is a member of the enumeration.
func (t Tool) Valid() bool {
	_, ok := toolNames[t]
	return ok
}

// ParseTool resolves a request name to a Tool.
func ParseTool(name string) (Tool, error) {
	name = strings.TrimSpace(name)
	for t, n := range toolNames {
		if n == name {
			return t, nil
		}
	}
	if t, ok := aliases[name]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTool, name)
}

// Tools returns every tool in declaration order.
func Tools() []Tool {
	out := make([]Tool, 0, len(toolNames))
	for t := Calculator; t <= RunFullCCode; t++ {
		out = append(out, t)
	}
	return out
}

// Info describes a tool for listings and discovery.
type Info struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`

	// Toolchain is the build-cache id backing the tool, if any.
	Toolchain string `json:"toolchain,omitempty"`
}

type toolMeta struct {
	description string
	tags        []string
	toolchain   string
	notes       string
	example     string
}

var meta = map[Tool]toolMeta{
	Calculator: {
		description: "Evaluates typed numeric assignments such as `int x = 2 * (3 + 4);` in order.",
		tags:        []string{"arithmetic", "expression", "assignment"},
		notes:       "Earlier results are substituted into later expressions. Only digits, + - * / ( ) . and spaces are evaluated.",
		example:     "int a = 10;\nfloat b = a / 4;",
	},
	ArithmeticCalculator: {
		description: "Evaluates an arithmetic expression with a generated parser.",
		tags:        []string{"arithmetic", "parser", "generated"},
		toolchain:   ToolchainArithmetic,
		notes:       "The trimmed input is passed as one line on stdin. Parser syntax errors are appended to the output.",
		example:     "3 + 4 * (2 - 1)",
	},
	OperatorDelimiterRecognizer: {
		description: "Lists the operators and delimiters found in C source.",
		tags:        []string{"lexer", "tokens", "generated"},
		toolchain:   ToolchainLexerFeatures,
		example:     "int main() { return a + b; }",
	},
	ParserActionPrinter: {
		description: "Prints the parser actions taken for C variable declarations.",
		tags:        []string{"parser", "declarations", "generated"},
		toolchain:   ToolchainDeclarations,
		example:     "int x, y = 5;",
	},
	SemanticActionSimulator: {
		description: "Simulates semantic actions over C statements.",
		tags:        []string{"parser", "semantic", "generated"},
		toolchain:   ToolchainSemantic,
		example:     "int x = 3; x = x + 1;",
	},
	BooleanExpressionEvaluator: {
		description: "Evaluates boolean expressions, one per line or inside printf strings.",
		tags:        []string{"boolean", "expression"},
		toolchain:   ToolchainBoolean,
		notes:       "C boilerplate lines (comments, directives, main, braces, return 0) are skipped.",
		example:     "1 && 0\n!(0 || 1)",
	},
	ReverseConcatenate: {
		description: "Reverses and concatenates the string variables printed by C code.",
		tags:        []string{"strings", "parser", "generated"},
		toolchain:   ToolchainVarExtractor,
		example:     "char *a = \"ab\";\nchar *b = \"cd\";\nprintf(\"%s%s\", a, b);",
	},
	CompilerErrorClassifier: {
		description: "Classifies a compiler diagnostic into a structured error record.",
		tags:        []string{"diagnostics", "compiler", "errors"},
		notes:       "Input is C source, then the marker `Error:`, then the diagnostic text.",
		example:     "int main() {\n  int a = 5\n  return 0;\n}\nError: main.c:3:3: error: expected ';' before 'return'",
	},
	CommandLanguageInterpreter: {
		description: "Runs a small line-oriented command language with variables and conditionals.",
		tags:        []string{"interpreter", "commands"},
		notes:       "Statements: set, show, add, multiply, divide, if ... then print, exit.",
		example:     "set x to 5\nadd x and 3\nif x > 2 then print big\nexit",
	},
	RunFullCCode: {
		description: "Compiles and runs a complete C program with the given standard input.",
		tags:        []string{"c", "compile", "run"},
		notes:       "Compilation failures include a diagnosis from the error classifier.",
		example:     "#include <stdio.h>\nint main() { puts(\"hi\"); return 0; }",
	},
}

// Title returns the display name of t.
func (t Tool) Title() string {
	// Casers carry state and are not shared across goroutines.
	return cases.Title(language.English).String(strings.ReplaceAll(t.String(), "_", " "))
}

// Info returns the tool's metadata.
func (t Tool) Info() Info {
	m := meta[t]
	return Info{
		Name:        t.String(),
		Title:       t.Title(),
		Description: m.description,
		Tags:        model.NormalizeTags(m.tags),
		Toolchain:   m.toolchain,
	}
}

// Doc returns the tool's documentation entry for a tooldoc store.
func (t Tool) Doc() tooldoc.DocEntry {
	m := meta[t]
	entry := tooldoc.DocEntry{
		Summary: m.description,
		Notes:   m.notes,
	}
	if m.example != "" {
		entry.Examples = []tooldoc.ToolExample{{
			Title: t.Title() + " example",
			Args:  map[string]any{"input": m.example},
		}}
	}
	return entry
}
