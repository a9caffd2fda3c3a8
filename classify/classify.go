package classify

import "strings"

// Sentinel separates source text from diagnostic text in combined input.
const Sentinel = "Error:"

var unparseable = Record{
	Kind:        GenericCompilationError,
	Cause:       ErrUnparseable.Error(),
	Location:    "Unknown",
	Fix:         "Provide C code followed by 'Error:' and the compiler error message.",
	Explanation: "The input could not be split into source code and a compiler diagnostic.",
	Rule:        "unparseable",
	Fallback:    true,
}

var noMatch = Record{
	Kind:        GenericCompilationError,
	Cause:       "No rule matched the diagnostic.",
	Location:    "General location indicated by compiler error.",
	Fix:         "Examine the compiler error message carefully.",
	Explanation: "This is a general category for errors that don't fit more specific classifications.",
	Rule:        "none",
	Fallback:    true,
}

// Classifier applies an ordered rule list; the first matching rule wins.
// A Classifier is immutable and safe for concurrent use.
type Classifier struct {
	rules []Rule
}

// New creates a Classifier. With no rules it uses DefaultRules.
func New(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: append([]Rule(nil), rules...)}
}

// Rules returns a copy of the rule list in evaluation order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Classify maps a diagnostic for source onto a Record.
func (c *Classifier) Classify(source, diagnostic string) Record {
	in := Input{Source: source, Diagnostic: diagnostic}
	for _, r := range c.rules {
		if r.Match != nil && r.Match(in) {
			return r.Apply(in)
		}
	}
	return noMatch
}

// ClassifyText splits combined input at the first Sentinel into source and
// diagnostic halves and classifies them. Input without the sentinel yields a
// generic record whose cause is "unparseable input".
func (c *Classifier) ClassifyText(input string) Record {
	source, diagnostic, ok := strings.Cut(input, Sentinel)
	if !ok {
		return unparseable
	}
	return c.Classify(strings.TrimSpace(source), strings.TrimSpace(diagnostic))
}
