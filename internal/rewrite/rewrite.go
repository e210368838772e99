// Package rewrite applies ordered lists of regular-expression rewrites to text.
//
// Each rule runs over the whole output of the previous rule, so the order of a
// rule table is part of its meaning. Patterns use regexp2 syntax, which keeps
// Unicode-aware \b, \s and \d classes and lets $ match before a final newline.
package rewrite

import (
	"fmt"

	"github.com/dlclark/regexp2"
)

// Rule is a compiled pattern and the replacement template applied to every
// non-overlapping match. Templates reference groups as $1, ${2}; a literal
// dollar sign is written $$.
type Rule struct {
	Pattern     *regexp2.Regexp
	Replacement string
}

// Rules is an ordered rule table.
type Rules []Rule

// MustCompile builds a Rule and panics if the pattern does not compile.
// Rule tables are package-level values, so a bad pattern is a programming error.
func MustCompile(pattern, replacement string) Rule {
	return Rule{
		Pattern:     regexp2.MustCompile(pattern, regexp2.None),
		Replacement: replacement,
	}
}

// Apply runs every rule in order over the current text and returns the result.
func (rs Rules) Apply(text string) string {
	for _, r := range rs {
		text = r.Apply(text)
	}
	return text
}

// Apply replaces all matches of the rule in text.
func (r Rule) Apply(text string) string {
	out, err := r.Pattern.Replace(text, r.Replacement, -1, -1)
	if err != nil {
		// Replace only fails on a match timeout, and no rule sets one.
		panic(fmt.Errorf("rewrite %q: %w", r.Pattern.String(), err))
	}
	return out
}

// String renders the rule for debugging.
func (r Rule) String() string {
	return fmt.Sprintf("%s -> %q", r.Pattern.String(), r.Replacement)
}
