// Package text turns raw text into token strings and back.
//
// The word tokenizer follows Penn Treebank conventions, extended to handle
// several sentences at once and to keep newlines as an explicit token. The
// detokenizer is a separate heuristic: it is not derived from the tokenizer and
// only guarantees that re-tokenizing its output reproduces the same tokens for
// ordinary prose.
package text

import (
	"strings"

	"github.com/example/go-wordrnn/internal/rewrite"
)

// Distinguished tokens produced by Tokenize.
const (
	LeftQuote  = "“"
	RightQuote = "”"
	// Newline stands in for a line break: a backslash followed by 'n'.
	Newline = `\n`
)

var encodeRules = rewrite.Rules{
	// Starting quotes.
	rewrite.MustCompile(`(\s)"`, `$1 “ `),
	rewrite.MustCompile(`([ (\[{<])"`, `$1 “ `),
	// Punctuation.
	rewrite.MustCompile(`([:,])([^\d])`, ` $1 $2`),
	rewrite.MustCompile(`([:,])$`, ` $1 `),
	rewrite.MustCompile(`\.\.\.`, ` ... `),
	rewrite.MustCompile(`([;@#$%&])`, ` $1 `),
	rewrite.MustCompile(`([?!.])`, ` $1 `),
	rewrite.MustCompile(`([^'])' `, `$1 ' `),
	// Parens and brackets.
	rewrite.MustCompile(`([\]\[(){}<>])`, ` $1 `),
	// Double dashes.
	rewrite.MustCompile(`--`, ` -- `),
	// Ending quotes.
	rewrite.MustCompile(`"`, ` ” `),
	rewrite.MustCompile(`([^' ])('s|'m|'d) `, `$1 $2 `),
	rewrite.MustCompile(`([^' ])('ll|'re|'ve|n't) `, `$1 $2 `),
	// Contractions.
	rewrite.MustCompile(`\b(can)(not)\b`, ` $1 $2 `),
	rewrite.MustCompile(`\b(d)('ye)\b`, ` $1 $2 `),
	rewrite.MustCompile(`\b(gim)(me)\b`, ` $1 $2 `),
	rewrite.MustCompile(`\b(gon)(na)\b`, ` $1 $2 `),
	rewrite.MustCompile(`\b(got)(ta)\b`, ` $1 $2 `),
	rewrite.MustCompile(`\b(lem)(me)\b`, ` $1 $2 `),
	rewrite.MustCompile(`\b(mor)('n)\b`, ` $1 $2 `),
	rewrite.MustCompile(`\b(wan)(na)\b`, ` $1 $2 `),
	// Newlines.
	rewrite.MustCompile(`\n`, ` `+Newline+` `),
}

// Tokenize splits text into word tokens. Punctuation, brackets and clitics
// become their own tokens, double quotes become LeftQuote or RightQuote, and
// every newline becomes a Newline token. No returned token contains
// whitespace.
func Tokenize(text string) []string {
	padded := " " + text + " "
	return strings.Fields(encodeRules.Apply(padded))
}
