package text

import (
	"strings"

	"github.com/example/go-wordrnn/internal/rewrite"
)

var decodeRules = rewrite.Rules{
	// Newlines.
	rewrite.MustCompile(`[ ]?\\n[ ]?`, "\n"),
	// Contractions.
	rewrite.MustCompile(`\b(can)\s(not)\b`, `$1$2`),
	rewrite.MustCompile(`\b(d)\s('ye)\b`, `$1$2`),
	rewrite.MustCompile(`\b(gim)\s(me)\b`, `$1$2`),
	rewrite.MustCompile(`\b(gon)\s(na)\b`, `$1$2`),
	rewrite.MustCompile(`\b(got)\s(ta)\b`, `$1$2`),
	rewrite.MustCompile(`\b(lem)\s(me)\b`, `$1$2`),
	rewrite.MustCompile(`\b(mor)\s('n)\b`, `$1$2`),
	rewrite.MustCompile(`\b(wan)\s(na)\b`, `$1$2`),
	// Ending quotes.
	rewrite.MustCompile(`([^' ]) ('ll|'re|'ve|n't)\b`, `$1$2`),
	rewrite.MustCompile(`([^' ]) ('s|'m|'d)\b`, `$1$2`),
	rewrite.MustCompile(`[ ]?”`, `"`),
	// Double dashes.
	rewrite.MustCompile(`[ ]?--[ ]?`, `--`),
	// Parens and brackets.
	rewrite.MustCompile(`([\[({<]) `, `$1`),
	rewrite.MustCompile(` ([\])}>])`, `$1`),
	rewrite.MustCompile(`([\])}>]) ([:;,.])`, `$1$2`),
	// Punctuation.
	rewrite.MustCompile(`([^']) ' `, `$1' `),
	rewrite.MustCompile(` ([?!.])`, `$1`),
	rewrite.MustCompile(`([^.])\s(\.)([\])}>"']*)\s*$`, `$1$2$3`),
	rewrite.MustCompile(`([#$]) `, `$1`),
	rewrite.MustCompile(` ([;%:,])`, `$1`),
	// Starting quotes.
	rewrite.MustCompile(`(“)[ ]?`, `"`),
}

// Detokenize joins word tokens back into text, undoing the spacing Tokenize
// introduced around punctuation, quotes, brackets and contractions. The result
// has no leading or trailing whitespace.
func Detokenize(tokens []string) string {
	joined := strings.Join(tokens, " ")
	return strings.TrimSpace(decodeRules.Apply(joined))
}
