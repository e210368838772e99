package text

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode is returned by ParseMode for unrecognised token modes.
var ErrUnknownMode = errors.New("unknown token mode")

// Mode selects how text is cut into tokens.
type Mode string

const (
	// ModeWord uses the rule-based word tokenizer.
	ModeWord Mode = "word"
	// ModeChar treats every code point as a token.
	ModeChar Mode = "char"
	// ModeSubword maps text straight to SentencePiece IDs; it has no string tokens.
	ModeSubword Mode = "subword"
)

// ParseMode normalizes a mode name. An empty string selects ModeWord.
func ParseMode(raw string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(raw))); m {
	case "":
		return ModeWord, nil
	case ModeWord, ModeChar, ModeSubword:
		return m, nil
	default:
		return "", fmt.Errorf("%w %q (expected %s|%s|%s)", ErrUnknownMode, raw, ModeWord, ModeChar, ModeSubword)
	}
}

// Split cuts text into tokens for the given mode. With pristine set, word mode
// assumes the input is already tokenized and only splits on whitespace.
// ModeSubword has no string tokens and falls back to word splitting.
func Split(s string, mode Mode, pristine bool) []string {
	switch mode {
	case ModeChar:
		tokens := make([]string, 0, len(s))
		for _, r := range s {
			tokens = append(tokens, string(r))
		}
		return tokens
	default:
		if pristine {
			return strings.Fields(s)
		}
		return Tokenize(s)
	}
}

// Join is the inverse of Split. With pristine set, word tokens are joined with
// single spaces and no detokenization is attempted.
func Join(tokens []string, mode Mode, pristine bool) string {
	switch mode {
	case ModeChar:
		return strings.Join(tokens, "")
	default:
		if pristine {
			return strings.Join(tokens, " ")
		}
		return Detokenize(tokens)
	}
}
