// Package testutil provides shared fixtures and skip helpers for tests.
//
// Skip helpers call t.Skip with a clear human-readable reason when the named
// prerequisite is absent, so tests that need an external model remain
// runnable in partial environments without failing noisily.
//
// Typical usage:
//
//	func TestSubwordPrepare(t *testing.T) {
//	    model := testutil.RequireSentencePieceModel(t)
//	    ...
//	}
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SentencePieceModelEnv overrides the SentencePiece model lookup.
const SentencePieceModelEnv = "WORDRNN_SENTENCEPIECE_MODEL"

// RequireSentencePieceModel returns the path of a SentencePiece model, taken
// from SentencePieceModelEnv or found as models/sentencepiece.model in the
// working directory or one of its parents. It skips the test when neither
// exists.
func RequireSentencePieceModel(tb testing.TB) string {
	tb.Helper()

	if p := os.Getenv(SentencePieceModelEnv); p != "" {
		if _, err := os.Stat(p); err != nil {
			tb.Skipf("sentencepiece model not found at %s=%q", SentencePieceModelEnv, p)
			return ""
		}
		return p
	}

	dir, err := filepath.Abs(".")
	if err != nil {
		tb.Fatalf("abs path: %v", err)
	}

	for {
		candidate := filepath.Join(dir, "models", "sentencepiece.model")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	tb.Skipf("models/sentencepiece.model not found; set %s to override", SentencePieceModelEnv)
	return ""
}

// WriteFile writes content to name inside a fresh temp dir and returns the
// full path.
func WriteFile(tb testing.TB, name, content string) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		tb.Fatalf("WriteFile: %v", err)
	}
	return path
}
