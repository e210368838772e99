package main

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/go-wordrnn/internal/batch"
	"github.com/example/go-wordrnn/internal/safetensors"
	"github.com/example/go-wordrnn/internal/sample"
	"github.com/example/go-wordrnn/internal/server"
	"github.com/example/go-wordrnn/internal/testutil"
	"github.com/example/go-wordrnn/internal/vocab"
)

// writeCorpus creates name in a fresh temp dir, changes into it and returns
// the corpus path.
func writeCorpus(t *testing.T, name, content string) string {
	t.Helper()

	path := testutil.WriteFile(t, name, content)
	t.Chdir(filepath.Dir(path))
	return path
}

// ---------------------------------------------------------------------------
// tokenize / detokenize
// ---------------------------------------------------------------------------

func TestTokenizeCmd(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"word lines", "", []string{"tokenize", "--text", "I can't go."}, "I\nca\nn't\ngo\n.\n"},
		{"word json", "", []string{"tokenize", "--json", "--text", "I can't go."}, `["I","ca","n't","go","."]` + "\n"},
		{"stdin keeps newlines", "\nHi!\n", []string{"tokenize"}, "\\n\nHi\n!\n\\n\n"},
		{"char mode", "", []string{"tokenize", "--mode", "char", "--text", "ab"}, "a\nb\n"},
		{"lowercase", "", []string{"tokenize", "--lowercase", "--text", "Hello World"}, "hello\nworld\n"},
		{"pristine", "", []string{"tokenize", "--pristine-input", "--text", "I can't"}, "I\ncan't\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runCLI(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("tokenize: %v", err)
			}
			if got != tt.want {
				t.Errorf("output = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestTokenizeCmd_EmptyInput(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := runCLI(t, "  \n", "tokenize"); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestTokenizeCmd_SubwordNeedsModel(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := runCLI(t, "", "tokenize", "--mode", "subword", "--text", "hi"); err == nil {
		t.Fatal("expected error without a sentencepiece model")
	}
}

func TestDetokenizeCmd(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"args", "", []string{"detokenize", "I", "ca", "n't", "go", "."}, "I can't go.\n"},
		{"stdin lines", "I\nca\n\nn't\ngo\n.\n", []string{"detokenize"}, "I can't go.\n"},
		{"pristine output", "", []string{"detokenize", "--pristine-output", "I", "ca", "n't"}, "I ca n't\n"},
		{"char mode", "", []string{"detokenize", "--mode", "char", "a", "b"}, "ab\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runCLI(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("detokenize: %v", err)
			}
			if got != tt.want {
				t.Errorf("output = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestDetokenizeCmd_RejectsSubword(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := runCLI(t, "", "detokenize", "--mode", "subword", "x"); err == nil {
		t.Fatal("expected error in subword mode")
	}
}

// ---------------------------------------------------------------------------
// reshape / sample
// ---------------------------------------------------------------------------

func TestReshapeCmd(t *testing.T) {
	t.Chdir(t.TempDir())

	ids := "[0,1,2,3,4,5,6,7,8,9,10,11,12,13,14,15,16,17,18,19]"
	got, err := runCLI(t, ids, "reshape", "--batch-size", "2", "--seq-length", "4", "--seq-step", "2")
	if err != nil {
		t.Fatalf("reshape: %v", err)
	}

	want := strings.Join([]string{
		"[0,1,2,3]", "[16,17,18,19]",
		"[4,5,6,7]", "[2,3,4,5]",
		"[8,9,10,11]", "[6,7,8,9]",
		"[12,13,14,15]", "[10,11,12,13]",
	}, "\n") + "\n"
	if got != want {
		t.Errorf("output =\n%s\nwant\n%s", got, want)
	}
}

func TestReshapeCmd_Errors(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := runCLI(t, "[0,1,2,3,4,5,6,7,8,9]", "reshape", "--batch-size", "5", "--seq-length", "4", "--seq-step", "2")
	if !errors.Is(err, batch.ErrInsufficientData) {
		t.Errorf("err = %v; want ErrInsufficientData", err)
	}

	_, err = runCLI(t, "[]", "reshape", "--batch-size", "1", "--seq-length", "4", "--seq-step", "2")
	if !errors.Is(err, batch.ErrInvalidArgument) {
		t.Errorf("err = %v; want ErrInvalidArgument", err)
	}

	if _, err = runCLI(t, "not json", "reshape"); err == nil {
		t.Error("expected decode error")
	}
}

func TestSampleCmd(t *testing.T) {
	t.Chdir(t.TempDir())

	got, err := runCLI(t, "", "sample", "--probs", "[0, 1, 0]", "-n", "3", "--seed", "42")
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if got != "1\n1\n1\n" {
		t.Errorf("output = %q; want three draws of index 1", got)
	}

	got, err = runCLI(t, "[0.5, 0.5]\n", "sample", "--seed", "42")
	if err != nil {
		t.Fatalf("sample from stdin: %v", err)
	}
	if got != "0\n" && got != "1\n" {
		t.Errorf("output = %q; want a single index", got)
	}
}

func TestSampleCmd_Errors(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := runCLI(t, "", "sample", "--probs", "[0.5, 0.5]", "--temperature", "0")
	if !errors.Is(err, sample.ErrInvalidTemperature) {
		t.Errorf("err = %v; want ErrInvalidTemperature", err)
	}

	_, err = runCLI(t, "", "sample", "--probs", "[]")
	if !errors.Is(err, sample.ErrEmptyDistribution) {
		t.Errorf("err = %v; want ErrEmptyDistribution", err)
	}

	if _, err = runCLI(t, "", "sample", "--probs", "[1]", "-n", "0"); err == nil {
		t.Error("expected error for zero draws")
	}
}

// ---------------------------------------------------------------------------
// prepare / inspect / seeds / doctor
// ---------------------------------------------------------------------------

func TestPrepareAndInspect(t *testing.T) {
	writeCorpus(t, "input.txt", "abcdefghij")

	geometry := []string{
		"--corpus", "input.txt", "--mode", "char",
		"--vocab", "out/vocab.json", "--batches", "out/batches.safetensors",
		"--batch-size", "2", "--seq-length", "4", "--seq-step", "2",
	}

	out, err := runCLI(t, "", append([]string{"prepare"}, geometry...)...)
	if err != nil {
		t.Fatalf("prepare: %v\n%s", err, out)
	}
	for _, want := range []string{"1 lines, 10 characters", "vocabulary: 10 tokens", "batches: 2 x [2, 4]"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}

	v, err := vocab.Load("out/vocab.json")
	if err != nil {
		t.Fatalf("vocab.Load: %v", err)
	}
	if v.Size() != 10 {
		t.Errorf("vocab size = %d; want 10", v.Size())
	}

	tensor, meta, err := safetensors.LoadBatches("out/batches.safetensors")
	if err != nil {
		t.Fatalf("LoadBatches: %v", err)
	}
	if tensor.NumBatches() != 2 || tensor.SeqLength != 4 {
		t.Errorf("tensor = %d batches of length %d; want 2 of 4", tensor.NumBatches(), tensor.SeqLength)
	}
	if meta[safetensors.MetaMode] != "char" || meta[safetensors.MetaSeqStep] != "2" {
		t.Errorf("metadata = %v", meta)
	}

	out, err = runCLI(t, "", append([]string{"inspect", "--batch", "0"}, geometry...)...)
	if err != nil {
		t.Fatalf("inspect: %v\n%s", err, out)
	}
	if !strings.Contains(out, "mode: char\n") {
		t.Errorf("inspect output missing metadata:\n%s", out)
	}
	if !strings.HasSuffix(out, "0\t\"abcd\"\n1\t\"cdef\"\n") {
		t.Errorf("inspect output missing decoded rows:\n%s", out)
	}

	if _, err = runCLI(t, "", append([]string{"inspect", "--batch", "2"}, geometry...)...); err == nil {
		t.Error("expected error for out-of-range batch")
	}
}

func TestPrepareCmd_ReuseVocab(t *testing.T) {
	writeCorpus(t, "input.txt", "abcdefghij")

	if err := os.WriteFile("vocab.json", []byte(`{"tokens":["a","b"]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := runCLI(t, "", "prepare", "--reuse-vocab", "--mode", "char",
		"--corpus", "input.txt", "--vocab", "vocab.json", "--batches", "b.safetensors",
		"--batch-size", "1", "--seq-length", "4", "--seq-step", "2")
	if !errors.Is(err, vocab.ErrUnknownToken) {
		t.Fatalf("err = %v; want ErrUnknownToken from the reused vocabulary", err)
	}
	if _, statErr := os.Stat("b.safetensors"); statErr == nil {
		t.Error("batches file written despite failure")
	}
}

func TestPrepareCmd_InsufficientData(t *testing.T) {
	writeCorpus(t, "input.txt", "one two three")

	out, err := runCLI(t, "", "prepare", "--corpus", "input.txt",
		"--vocab", "v.json", "--batches", "b.safetensors",
		"--batch-size", "4", "--seq-length", "4", "--seq-step", "2")
	if !errors.Is(err, batch.ErrInsufficientData) {
		t.Fatalf("err = %v; want ErrInsufficientData", err)
	}
	if !strings.Contains(out, "prepare failed") {
		t.Errorf("expected failure line, got:\n%s", out)
	}
}

func TestSeedsCmd(t *testing.T) {
	writeCorpus(t, "input.txt", "short\nthe longest line here\nmid line\n")

	out, err := runCLI(t, "", "seeds", "--corpus", "input.txt",
		"--num-seeds", "1", "--max-seed-length", "100", "--seed", "7")
	if err != nil {
		t.Fatalf("seeds: %v", err)
	}
	if out != "the longest line\n" {
		t.Errorf("output = %q; want %q", out, "the longest line\n")
	}
}

func TestDoctorCmd(t *testing.T) {
	writeCorpus(t, "input.txt", "abcdefghij")

	out, err := runCLI(t, "", "doctor", "--corpus", "input.txt", "--mode", "char",
		"--vocab", "missing.json", "--batch-size", "2", "--seq-length", "4", "--seq-step", "2")
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	if !strings.Contains(out, "doctor checks passed") {
		t.Errorf("output:\n%s", out)
	}
}

func TestDoctorCmd_ReportsFailures(t *testing.T) {
	t.Chdir(t.TempDir())

	// An invalid geometry is reported by the checks instead of rejected up front.
	out, err := runCLI(t, "", "doctor", "--corpus", "missing.txt",
		"--batch-size", "2", "--seq-length", "4", "--seq-step", "4")
	if err == nil {
		t.Fatal("expected doctor to fail")
	}
	for _, want := range []string{"FAIL: batch geometry", "FAIL: corpus missing.txt"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// ---------------------------------------------------------------------------
// health
// ---------------------------------------------------------------------------

func TestHealthCmd(t *testing.T) {
	t.Chdir(t.TempDir())

	ts := httptest.NewServer(server.NewHandler())
	defer ts.Close()

	addr := strings.TrimPrefix(ts.URL, "http://")
	out, err := runCLI(t, "", "health", "--addr", addr)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if !strings.HasPrefix(out, "ok (version ") {
		t.Errorf("output = %q; want ok with a version", out)
	}
}

func TestHealthCmd_Unreachable(t *testing.T) {
	t.Chdir(t.TempDir())

	ts := httptest.NewServer(server.NewHandler())
	addr := strings.TrimPrefix(ts.URL, "http://")
	ts.Close()

	if _, err := runCLI(t, "", "health", "--addr", addr); err == nil {
		t.Fatal("expected error for a closed server")
	}
}

// ---------------------------------------------------------------------------
// bench
// ---------------------------------------------------------------------------

func TestBenchCmd_JSON(t *testing.T) {
	writeCorpus(t, "input.txt", "abcdefghij")

	out, err := runCLI(t, "", "bench", "--corpus", "input.txt", "--mode", "char",
		"--batch-size", "2", "--seq-length", "4", "--seq-step", "2",
		"--runs", "2", "--format", "json")
	if err != nil {
		t.Fatalf("bench: %v\n%s", err, out)
	}

	var report struct {
		Runs []struct {
			Tokens int `json:"tokens"`
		} `json:"runs"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("bench output is not JSON: %v\n%s", err, out)
	}
	if len(report.Runs) != 2 || report.Runs[0].Tokens != 10 {
		t.Errorf("runs = %+v", report.Runs)
	}
}

func TestBenchCmd_Errors(t *testing.T) {
	writeCorpus(t, "input.txt", "abcdefghij")

	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"--format", "xml"}},
		{"zero runs", []string{"--runs", "0"}},
		{"threshold not met", []string{"--runs", "1", "--min-tokens-per-sec", "1e18"}},
		{"insufficient data", []string{"--batch-size", "64"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Later flags win, so tt.args may override the batch size.
			args := append([]string{"bench", "--corpus", "input.txt", "--mode", "char",
				"--batch-size", "2", "--seq-length", "4", "--seq-step", "2"}, tt.args...)
			if _, err := runCLI(t, "", args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}
