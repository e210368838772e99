// Package doctor provides preflight checks run before preparing a dataset.
package doctor

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/example/go-wordrnn/internal/batch"
	"github.com/example/go-wordrnn/internal/corpus"
	"github.com/example/go-wordrnn/internal/text"
	"github.com/example/go-wordrnn/internal/tokenizer"
	"github.com/example/go-wordrnn/internal/vocab"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// EncoderLoader opens a subword encoder from a model path.
type EncoderLoader func(path string) (tokenizer.Encoder, error)

// Config holds the inputs and injectable dependencies for each check.
type Config struct {
	CorpusPath    string
	CorpusOptions corpus.Options
	// VocabPath is checked only when the file exists.
	VocabPath string

	Mode          text.Mode
	PristineInput bool
	Lowercase     bool
	Geometry      batch.Geometry

	// SentencePieceModel is required in subword mode.
	SentencePieceModel string
	// LoadEncoder defaults to tokenizer.NewSentencePiece.
	LoadEncoder EncoderLoader
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(w io.Writer, check string, err error) {
	r.failures = append(r.failures, fmt.Sprintf("%s: %v", check, err))
	fmt.Fprintf(w, "%s %s: %v\n", FailMark, check, err)
}

func pass(w io.Writer, check, detail string) {
	fmt.Fprintf(w, "%s %s: %s\n", PassMark, check, detail)
}

// Run executes all checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	mode := cfg.Mode
	if mode == "" {
		mode = text.ModeWord
	}

	// ---- geometry ---------------------------------------------------------
	geometryOK := true
	if err := cfg.Geometry.Validate(); err != nil {
		geometryOK = false
		res.fail(w, "batch geometry", err)
	} else {
		pass(w, "batch geometry", fmt.Sprintf("batch_size=%d seq_length=%d seq_step=%d",
			cfg.Geometry.BatchSize, cfg.Geometry.SeqLength, cfg.Geometry.SeqStep))
	}

	// ---- corpus -----------------------------------------------------------
	s, err := corpus.Load(cfg.CorpusPath, cfg.CorpusOptions)
	if err != nil {
		res.fail(w, "corpus "+cfg.CorpusPath, err)
	} else {
		pass(w, "corpus "+cfg.CorpusPath, corpus.Measure(s).String())
	}
	corpusOK := err == nil
	if corpusOK && cfg.Lowercase {
		s = strings.ToLower(s)
	}

	// ---- subword model ----------------------------------------------------
	var enc tokenizer.Encoder
	if mode == text.ModeSubword {
		load := cfg.LoadEncoder
		if load == nil {
			load = func(path string) (tokenizer.Encoder, error) {
				return tokenizer.NewSentencePiece(path, cfg.Lowercase)
			}
		}
		enc, err = load(cfg.SentencePieceModel)
		if err != nil {
			res.fail(w, "sentencepiece model", err)
		} else {
			pass(w, "sentencepiece model", cfg.SentencePieceModel)
		}
	}

	// ---- vocabulary -------------------------------------------------------
	var v *vocab.Vocab
	switch _, statErr := os.Stat(cfg.VocabPath); {
	case cfg.VocabPath == "" || errors.Is(statErr, fs.ErrNotExist):
		pass(w, "vocabulary", "skipped (no file)")
	case mode == text.ModeSubword:
		pass(w, "vocabulary", "skipped (subword mode)")
	default:
		v, err = vocab.Load(cfg.VocabPath)
		if err != nil {
			res.fail(w, "vocabulary "+cfg.VocabPath, err)
		} else {
			pass(w, "vocabulary "+cfg.VocabPath, humanize.Comma(int64(v.Size()))+" tokens")
		}
	}

	// ---- token count and batches ------------------------------------------
	if !corpusOK || (mode == text.ModeSubword && enc == nil) {
		return res
	}

	var n int
	if mode == text.ModeSubword {
		ids, err := tokenizer.EncodeLines(enc, strings.Split(s, "\n"), -1)
		if err != nil {
			res.fail(w, "tokenize corpus", err)
			return res
		}
		n = len(ids)
	} else {
		tokens := text.Split(s, mode, cfg.PristineInput)
		n = len(tokens)
		if v != nil {
			if _, err := v.Encode(tokens); err != nil {
				res.fail(w, "vocabulary coverage", err)
			} else {
				pass(w, "vocabulary coverage", "all corpus tokens known")
			}
		}
	}

	if !geometryOK {
		return res
	}
	if nb := cfg.Geometry.NumBatches(n); nb == 0 {
		res.fail(w, "batches", fmt.Errorf("%w: %s %s tokens yield %d windows, batch size %d",
			batch.ErrInsufficientData, humanize.Comma(int64(n)), mode, cfg.Geometry.PoolRows(n), cfg.Geometry.BatchSize))
	} else {
		pass(w, "batches", fmt.Sprintf("%s %s tokens, %s batches",
			humanize.Comma(int64(n)), mode, humanize.Comma(int64(nb))))
	}

	return res
}
