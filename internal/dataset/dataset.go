// Package dataset turns corpus text into the batched ID tensor a stateful
// recurrent model trains on.
package dataset

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/go-wordrnn/internal/batch"
	"github.com/example/go-wordrnn/internal/text"
	"github.com/example/go-wordrnn/internal/tokenizer"
	"github.com/example/go-wordrnn/internal/vocab"
)

// Options configures Prepare.
type Options struct {
	Mode text.Mode
	// PristineInput treats the corpus as already tokenized: word mode only
	// splits on whitespace.
	PristineInput bool
	Lowercase     bool
	Geometry      batch.Geometry
	// Encoder is required in subword mode and ignored otherwise.
	Encoder tokenizer.Encoder
	// Vocab, if set, is used instead of building one from the corpus.
	Vocab *vocab.Vocab
}

// Dataset is the result of Prepare. Vocab is nil in subword mode.
type Dataset struct {
	Mode    text.Mode
	Vocab   *vocab.Vocab
	IDs     []int32
	Batches *batch.Tensor
}

// Prepare tokenizes s, maps the tokens to IDs and reshapes them into batches.
// Errors from the reshape step are returned wrapped, so errors.Is matches
// batch.ErrInvalidArgument and batch.ErrInsufficientData.
func Prepare(s string, opts Options) (*Dataset, error) {
	mode := opts.Mode
	if mode == "" {
		mode = text.ModeWord
	}
	if err := opts.Geometry.Validate(); err != nil {
		return nil, err
	}
	if opts.Lowercase {
		s = strings.ToLower(s)
	}

	ds := &Dataset{Mode: mode}

	switch mode {
	case text.ModeSubword:
		if opts.Encoder == nil {
			return nil, errors.New("subword mode needs a sentencepiece encoder")
		}
		ids, err := tokenizer.EncodeLines(opts.Encoder, strings.Split(s, "\n"), -1)
		if err != nil {
			return nil, fmt.Errorf("encode corpus: %w", err)
		}
		ds.IDs = ids
	case text.ModeWord, text.ModeChar:
		tokens := text.Split(s, mode, opts.PristineInput)
		v := opts.Vocab
		if v == nil {
			v = vocab.Build(tokens)
		}
		ids, err := v.Encode(tokens)
		if err != nil {
			return nil, fmt.Errorf("encode corpus: %w", err)
		}
		ds.Vocab = v
		ds.IDs = ids
	default:
		return nil, fmt.Errorf("%w %q", text.ErrUnknownMode, mode)
	}

	t, err := opts.Geometry.Reshape(ds.IDs)
	if err != nil {
		return nil, fmt.Errorf("reshape %d ids: %w", len(ds.IDs), err)
	}
	ds.Batches = t

	attrs := []any{
		slog.String("mode", string(mode)),
		slog.Int("ids", len(ds.IDs)),
		slog.Int("batches", t.NumBatches()),
	}
	if ds.Vocab != nil {
		attrs = append(attrs, slog.Int("vocab_size", ds.Vocab.Size()))
	}
	slog.Debug("dataset prepared", attrs...)

	return ds, nil
}

// Decode turns IDs back into text. With pristine set, word tokens are joined
// with single spaces instead of being detokenized.
func (d *Dataset) Decode(ids []int32, pristine bool) (string, error) {
	if d.Vocab == nil {
		return "", fmt.Errorf("decode: %s mode has no vocabulary", d.Mode)
	}
	tokens, err := d.Vocab.Decode(ids)
	if err != nil {
		return "", err
	}
	return text.Join(tokens, d.Mode, pristine), nil
}
