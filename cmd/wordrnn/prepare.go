package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/example/go-wordrnn/internal/config"
	"github.com/example/go-wordrnn/internal/console"
	"github.com/example/go-wordrnn/internal/corpus"
	"github.com/example/go-wordrnn/internal/dataset"
	"github.com/example/go-wordrnn/internal/safetensors"
	"github.com/example/go-wordrnn/internal/text"
	"github.com/example/go-wordrnn/internal/tokenizer"
	"github.com/example/go-wordrnn/internal/vocab"
	"github.com/spf13/cobra"
)

func newPrepareCmd() *cobra.Command {
	var reuseVocab bool

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Tokenize the corpus and write the vocabulary and batch tensor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			return runPrepare(cfg, reuseVocab, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&reuseVocab, "reuse-vocab", false, "Encode with the existing vocabulary file instead of building one")

	return cmd
}

func runPrepare(cfg config.Config, reuseVocab bool, out io.Writer) error {
	p := console.New(out)

	mode, err := cfg.Mode()
	if err != nil {
		return err
	}

	s, err := corpus.Load(cfg.Paths.CorpusPath, corpus.Options{NormalizeUnicode: cfg.Tokens.NormalizeUnicode})
	if err != nil {
		return err
	}
	stats := corpus.Measure(s)
	slog.Info("corpus loaded",
		slog.String("path", cfg.Paths.CorpusPath),
		slog.Int("bytes", stats.Bytes),
		slog.Int("lines", stats.Lines),
	)
	p.Cyanf("corpus %s: %s", cfg.Paths.CorpusPath, stats)

	opts := dataset.Options{
		Mode:          mode,
		PristineInput: cfg.Tokens.PristineInput,
		Lowercase:     cfg.Tokens.Lowercase,
		Geometry:      cfg.Geometry(),
	}
	switch {
	case mode == text.ModeSubword:
		enc, err := tokenizer.NewSentencePiece(cfg.Paths.SentencePieceModel, cfg.Tokens.Lowercase)
		if err != nil {
			return err
		}
		opts.Encoder = enc
	case reuseVocab:
		v, err := vocab.Load(cfg.Paths.VocabPath)
		if err != nil {
			return err
		}
		opts.Vocab = v
	}

	ds, err := dataset.Prepare(s, opts)
	if err != nil {
		p.Redf("prepare failed: %v", err)
		return err
	}

	if ds.Vocab != nil && !reuseVocab {
		if err := ensureParent(cfg.Paths.VocabPath); err != nil {
			return err
		}
		if err := ds.Vocab.Save(cfg.Paths.VocabPath); err != nil {
			return err
		}
		p.Greenf("vocabulary: %s tokens written to %s", humanize.Comma(int64(ds.Vocab.Size())), cfg.Paths.VocabPath)
	}

	if err := ensureParent(cfg.Paths.BatchesPath); err != nil {
		return err
	}
	extra := map[string]string{safetensors.MetaMode: string(mode)}
	if err := safetensors.WriteBatches(cfg.Paths.BatchesPath, ds.Batches, cfg.Geometry(), extra); err != nil {
		return err
	}

	rows, cols := ds.Batches.Shape()
	p.Greenf("batches: %s x [%d, %d] from %s %s tokens written to %s",
		humanize.Comma(int64(ds.Batches.NumBatches())), cfg.Batch.BatchSize, cols,
		humanize.Comma(int64(len(ds.IDs))), mode, cfg.Paths.BatchesPath)
	slog.Debug("batches written",
		slog.String("path", cfg.Paths.BatchesPath),
		slog.Int("rows", rows),
		slog.Int("num_batches", ds.Batches.NumBatches()),
	)

	return nil
}

func ensureParent(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}
