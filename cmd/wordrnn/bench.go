package main

import (
	"fmt"
	"io"

	"github.com/example/go-wordrnn/internal/bench"
	"github.com/example/go-wordrnn/internal/config"
	"github.com/example/go-wordrnn/internal/corpus"
	"github.com/example/go-wordrnn/internal/dataset"
	"github.com/example/go-wordrnn/internal/text"
	"github.com/example/go-wordrnn/internal/tokenizer"
	"github.com/spf13/cobra"
)

type benchOptions struct {
	Runs         int
	Format       string
	MinTokensSec float64
}

func newBenchCmd() *cobra.Command {
	var opts benchOptions

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark tokenizing and batching the corpus",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			return runBench(cfg, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&opts.Runs, "runs", 3, "Number of runs")
	cmd.Flags().StringVar(&opts.Format, "format", "table", "Output format (table|json)")
	cmd.Flags().Float64Var(&opts.MinTokensSec, "min-tokens-per-sec", 0, "Fail when mean warm throughput is lower (0 disables)")

	return cmd
}

func runBench(cfg config.Config, opts benchOptions, out io.Writer) error {
	if opts.Runs < 1 {
		return fmt.Errorf("--runs must be at least 1")
	}
	if opts.Format != "table" && opts.Format != "json" {
		return fmt.Errorf("--format must be 'table' or 'json'")
	}

	mode, err := cfg.Mode()
	if err != nil {
		return err
	}
	s, err := corpus.Load(cfg.Paths.CorpusPath, corpus.Options{NormalizeUnicode: cfg.Tokens.NormalizeUnicode})
	if err != nil {
		return err
	}

	dsOpts := dataset.Options{
		Mode:          mode,
		PristineInput: cfg.Tokens.PristineInput,
		Lowercase:     cfg.Tokens.Lowercase,
		Geometry:      cfg.Geometry(),
	}
	if mode == text.ModeSubword {
		enc, err := tokenizer.NewSentencePiece(cfg.Paths.SentencePieceModel, cfg.Tokens.Lowercase)
		if err != nil {
			return err
		}
		dsOpts.Encoder = enc
	}

	runs, err := bench.Run(opts.Runs, func() (int, error) {
		ds, err := dataset.Prepare(s, dsOpts)
		if err != nil {
			return 0, err
		}
		return len(ds.IDs), nil
	})
	if err != nil {
		return err
	}

	stats := bench.ComputeStats(bench.Durations(runs))
	if opts.Format == "json" {
		if err := bench.FormatJSON(runs, stats, out); err != nil {
			return err
		}
	} else {
		bench.FormatTable(runs, stats, out)
	}

	return bench.CheckThroughputThreshold(bench.MeanThroughput(runs), opts.MinTokensSec)
}
