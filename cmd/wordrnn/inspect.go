package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"

	"github.com/example/go-wordrnn/internal/config"
	"github.com/example/go-wordrnn/internal/console"
	"github.com/example/go-wordrnn/internal/safetensors"
	"github.com/example/go-wordrnn/internal/text"
	"github.com/example/go-wordrnn/internal/vocab"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var batchIndex int

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the metadata and one batch of a prepared batches file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			return runInspect(cfg, batchIndex, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&batchIndex, "batch", 0, "Index of the batch to print")

	return cmd
}

func runInspect(cfg config.Config, batchIndex int, out io.Writer) error {
	t, meta, err := safetensors.LoadBatches(cfg.Paths.BatchesPath)
	if err != nil {
		return err
	}
	if batchIndex < 0 || batchIndex >= t.NumBatches() {
		return fmt.Errorf("batch %d out of range [0, %d)", batchIndex, t.NumBatches())
	}

	p := console.New(out)
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.Cyanf("%s: %s", k, meta[k])
	}

	mode, err := text.ParseMode(meta[safetensors.MetaMode])
	if err != nil {
		return err
	}

	// Without a vocabulary (subword mode, or none written yet) rows print as IDs.
	var v *vocab.Vocab
	if mode != text.ModeSubword {
		v, err = vocab.Load(cfg.Paths.VocabPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	for slot, row := range t.Batch(batchIndex) {
		if v == nil {
			fmt.Fprintf(out, "%d\t%v\n", slot, row)
			continue
		}
		tokens, err := v.Decode(row)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d\t%q\n", slot, text.Join(tokens, mode, cfg.Tokens.PristineOutput))
	}
	return nil
}
