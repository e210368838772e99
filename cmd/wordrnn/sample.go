package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/go-wordrnn/internal/sample"
	"github.com/spf13/cobra"
)

func newSampleCmd() *cobra.Command {
	var probs string
	var count int

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Draw token indices from a probability vector",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			if count <= 0 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}

			raw, err := readInput(probs, cmd.InOrStdin(), "probs")
			if err != nil {
				return err
			}
			var preds []float64
			if err := json.NewDecoder(strings.NewReader(raw)).Decode(&preds); err != nil {
				return fmt.Errorf("decode probabilities: %w", err)
			}

			s := sample.New(cfg.Sample.Seed)
			indices := make([]int, 0, count)
			for range count {
				idx, err := s.Sample(preds, cfg.Sample.Temperature)
				if err != nil {
					return err
				}
				indices = append(indices, idx)
			}
			return writeList(cmd.OutOrStdout(), indices, false)
		},
	}

	cmd.Flags().StringVar(&probs, "probs", "", "JSON array of probabilities (if empty, read from stdin)")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of draws")

	return cmd
}
