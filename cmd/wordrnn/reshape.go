package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/example/go-wordrnn/internal/batch"
	"github.com/spf13/cobra"
)

func newReshapeCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "reshape",
		Short: "Lay out a JSON array of token IDs as stateful batches",
		Long: "Reads a JSON array of token IDs (from --input or stdin) and prints the\n" +
			"batched rows as JSON, using --batch-size, --seq-length and --seq-step.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			r := cmd.InOrStdin()
			if input != "" && input != "-" {
				f, err := os.Open(input)
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer f.Close()
				r = f
			}

			seq, err := readIDs(r)
			if err != nil {
				return err
			}
			t, err := cfg.Geometry().Reshape(seq)
			if err != nil {
				return err
			}
			return writeRows(cmd.OutOrStdout(), t)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "JSON file with the ID sequence ('-' or empty for stdin)")

	return cmd
}

func readIDs(r io.Reader) ([]int32, error) {
	var seq []int32
	if err := json.NewDecoder(r).Decode(&seq); err != nil {
		return nil, fmt.Errorf("decode id sequence: %w", err)
	}
	return seq, nil
}

// writeRows prints one JSON array per row so batches stay readable.
func writeRows(w io.Writer, t *batch.Tensor) error {
	enc := json.NewEncoder(w)
	for i := range t.Rows {
		if err := enc.Encode(t.Row(i)); err != nil {
			return err
		}
	}
	return nil
}
