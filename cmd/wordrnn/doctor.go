package main

import (
	"errors"
	"fmt"

	"github.com/example/go-wordrnn/internal/corpus"
	"github.com/example/go-wordrnn/internal/doctor"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the corpus, vocabulary and batch geometry work together",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Geometry problems are reported by the checks, not rejected up front.
			cfg, err := loadedConfig()
			if err != nil {
				return err
			}
			mode, err := cfg.Mode()
			if err != nil {
				return err
			}

			result := doctor.Run(doctor.Config{
				CorpusPath:         cfg.Paths.CorpusPath,
				CorpusOptions:      corpus.Options{NormalizeUnicode: cfg.Tokens.NormalizeUnicode},
				VocabPath:          cfg.Paths.VocabPath,
				Mode:               mode,
				PristineInput:      cfg.Tokens.PristineInput,
				Lowercase:          cfg.Tokens.Lowercase,
				Geometry:           cfg.Geometry(),
				SentencePieceModel: cfg.Paths.SentencePieceModel,
			}, cmd.OutOrStdout())

			if result.Failed() {
				for _, f := range result.Failures() {
					fmt.Fprintf(cmd.ErrOrStderr(), "FAIL: %s\n", f)
				}

				return errors.New("doctor checks failed")
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "doctor checks passed")

			return nil
		},
	}

	return cmd
}
