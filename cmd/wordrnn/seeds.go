package main

import (
	"math/rand/v2"

	"github.com/example/go-wordrnn/internal/console"
	"github.com/example/go-wordrnn/internal/corpus"
	"github.com/example/go-wordrnn/internal/seeds"
	"github.com/spf13/cobra"
)

func newSeedsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seeds",
		Short: "Pick generation seed strings from the corpus",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			s, err := corpus.Load(cfg.Paths.CorpusPath, corpus.Options{NormalizeUnicode: cfg.Tokens.NormalizeUnicode})
			if err != nil {
				return err
			}

			var rng *rand.Rand
			if cfg.Sample.Seed != 0 {
				rng = rand.New(rand.NewPCG(cfg.Sample.Seed, cfg.Sample.Seed))
			}
			found, err := seeds.Find(s, cfg.Sample.NumSeeds, cfg.Sample.MaxSeedLength, rng)
			if err != nil {
				return err
			}

			p := console.New(cmd.OutOrStdout())
			for _, seed := range found {
				p.Cyan(seed)
			}
			return nil
		},
	}

	return cmd
}
