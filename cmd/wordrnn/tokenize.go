package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/example/go-wordrnn/internal/config"
	"github.com/example/go-wordrnn/internal/text"
	"github.com/example/go-wordrnn/internal/tokenizer"
	"github.com/spf13/cobra"
)

func newTokenizeCmd() *cobra.Command {
	var input string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tokenize",
		Short: "Split text into tokens (one per line)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			s, err := readInput(input, cmd.InOrStdin(), "text")
			if err != nil {
				return err
			}

			mode, _ := cfg.Mode()
			if mode == text.ModeSubword {
				ids, err := encodeSubword(cfg, s)
				if err != nil {
					return err
				}
				return writeList(cmd.OutOrStdout(), ids, asJSON)
			}

			return writeList(cmd.OutOrStdout(), tokenizeText(cfg, mode, s), asJSON)
		},
	}

	cmd.Flags().StringVar(&input, "text", "", "Text to tokenize (if empty, read from stdin)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print a JSON array instead of one token per line")

	return cmd
}

func tokenizeText(cfg config.Config, mode text.Mode, s string) []string {
	s = text.NormalizeLineEndings(s)
	if cfg.Tokens.Lowercase {
		s = strings.ToLower(s)
	}
	return text.Split(s, mode, cfg.Tokens.PristineInput)
}

func encodeSubword(cfg config.Config, s string) ([]int32, error) {
	enc, err := tokenizer.NewSentencePiece(cfg.Paths.SentencePieceModel, cfg.Tokens.Lowercase)
	if err != nil {
		return nil, err
	}
	return enc.Encode(text.NormalizeLineEndings(s))
}

func writeList[T any](w io.Writer, items []T, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if items == nil {
			items = []T{}
		}
		return enc.Encode(items)
	}

	bw := bufio.NewWriter(w)
	for _, item := range items {
		if _, err := fmt.Fprintln(bw, item); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func newDetokenizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detokenize [token...]",
		Short: "Join tokens back into text (tokens from args or one per stdin line)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			mode, _ := cfg.Mode()
			if mode == text.ModeSubword {
				return errors.New("detokenize: subword mode has no string tokens")
			}

			tokens := args
			if len(tokens) == 0 {
				tokens, err = readTokenLines(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), text.Join(tokens, mode, cfg.Tokens.PristineOutput))
			return err
		},
	}

	return cmd
}

// readTokenLines reads one token per line. Blank lines are skipped.
func readTokenLines(r io.Reader) ([]string, error) {
	var tokens []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		tok := strings.TrimSpace(sc.Text())
		if tok == "" {
			continue
		}
		tokens = append(tokens, tok)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if len(tokens) == 0 {
		return nil, errors.New("either pass tokens as arguments or pipe them on stdin")
	}
	return tokens, nil
}
