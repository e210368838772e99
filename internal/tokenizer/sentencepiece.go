package tokenizer

import (
	"errors"
	"fmt"

	gosp "github.com/vikesh-raj/go-sentencepiece-encoder/sentencepiece"
)

// ErrEmptyPath is returned when NewSentencePiece is called with an empty path.
var ErrEmptyPath = errors.New("sentencepiece model path must not be empty")

// SentencePiece implements Encoder with a pure-Go unigram SentencePiece model.
type SentencePiece struct {
	proc gosp.Sentencepiece
}

// NewSentencePiece loads the model at modelPath. With lowercase set the model
// lowercases its input before encoding.
func NewSentencePiece(modelPath string, lowercase bool) (*SentencePiece, error) {
	if modelPath == "" {
		return nil, ErrEmptyPath
	}

	proc, err := gosp.NewSentencepieceFromFile(modelPath, lowercase)
	if err != nil {
		return nil, fmt.Errorf("load sentencepiece model %q: %w", modelPath, err)
	}

	return &SentencePiece{proc: proc}, nil
}

// Encode returns the subword IDs for text. Empty text has no IDs.
func (t *SentencePiece) Encode(text string) ([]int32, error) {
	if text == "" {
		return []int32{}, nil
	}

	ids := t.proc.TokenizeToIDs(text)

	result := make([]int32, len(ids))
	for i, id := range ids {
		result[i] = int32(id)
	}

	return result, nil
}
