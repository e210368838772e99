// Package vocab maps token strings to dense integer IDs and back.
package vocab

import (
	"bytes"
	"encoding/json"
	"os"
	"sort"

	"github.com/pkg/errors"
)

var (
	// ErrUnknownToken is returned when encoding a token that is not in the vocabulary.
	ErrUnknownToken = errors.New("unknown token")
	// ErrUnknownID is returned when decoding an ID outside the vocabulary.
	ErrUnknownID = errors.New("unknown token id")
)

// Vocab is an immutable bidirectional token table. IDs are dense, from 0 to Size()-1.
type Vocab struct {
	tokens []string
	ids    map[string]int32
}

// Build collects the distinct tokens of a corpus. The most frequent token gets
// ID 0; ties are broken by byte order, so the result depends only on the input.
func Build(tokens []string) *Vocab {
	counts := make(map[string]int)
	for _, t := range tokens {
		counts[t]++
	}

	distinct := make([]string, 0, len(counts))
	for t := range counts {
		distinct = append(distinct, t)
	}
	sort.Slice(distinct, func(i, j int) bool {
		ci, cj := counts[distinct[i]], counts[distinct[j]]
		if ci != cj {
			return ci > cj
		}
		return distinct[i] < distinct[j]
	})

	v, _ := New(distinct)
	return v
}

// New creates a vocabulary whose IDs follow the order of tokens.
// Duplicate tokens are rejected.
func New(tokens []string) (*Vocab, error) {
	v := &Vocab{
		tokens: append([]string(nil), tokens...),
		ids:    make(map[string]int32, len(tokens)),
	}
	for i, t := range v.tokens {
		if _, dup := v.ids[t]; dup {
			return nil, errors.Errorf("duplicate token %q at id %d", t, i)
		}
		v.ids[t] = int32(i)
	}
	return v, nil
}

// Size returns the number of tokens.
func (v *Vocab) Size() int { return len(v.tokens) }

// Tokens returns a copy of the tokens in ID order.
func (v *Vocab) Tokens() []string { return append([]string(nil), v.tokens...) }

// ID returns the ID for token.
func (v *Vocab) ID(token string) (int32, bool) {
	id, ok := v.ids[token]
	return id, ok
}

// Token returns the token for id.
func (v *Vocab) Token(id int32) (string, bool) {
	if id < 0 || int(id) >= len(v.tokens) {
		return "", false
	}
	return v.tokens[id], true
}

// Encode maps tokens to IDs.
func (v *Vocab) Encode(tokens []string) ([]int32, error) {
	ids := make([]int32, len(tokens))
	for i, t := range tokens {
		id, ok := v.ids[t]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownToken, "token %q at position %d", t, i)
		}
		ids[i] = id
	}
	return ids, nil
}

// Decode maps IDs to tokens.
func (v *Vocab) Decode(ids []int32) ([]string, error) {
	tokens := make([]string, len(ids))
	for i, id := range ids {
		t, ok := v.Token(id)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownID, "id %d at position %d (vocabulary size %d)", id, i, len(v.tokens))
		}
		tokens[i] = t
	}
	return tokens, nil
}

// file is the on-disk JSON layout.
type file struct {
	Tokens []string `json:"tokens"`
}

// Save writes the vocabulary as JSON to path.
func (v *Vocab) Save(path string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(file{Tokens: v.tokens}); err != nil {
		return errors.Wrapf(err, "failed to encode vocabulary")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write vocabulary file %q", path)
	}
	return nil
}

// Load reads a vocabulary file written by Save.
func Load(path string) (*Vocab, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read file %q", path)
	}
	v, err := Parse(content)
	if err != nil {
		return nil, errors.WithMessagef(err, "read from file %q", path)
	}
	return v, nil
}

// Parse decodes the JSON content of a vocabulary file.
func Parse(jsonContent []byte) (*Vocab, error) {
	var f file
	if err := json.Unmarshal(jsonContent, &f); err != nil {
		return nil, errors.Wrapf(err, "failed to parse vocabulary json content")
	}
	return New(f.Tokens)
}
