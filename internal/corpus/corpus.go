// Package corpus loads training text from disk.
package corpus

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	uni "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/example/go-wordrnn/internal/text"
)

// ErrEmptyCorpus is returned when a corpus decodes to no text at all.
var ErrEmptyCorpus = errors.New("corpus: empty")

// Options controls decoding.
type Options struct {
	// NormalizeUnicode composes the text to NFC after decoding.
	NormalizeUnicode bool
}

// Load reads and decodes the corpus at path.
func Load(path string, opts Options) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	s, err := Decode(f, opts)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Decode reads r to the end. A UTF-8 or UTF-16 byte order mark selects the
// encoding and is stripped; without one the input is taken as UTF-8, with
// invalid bytes replaced by U+FFFD. Line endings are normalized to LF.
func Decode(r io.Reader, opts Options) (string, error) {
	var t transform.Transformer = uni.BOMOverride(uni.UTF8.NewDecoder())
	if opts.NormalizeUnicode {
		t = transform.Chain(t, norm.NFC)
	}

	raw, err := io.ReadAll(transform.NewReader(r, t))
	if err != nil {
		return "", fmt.Errorf("decode corpus: %w", err)
	}
	if len(raw) == 0 {
		return "", ErrEmptyCorpus
	}
	return text.NormalizeLineEndings(string(raw)), nil
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(b []byte, opts Options) (string, error) {
	return Decode(bytes.NewReader(b), opts)
}

// Stats summarizes a decoded corpus.
type Stats struct {
	Bytes int
	Lines int
	Runes int
}

// Measure computes Stats for s. A final line without a trailing newline
// still counts.
func Measure(s string) Stats {
	lines := strings.Count(s, "\n")
	if s != "" && !strings.HasSuffix(s, "\n") {
		lines++
	}
	return Stats{
		Bytes: len(s),
		Lines: lines,
		Runes: utf8.RuneCountInString(s),
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("%s, %s lines, %s characters",
		humanize.Bytes(uint64(s.Bytes)), humanize.Comma(int64(s.Lines)), humanize.Comma(int64(s.Runes)))
}
