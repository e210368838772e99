// Package seeds picks prompt strings for text generation out of a corpus.
package seeds

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Find returns up to numSeeds seed strings from text. It samples at most
// 4*numSeeds lines at random, keeps the longest numSeeds of them, cuts each to
// maxSeedLength runes and drops the last, possibly partial, word.
// Lines that are blank yield no seed.
func Find(text string, numSeeds, maxSeedLength int, rng *rand.Rand) ([]string, error) {
	if numSeeds <= 0 {
		return nil, fmt.Errorf("seeds: number of seeds must be positive, got %d", numSeeds)
	}
	if maxSeedLength <= 0 {
		return nil, fmt.Errorf("seeds: max seed length must be positive, got %d", maxSeedLength)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	lines := strings.Split(text, "\n")
	if limit := numSeeds * 4; len(lines) > limit {
		lines = sampleLines(lines, limit, rng)
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return utf8.RuneCountInString(lines[i]) > utf8.RuneCountInString(lines[j])
	})
	if len(lines) > numSeeds {
		lines = lines[:numSeeds]
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if seed := cut(line, maxSeedLength); seed != "" {
			out = append(out, seed)
		}
	}
	return out, nil
}

// sampleLines picks k distinct lines without replacement, in random order.
func sampleLines(lines []string, k int, rng *rand.Rand) []string {
	picked := make([]string, k)
	for i, idx := range rng.Perm(len(lines))[:k] {
		picked[i] = lines[idx]
	}
	return picked
}

// cut trims line to maxRunes and removes everything from the last whitespace
// run onwards. A cut holding a single word is returned whole, without the
// surrounding whitespace.
func cut(line string, maxRunes int) string {
	if r := []rune(line); len(r) > maxRunes {
		line = string(r[:maxRunes])
	}
	line = strings.TrimRightFunc(line, unicode.IsSpace)
	word := strings.TrimLeftFunc(line, unicode.IsSpace)
	if strings.IndexFunc(word, unicode.IsSpace) < 0 {
		return word
	}
	i := strings.LastIndexFunc(line, unicode.IsSpace)
	return strings.TrimRightFunc(line[:i], unicode.IsSpace)
}
