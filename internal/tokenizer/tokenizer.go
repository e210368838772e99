// Package tokenizer maps text straight to subword IDs for the subword token
// mode. It is encode-only: generated IDs are never turned back into text.
package tokenizer

// Encoder turns text into model token IDs.
type Encoder interface {
	Encode(text string) ([]int32, error)
}

// EncodeLines encodes every line of text separately and joins the results,
// so a corpus too large for one pass is tokenized line by line. The
// separator ID, if non-negative, is inserted between lines.
func EncodeLines(enc Encoder, lines []string, separator int32) ([]int32, error) {
	var out []int32
	for i, line := range lines {
		if i > 0 && separator >= 0 {
			out = append(out, separator)
		}
		ids, err := enc.Encode(line)
		if err != nil {
			return nil, err
		}
		out = append(out, ids...)
	}
	return out, nil
}
