// Package batch lays out a flat token-ID sequence for a recurrent model whose
// hidden state carries over from one batch to the next.
//
// Windows of SeqLength IDs are cut from the sequence at every multiple of
// SeqStep below SeqLength, pooled pass by pass, and then dealt out so that
// batch slot i of batch b+1 continues exactly where slot i of batch b ended.
package batch

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports a geometry or input that cannot produce a layout.
	ErrInvalidArgument = errors.New("batch: invalid argument")
	// ErrInsufficientData reports that the sequence yields fewer windows than one batch needs.
	ErrInsufficientData = errors.New("batch: insufficient data")
)

// Geometry describes how the sequence is windowed and batched.
type Geometry struct {
	BatchSize int
	SeqLength int
	SeqStep   int
}

// Validate checks that all sizes are positive and SeqStep < SeqLength.
func (g Geometry) Validate() error {
	switch {
	case g.BatchSize <= 0:
		return fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidArgument, g.BatchSize)
	case g.SeqLength <= 0:
		return fmt.Errorf("%w: sequence length must be positive, got %d", ErrInvalidArgument, g.SeqLength)
	case g.SeqStep <= 0:
		return fmt.Errorf("%w: sequence step must be positive, got %d", ErrInvalidArgument, g.SeqStep)
	case g.SeqStep >= g.SeqLength:
		return fmt.Errorf("%w: sequence step %d must be smaller than sequence length %d",
			ErrInvalidArgument, g.SeqStep, g.SeqLength)
	}
	return nil
}

// pass is one strip of windows starting at offset.
type pass struct {
	offset int
	rows   int
}

// passes lists the strips that start inside the sequence. Offsets at or past
// n hold no windows and are never materialized, so the work is bounded by n
// however large SeqLength is.
func (g Geometry) passes(n int) []pass {
	var out []pass
	for offset := 0; offset < g.SeqLength && offset < n; offset += g.SeqStep {
		out = append(out, pass{offset: offset, rows: (n - offset) / g.SeqLength})
	}
	return out
}

// PoolRows returns how many full windows all passes over a sequence of length
// n produce together.
func (g Geometry) PoolRows(n int) int {
	total := 0
	for _, p := range g.passes(n) {
		total += p.rows
	}
	return total
}

// NumBatches returns how many complete batches a sequence of length n fills.
func (g Geometry) NumBatches(n int) int {
	if g.BatchSize <= 0 {
		return 0
	}
	return g.PoolRows(n) / g.BatchSize
}

// Reshape is shorthand for Geometry.Reshape.
func Reshape(seq []int32, batchSize, seqLength, seqStep int) (*Tensor, error) {
	return Geometry{BatchSize: batchSize, SeqLength: seqLength, SeqStep: seqStep}.Reshape(seq)
}

// Reshape builds the stateful layout for seq. The result has
// NumBatches*BatchSize rows of SeqLength IDs; row i+b*BatchSize is the b-th
// window assigned to slot i. Pool rows beyond the last full batch are dropped.
//
// It returns ErrInvalidArgument for a bad geometry or an empty sequence, and
// ErrInsufficientData when the pool holds fewer rows than BatchSize.
func (g Geometry) Reshape(seq []int32) (*Tensor, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if len(seq) == 0 {
		return nil, fmt.Errorf("%w: empty sequence", ErrInvalidArgument)
	}

	passes := g.passes(len(seq))
	poolRows := 0
	for _, p := range passes {
		poolRows += p.rows
	}

	numBatches := poolRows / g.BatchSize
	if numBatches == 0 {
		return nil, fmt.Errorf("%w: %d windows of length %d from %d ids, batch size %d",
			ErrInsufficientData, poolRows, g.SeqLength, len(seq), g.BatchSize)
	}

	numSamples := numBatches * g.BatchSize
	t := &Tensor{
		Rows:      numSamples,
		SeqLength: g.SeqLength,
		BatchSize: g.BatchSize,
		Data:      make([]int32, numSamples*g.SeqLength),
	}

	// Pool rows are visited in pool order: slot 0 takes rows [0, numBatches),
	// slot 1 the next numBatches, and so on. A single cursor walks the passes.
	cur, k := 0, 0
	for slot := range g.BatchSize {
		for b := range numBatches {
			for k >= passes[cur].rows {
				cur++
				k = 0
			}
			src := passes[cur].offset + k*g.SeqLength
			dst := (slot + b*g.BatchSize) * g.SeqLength
			copy(t.Data[dst:dst+g.SeqLength], seq[src:src+g.SeqLength])
			k++
		}
	}

	return t, nil
}
