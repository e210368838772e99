package batch

import (
	"errors"
	"reflect"
	"testing"
)

// iota32 returns [0, n) so every ID equals its index in the sequence.
func iota32(n int) []int32 {
	seq := make([]int32, n)
	for i := range seq {
		seq[i] = int32(i)
	}
	return seq
}

// naivePool cuts windows pass by pass with nested slices, the way the layout
// is defined, to check Reshape's index arithmetic against.
func naivePool(seq []int32, seqLength, seqStep int) [][]int32 {
	var pool [][]int32
	for offset := 0; offset < seqLength; offset += seqStep {
		if offset >= len(seq) {
			continue
		}
		strip := seq[offset:]
		for k := 0; (k+1)*seqLength <= len(strip); k++ {
			pool = append(pool, strip[k*seqLength:(k+1)*seqLength])
		}
	}
	return pool
}

// ---------------------------------------------------------------------------
// Exact layout
// ---------------------------------------------------------------------------

func TestReshape_WorkedExample(t *testing.T) {
	// Pass 0 (offset 0): [0..3] [4..7] [8..11] [12..15] [16..19]
	// Pass 1 (offset 2): [2..5] [6..9] [10..13] [14..17]
	// 9 pool rows, batch size 2 -> 4 batches, the last pool row is dropped.
	got, err := Reshape(iota32(20), 2, 4, 2)
	if err != nil {
		t.Fatalf("Reshape: %v", err)
	}

	want := [][]int32{
		{0, 1, 2, 3}, {16, 17, 18, 19},
		{4, 5, 6, 7}, {2, 3, 4, 5},
		{8, 9, 10, 11}, {6, 7, 8, 9},
		{12, 13, 14, 15}, {10, 11, 12, 13},
	}
	if !reflect.DeepEqual(got.ToRows(), want) {
		t.Errorf("rows = %v\nwant %v", got.ToRows(), want)
	}

	if got.NumBatches() != 4 {
		t.Errorf("NumBatches() = %d; want 4", got.NumBatches())
	}
	if rows, cols := got.Shape(); rows != 8 || cols != 4 {
		t.Errorf("Shape() = (%d, %d); want (8, 4)", rows, cols)
	}
}

func TestReshape_SlotsContinueAcrossBatches(t *testing.T) {
	// Both passes hold 4 windows, so each slot maps to exactly one pass.
	got, err := Reshape(iota32(18), 2, 4, 2)
	if err != nil {
		t.Fatalf("Reshape: %v", err)
	}

	for slot := range got.BatchSize {
		for b := 1; b < got.NumBatches(); b++ {
			prev := got.Batch(b - 1)[slot]
			next := got.Batch(b)[slot]
			if next[0] != prev[len(prev)-1]+1 {
				t.Errorf("slot %d batch %d starts at %d, previous window ended at %d",
					slot, b, next[0], prev[len(prev)-1])
			}
		}
	}

	if first := got.Row(1)[0]; first != 2 {
		t.Errorf("slot 1 starts at id %d; want 2 (offset pass)", first)
	}
}

// ---------------------------------------------------------------------------
// Properties over many geometries
// ---------------------------------------------------------------------------

func TestReshape_MatchesPoolDefinition(t *testing.T) {
	for n := 1; n <= 60; n += 7 {
		for batchSize := 1; batchSize <= 5; batchSize++ {
			for seqLength := 2; seqLength <= 7; seqLength++ {
				for seqStep := 1; seqStep < seqLength; seqStep++ {
					checkLayout(t, n, batchSize, seqLength, seqStep)
				}
			}
		}
	}
}

func checkLayout(t *testing.T, n, batchSize, seqLength, seqStep int) {
	t.Helper()

	seq := iota32(n)
	pool := naivePool(seq, seqLength, seqStep)
	g := Geometry{BatchSize: batchSize, SeqLength: seqLength, SeqStep: seqStep}

	if g.PoolRows(n) != len(pool) {
		t.Fatalf("n=%d %+v: PoolRows = %d; want %d", n, g, g.PoolRows(n), len(pool))
	}

	got, err := g.Reshape(seq)
	numBatches := len(pool) / batchSize
	if numBatches == 0 {
		if !errors.Is(err, ErrInsufficientData) {
			t.Fatalf("n=%d %+v: err = %v; want ErrInsufficientData", n, g, err)
		}
		return
	}
	if err != nil {
		t.Fatalf("n=%d %+v: Reshape: %v", n, g, err)
	}

	if got.Rows != numBatches*batchSize || got.Rows%batchSize != 0 || got.Rows > len(pool) {
		t.Fatalf("n=%d %+v: Rows = %d; want %d", n, g, got.Rows, numBatches*batchSize)
	}
	if len(got.Data) != got.Rows*seqLength {
		t.Fatalf("n=%d %+v: len(Data) = %d; want %d", n, g, len(got.Data), got.Rows*seqLength)
	}

	for slot := range batchSize {
		for b := range numBatches {
			want := pool[slot*numBatches+b]
			if row := got.Row(slot + b*batchSize); !reflect.DeepEqual(row, want) {
				t.Fatalf("n=%d %+v: row %d = %v; want %v", n, g, slot+b*batchSize, row, want)
			}
		}
	}
}

func TestReshape_Deterministic(t *testing.T) {
	seq := iota32(101)
	first, err := Reshape(seq, 3, 10, 3)
	if err != nil {
		t.Fatalf("Reshape: %v", err)
	}

	for range 3 {
		again, err := Reshape(seq, 3, 10, 3)
		if err != nil {
			t.Fatalf("Reshape: %v", err)
		}
		if !reflect.DeepEqual(again.Data, first.Data) {
			t.Fatal("Reshape is not deterministic")
		}
	}
}

func TestReshape_DoesNotAliasInput(t *testing.T) {
	seq := iota32(16)
	got, err := Reshape(seq, 1, 4, 2)
	if err != nil {
		t.Fatalf("Reshape: %v", err)
	}

	seq[0] = 99
	if got.Row(0)[0] != 0 {
		t.Error("tensor shares memory with the input sequence")
	}
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestReshape_InsufficientData(t *testing.T) {
	// 10 ids, length 4, step 2: passes give 2 + 2 windows, fewer than 5.
	_, err := Reshape(iota32(10), 5, 4, 2)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("err = %v; want ErrInsufficientData", err)
	}
	if errors.Is(err, ErrInvalidArgument) {
		t.Error("insufficient data must be distinguishable from invalid arguments")
	}
}

func TestReshape_HugeSeqLengthShortSequence(t *testing.T) {
	tests := []struct {
		name               string
		seqLength, seqStep int
	}{
		{"step one", 1 << 30, 1},
		{"step near length", 1 << 30, 1<<30 - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reshape([]int32{1, 2, 3}, 1, tt.seqLength, tt.seqStep)
			if !errors.Is(err, ErrInsufficientData) {
				t.Fatalf("err = %v; want ErrInsufficientData", err)
			}

			g := Geometry{BatchSize: 1, SeqLength: tt.seqLength, SeqStep: tt.seqStep}
			if n := len(g.passes(3)); n > 3 {
				t.Errorf("passes(3) built %d strips; want at most 3", n)
			}
			if got := g.PoolRows(3); got != 0 {
				t.Errorf("PoolRows(3) = %d; want 0", got)
			}
		})
	}
}

func TestReshape_InvalidArguments(t *testing.T) {
	tests := []struct {
		name                         string
		seq                          []int32
		batchSize, seqLength, seqStep int
	}{
		{"zero batch size", iota32(10), 0, 4, 2},
		{"negative batch size", iota32(10), -1, 4, 2},
		{"zero seq length", iota32(10), 1, 0, 1},
		{"zero seq step", iota32(10), 1, 4, 0},
		{"step equals length", iota32(10), 1, 4, 4},
		{"step exceeds length", iota32(10), 1, 4, 5},
		{"empty sequence", nil, 1, 4, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reshape(tt.seq, tt.batchSize, tt.seqLength, tt.seqStep)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("err = %v; want ErrInvalidArgument", err)
			}
		})
	}
}

func TestGeometry_NumBatches(t *testing.T) {
	g := Geometry{BatchSize: 2, SeqLength: 4, SeqStep: 2}
	if got := g.NumBatches(20); got != 4 {
		t.Errorf("NumBatches(20) = %d; want 4", got)
	}
	if got := g.NumBatches(3); got != 0 {
		t.Errorf("NumBatches(3) = %d; want 0", got)
	}
	if got := (Geometry{}).NumBatches(100); got != 0 {
		t.Errorf("zero geometry NumBatches = %d; want 0", got)
	}
}
