package batch

// Tensor is a row-major [Rows, SeqLength] block of token IDs backed by one
// flat buffer. Rows is always a multiple of BatchSize.
type Tensor struct {
	Rows      int
	SeqLength int
	BatchSize int
	Data      []int32
}

// Shape returns (Rows, SeqLength).
func (t *Tensor) Shape() (rows, cols int) {
	return t.Rows, t.SeqLength
}

// NumBatches returns Rows / BatchSize.
func (t *Tensor) NumBatches() int {
	if t.BatchSize == 0 {
		return 0
	}
	return t.Rows / t.BatchSize
}

// Row returns row i as a view into Data.
func (t *Tensor) Row(i int) []int32 {
	start := i * t.SeqLength
	return t.Data[start : start+t.SeqLength : start+t.SeqLength]
}

// Batch returns the BatchSize rows fed to the model at step b, as views.
func (t *Tensor) Batch(b int) [][]int32 {
	rows := make([][]int32, t.BatchSize)
	for i := range rows {
		rows[i] = t.Row(b*t.BatchSize + i)
	}
	return rows
}

// ToRows copies the tensor into a freshly allocated slice of rows.
func (t *Tensor) ToRows() [][]int32 {
	rows := make([][]int32, t.Rows)
	for i := range rows {
		rows[i] = append([]int32(nil), t.Row(i)...)
	}
	return rows
}
