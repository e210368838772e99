package safetensors

import (
	"fmt"
	"strconv"

	"github.com/example/go-wordrnn/internal/batch"
)

// Tensor holds a single int32 tensor.
type Tensor struct {
	Name  string
	Shape []int64
	Data  []int32
}

// BatchesTensor is the name under which prepared batches are stored.
const BatchesTensor = "batches"

// Metadata keys written alongside the batches tensor.
const (
	MetaBatchSize  = "batch_size"
	MetaSeqLength  = "seq_length"
	MetaSeqStep    = "seq_step"
	MetaNumBatches = "num_batches"
	MetaMode       = "mode"
)

// WriteBatches stores t as a [rows, seq_length] tensor. The geometry is
// recorded in the metadata together with any extra entries.
func WriteBatches(path string, t *batch.Tensor, g batch.Geometry, extra map[string]string) error {
	meta := map[string]string{
		MetaBatchSize:  strconv.Itoa(g.BatchSize),
		MetaSeqLength:  strconv.Itoa(g.SeqLength),
		MetaSeqStep:    strconv.Itoa(g.SeqStep),
		MetaNumBatches: strconv.Itoa(t.NumBatches()),
	}
	for k, v := range extra {
		if _, taken := meta[k]; !taken {
			meta[k] = v
		}
	}

	return WriteFile(path, []Tensor{{
		Name:  BatchesTensor,
		Shape: []int64{int64(t.Rows), int64(t.SeqLength)},
		Data:  t.Data,
	}}, meta)
}

// LoadBatches reads a file written by WriteBatches.
func LoadBatches(path string) (*batch.Tensor, map[string]string, error) {
	store, err := OpenStore(path)
	if err != nil {
		return nil, nil, err
	}
	defer store.Close()

	meta := store.Metadata()
	batchSize, err := strconv.Atoi(meta[MetaBatchSize])
	if err != nil || batchSize <= 0 {
		return nil, nil, fmt.Errorf("safetensors: %s: invalid %s metadata %q", path, MetaBatchSize, meta[MetaBatchSize])
	}

	tensor, err := store.Tensor(BatchesTensor)
	if err != nil {
		return nil, nil, err
	}
	if len(tensor.Shape) != 2 {
		return nil, nil, fmt.Errorf("safetensors: %s has %dD shape %v, expected 2D", BatchesTensor, len(tensor.Shape), tensor.Shape)
	}

	rows, seqLength := int(tensor.Shape[0]), int(tensor.Shape[1])
	if rows == 0 || seqLength == 0 {
		return nil, nil, fmt.Errorf("safetensors: %s has empty shape %v", BatchesTensor, tensor.Shape)
	}
	if n, err := strconv.Atoi(meta[MetaSeqLength]); err != nil || n != seqLength {
		return nil, nil, fmt.Errorf("safetensors: %s metadata %q does not match row length %d", MetaSeqLength, meta[MetaSeqLength], seqLength)
	}
	if rows%batchSize != 0 {
		return nil, nil, fmt.Errorf("safetensors: %d rows is not a multiple of batch size %d", rows, batchSize)
	}

	return &batch.Tensor{
		Rows:      rows,
		SeqLength: seqLength,
		BatchSize: batchSize,
		Data:      tensor.Data,
	}, meta, nil
}
