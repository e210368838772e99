// Package sample draws token indices from a model's output distribution.
package sample

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrEmptyDistribution is returned for an empty probability vector.
	ErrEmptyDistribution = errors.New("sample: empty distribution")
	// ErrInvalidTemperature is returned for a temperature that is not a positive finite number.
	ErrInvalidTemperature = errors.New("sample: temperature must be positive and finite")
	// ErrInvalidProbability is returned for negative or non-finite probabilities.
	ErrInvalidProbability = errors.New("sample: invalid probability")
)

// tiny is the smallest normal float64. Adding it keeps log away from -Inf.
const tiny = 0x1p-1022

// Sampler draws indices from temperature-scaled categorical distributions.
// A Sampler is not safe for concurrent use.
type Sampler struct {
	src rand.Source
}

// New returns a Sampler seeded with seed. A zero seed draws a random one.
func New(seed uint64) *Sampler {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Sampler{src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)}
}

// Sample picks an index from the unnormalized probabilities preds after
// raising them to the power 1/temperature. Temperatures below 1 sharpen the
// distribution, above 1 flatten it.
func (s *Sampler) Sample(preds []float64, temperature float64) (int, error) {
	weights, err := Scale(preds, temperature)
	if err != nil {
		return 0, err
	}
	return int(distuv.NewCategorical(weights, s.src).Rand()), nil
}

// Scale returns the normalized distribution Sample draws from.
func Scale(preds []float64, temperature float64) ([]float64, error) {
	if len(preds) == 0 {
		return nil, ErrEmptyDistribution
	}
	if temperature <= 0 || math.IsNaN(temperature) || math.IsInf(temperature, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidTemperature, temperature)
	}

	logits := make([]float64, len(preds))
	for i, p := range preds {
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("%w: %v at index %d", ErrInvalidProbability, p, i)
		}
		logits[i] = math.Log(p+tiny) / temperature
	}

	// Shift by the max before exponentiating so large 1/temperature cannot overflow.
	floats.AddConst(-floats.Max(logits), logits)
	for i, l := range logits {
		logits[i] = math.Exp(l)
	}
	floats.Scale(1/floats.Sum(logits), logits)
	return logits, nil
}
