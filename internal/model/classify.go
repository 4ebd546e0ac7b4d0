package model

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrEmptyOutput = errors.New("model returned an empty output vector")
	ErrNonFinite   = errors.New("model returned a non-finite value")
)

// Argmax returns the index of the largest value. Ties resolve to the lowest
// index. NaN or infinite values are an error.
func Argmax(values []float32) (int, error) {
	if len(values) == 0 {
		return 0, ErrEmptyOutput
	}
	for i, v := range values {
		if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w at index %d", ErrNonFinite, i)
		}
	}

	maxIdx := 0
	maxVal := values[0]
	for i, v := range values[1:] {
		if v > maxVal {
			maxVal = v
			maxIdx = i + 1
		}
	}
	return maxIdx, nil
}

// Classify maps a probability vector onto labels. The confidence is the
// winning probability as a percentage rounded to two decimals.
func Classify(probs []float32, labels []string) (*Prediction, error) {
	idx, err := Argmax(probs)
	if err != nil {
		return nil, err
	}
	if idx >= len(labels) {
		return nil, fmt.Errorf("class index %d out of range for %d labels", idx, len(labels))
	}

	return &Prediction{
		DiseaseName: labels[idx],
		Confidence:  RoundPercent(float64(probs[idx])),
	}, nil
}

// RoundPercent converts a probability to a percentage with two decimals.
func RoundPercent(p float64) float64 {
	return math.Round(p*100*100) / 100
}

// OutputMatchesLabels reports whether shape is [batch, len(labels), ...].
func OutputMatchesLabels(shape []int64, labels []string) bool {
	return len(shape) >= 2 && shape[1] == int64(len(labels))
}
