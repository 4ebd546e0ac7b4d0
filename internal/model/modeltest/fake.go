// Package modeltest provides an in-memory Classifier for tests.
package modeltest

import (
	"context"
	"sync"

	"github.com/Brownie44l1/nail-disease-api/internal/model"
)

var _ model.Classifier = (*Fake)(nil)

// Fake returns Output for every call, or Err when set.
type Fake struct {
	In  []int64
	Out []int64

	Output []float32
	Err    error

	mu    sync.Mutex
	calls int
	last  []float32
}

// New returns a Fake with an NHWC 224x224 input and a [1, len(output)] output.
func New(output ...float32) *Fake {
	return &Fake{
		In:     []int64{1, 224, 224, 3},
		Out:    []int64{1, int64(len(output))},
		Output: output,
	}
}

// OneHot returns a probability vector of size n with p at idx and the rest
// spread evenly.
func OneHot(n, idx int, p float32) []float32 {
	out := make([]float32, n)
	rest := (1 - p) / float32(n-1)
	for i := range out {
		out[i] = rest
	}
	out[idx] = p
	return out
}

func (f *Fake) InputShape() []int64  { return f.In }
func (f *Fake) OutputShape() []int64 { return f.Out }

func (f *Fake) Predict(_ context.Context, input []float32) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = input
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]float32(nil), f.Output...), nil
}

// Calls returns how many times Predict ran.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// LastInput returns the tensor passed to the most recent Predict call.
func (f *Fake) LastInput() []float32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}
