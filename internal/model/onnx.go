package model

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXClassifier runs an ONNX model through onnxruntime. The input and output
// tensors are bound to the session once, so Run calls are serialised.
type ONNXClassifier struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	inputShape   []int64
	outputShape  []int64
}

var (
	envMu   sync.Mutex
	envRefs int
)

// acquireEnvironment initializes the onnxruntime environment on first use.
// libPath, when set, points at the onnxruntime shared library.
func acquireEnvironment(libPath string) error {
	envMu.Lock()
	defer envMu.Unlock()

	if envRefs == 0 {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	}
	envRefs++
	return nil
}

func releaseEnvironment() {
	envMu.Lock()
	defer envMu.Unlock()

	envRefs--
	if envRefs == 0 {
		ort.DestroyEnvironment()
	}
}

// NewONNXClassifier opens the model at modelPath. The first input and the
// first output of the graph are used; a dynamic batch dimension is pinned to 1.
func NewONNXClassifier(modelPath, libPath string) (*ONNXClassifier, error) {
	if err := acquireEnvironment(libPath); err != nil {
		return nil, err
	}

	c, err := newONNXClassifier(modelPath)
	if err != nil {
		releaseEnvironment()
		return nil, err
	}
	return c, nil
}

func newONNXClassifier(modelPath string) (*ONNXClassifier, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect model: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("model %s has no inputs or outputs", modelPath)
	}

	inputShape := pinDynamicDims(inputs[0].Dimensions)
	outputShape := pinDynamicDims(outputs[0].Dimensions)

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(inputShape...))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(outputShape...))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{inputs[0].Name}, []string{outputs[0].Name},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &ONNXClassifier{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		inputShape:   inputShape,
		outputShape:  outputShape,
	}, nil
}

// pinDynamicDims replaces unknown (<= 0) dimensions with 1.
func pinDynamicDims(dims ort.Shape) []int64 {
	out := make([]int64, len(dims))
	for i, d := range dims {
		if d <= 0 {
			d = 1
		}
		out[i] = d
	}
	return out
}

func (c *ONNXClassifier) InputShape() []int64 {
	return append([]int64(nil), c.inputShape...)
}

func (c *ONNXClassifier) OutputShape() []int64 {
	return append([]int64(nil), c.outputShape...)
}

// Predict copies input into the bound input tensor, runs the session and
// returns a copy of the output.
func (c *ONNXClassifier) Predict(ctx context.Context, input []float32) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	dst := c.inputTensor.GetData()
	if len(input) != len(dst) {
		return nil, fmt.Errorf("expected %d input values, got %d", len(dst), len(input))
	}
	copy(dst, input)

	if err := c.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	return append([]float32(nil), c.outputTensor.GetData()...), nil
}

func (c *ONNXClassifier) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return
	}
	c.session.Destroy()
	c.inputTensor.Destroy()
	c.outputTensor.Destroy()
	c.session = nil
	releaseEnvironment()
}
