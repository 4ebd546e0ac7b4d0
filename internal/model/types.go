package model

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Classifier is a loaded image classifier. Implementations are built once at
// startup and shared read-only between requests.
type Classifier interface {
	InputShape() []int64
	OutputShape() []int64
	Predict(ctx context.Context, input []float32) ([]float32, error)
}

// Prediction is the answer returned to clients.
type Prediction struct {
	DiseaseName string  `json:"disease_name"`
	Confidence  float64 `json:"confidence"`
}

// DefaultLabels is the class order the nail-disease network was trained with.
var DefaultLabels = []string{
	"Darier's disease",
	"Muehrcke's lines",
	"Alopecia areata",
	"Beau's lines",
	"Bluish nail",
	"Clubbing",
	"Eczema",
	"Half and half nails (Lindsay's nails)",
	"Koilonychia",
	"Leukonychia",
	"Onycholysis",
	"Pale nail",
	"Red lunula",
	"Splinter hemorrhage",
	"Terry's nail",
	"White nail",
	"Yellow nails",
}

// LoadLabels reads a JSON array of class names. An empty path returns a copy
// of DefaultLabels.
func LoadLabels(path string) ([]string, error) {
	if path == "" {
		return append([]string(nil), DefaultLabels...), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}

	var labels []string
	if err := json.Unmarshal(raw, &labels); err != nil {
		return nil, fmt.Errorf("failed to parse labels: %w", err)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("labels file %s is empty", path)
	}
	return labels, nil
}
