package model

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/apex/log"
)

// ModelFilename is the artifact name searched for by DefaultCandidates.
const ModelFilename = "vgg-16-nail-disease.onnx"

// OpenFunc opens a model artifact at path.
type OpenFunc func(path string) (Classifier, error)

// DefaultCandidates returns the search order for the model artifact below
// baseDir: static/models first, then baseDir itself.
func DefaultCandidates(baseDir string) []string {
	return []string{
		filepath.Join(baseDir, "static", "models", ModelFilename),
		filepath.Join(baseDir, ModelFilename),
	}
}

// Load opens the first candidate that exists and loads cleanly. Failures are
// logged and the next candidate is tried. When nothing loads, Load returns a
// nil Classifier and the server runs with prediction disabled.
func Load(candidates []string, open OpenFunc) (Classifier, string) {
	for _, p := range candidates {
		if _, err := os.Stat(p); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				log.WithError(err).WithField("path", p).Warn("Cannot stat model candidate")
			}
			continue
		}

		log.WithField("path", p).Info("Loading model")
		c, err := open(p)
		if err != nil {
			log.WithError(err).WithField("path", p).Error("Failed loading model")
			continue
		}
		if c == nil {
			log.WithField("path", p).Error("Model loader returned no classifier")
			continue
		}

		log.WithFields(log.Fields{
			"path":         p,
			"input_shape":  c.InputShape(),
			"output_shape": c.OutputShape(),
		}).Info("Model loaded")
		return c, p
	}

	log.WithField("candidates", candidates).Error("Model file not found in expected locations")
	return nil, ""
}
