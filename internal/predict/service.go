// Package predict runs an uploaded image through the classifier.
package predict

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/apex/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Brownie44l1/nail-disease-api/internal/metrics"
	"github.com/Brownie44l1/nail-disease-api/internal/model"
	"github.com/Brownie44l1/nail-disease-api/internal/preprocess"
	"github.com/Brownie44l1/nail-disease-api/internal/storage"
)

// Upload is the "file" part of a predict request.
type Upload struct {
	Filename string
	Body     io.Reader
}

// Service validates, stores, preprocesses and classifies uploads. The
// classifier may be nil, in which case every request fails with
// ModelUnavailable.
type Service struct {
	classifier model.Classifier
	labels     []string
	store      *storage.UploadStore
	opts       preprocess.Options
	cache      *lru.Cache[string, model.Prediction]
}

// NewService builds a Service. cacheSize <= 0 disables the result cache.
func NewService(classifier model.Classifier, labels []string, store *storage.UploadStore, cacheSize int) (*Service, error) {
	s := &Service{
		classifier: classifier,
		labels:     labels,
		store:      store,
		opts:       preprocess.DefaultOptions(),
	}
	if classifier != nil {
		s.opts = preprocess.OptionsFor(classifier.InputShape())
	}

	if cacheSize > 0 {
		cache, err := lru.New[string, model.Prediction](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create prediction cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Ready reports whether a classifier is loaded.
func (s *Service) Ready() bool {
	return s.classifier != nil
}

// Predict runs the full request lifecycle for up. A nil up means the request
// carried no file part. Failures are always *Error.
func (s *Service) Predict(ctx context.Context, up *Upload) (pred *model.Prediction, err error) {
	logger := log.FromContext(ctx)

	defer func() {
		result := "ok"
		var perr *Error
		if errors.As(err, &perr) {
			result = perr.Kind.String()
		}
		metrics.PredictTotal.WithLabelValues(result).Inc()
	}()

	if s.classifier == nil {
		logger.Error("Prediction requested but model is not loaded")
		return nil, newError(ModelUnavailable, nil)
	}

	if up == nil {
		logger.Warn("No file part in request")
		return nil, newError(MissingInput, nil)
	}
	if up.Filename == "" {
		logger.Warn("Empty filename received")
		e := newError(MissingInput, nil)
		e.Message = "No file selected"
		return nil, e
	}

	filename := storage.SecureFilename(up.Filename)
	if !storage.AllowedExtension(filename) {
		logger.WithField("filename", up.Filename).Warn("Disallowed file extension")
		return nil, newError(UnsupportedType, nil)
	}

	hash := sha256.New()
	path, err := s.store.Save(filename, io.TeeReader(up.Body, hash))
	if err != nil {
		logger.WithError(err).Error("Failed saving uploaded file")
		return nil, newError(StorageError, err)
	}
	logger.WithField("path", path).Info("Saved uploaded file")

	key := hex.EncodeToString(hash.Sum(nil))
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			metrics.CacheHitsTotal.Inc()
			logger.WithFields(log.Fields{
				"disease_name": cached.DiseaseName,
				"confidence":   cached.Confidence,
			}).Info("Prediction served from cache")
			return &cached, nil
		}
	}

	tensor, err := preprocess.File(path, s.opts)
	if err != nil {
		logger.WithError(err).WithField("path", path).Error("Image processing error")
		return nil, newError(PreprocessError, err)
	}
	logger.WithField("shape", s.opts.Shape()).Info("Image preprocessed")

	if shape := s.classifier.OutputShape(); !model.OutputMatchesLabels(shape, s.labels) {
		logger.WithFields(log.Fields{
			"output_shape": shape,
			"labels":       len(s.labels),
		}).Error("Model output shape mismatch")
		return nil, newError(ConfigError, fmt.Errorf("output shape %v vs %d labels", shape, len(s.labels)))
	}

	start := time.Now()
	probs, err := s.classifier.Predict(ctx, tensor)
	metrics.InferenceDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		logger.WithError(err).Error("Prediction failed")
		return nil, newError(InferenceError, err)
	}

	pred, err = model.Classify(probs, s.labels)
	if err != nil {
		logger.WithError(err).Error("Prediction failed")
		return nil, newError(InferenceError, err)
	}
	logger.WithFields(log.Fields{
		"disease_name": pred.DiseaseName,
		"confidence":   pred.Confidence,
	}).Info("Prediction")

	if s.cache != nil {
		s.cache.Add(key, *pred)
	}
	return pred, nil
}
