package predict

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/nail-disease-api/internal/model"
	"github.com/Brownie44l1/nail-disease-api/internal/model/modeltest"
	"github.com/Brownie44l1/nail-disease-api/internal/storage"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 150, B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newService(t *testing.T, c model.Classifier, cacheSize int) (*Service, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := storage.NewUploadStore(dir, false)
	require.NoError(t, err)
	svc, err := NewService(c, model.DefaultLabels, store, cacheSize)
	require.NoError(t, err)
	return svc, dir
}

func requireKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, kind, perr.Kind)
	return perr
}

func TestKindStatus(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, ModelUnavailable.Status())
	assert.Equal(t, http.StatusBadRequest, MissingInput.Status())
	assert.Equal(t, http.StatusBadRequest, UnsupportedType.Status())
	assert.Equal(t, http.StatusInternalServerError, StorageError.Status())
	assert.Equal(t, http.StatusBadRequest, PreprocessError.Status())
	assert.Equal(t, http.StatusInternalServerError, ConfigError.Status())
	assert.Equal(t, http.StatusInternalServerError, InferenceError.Status())
}

func TestPredict_Clubbing(t *testing.T) {
	fake := modeltest.New(modeltest.OneHot(17, 5, 0.87)...)
	svc, dir := newService(t, fake, 0)

	pred, err := svc.Predict(context.Background(), &Upload{Filename: "sample.png", Body: bytes.NewReader(pngBytes(t))})
	require.NoError(t, err)
	assert.Equal(t, "Clubbing", pred.DiseaseName)
	assert.Equal(t, 87.0, pred.Confidence)

	assert.FileExists(t, filepath.Join(dir, "sample.png"))
	assert.Len(t, fake.LastInput(), 224*224*3)
}

func TestPredict_ModelUnavailable(t *testing.T) {
	svc, _ := newService(t, nil, 0)
	assert.False(t, svc.Ready())

	_, err := svc.Predict(context.Background(), &Upload{Filename: "sample.png", Body: bytes.NewReader(pngBytes(t))})
	perr := requireKind(t, err, ModelUnavailable)
	assert.Equal(t, "Model not available on server", perr.Message)
}

func TestPredict_MissingInput(t *testing.T) {
	svc, _ := newService(t, modeltest.New(modeltest.OneHot(17, 0, 0.9)...), 0)

	_, err := svc.Predict(context.Background(), nil)
	assert.Equal(t, "No file uploaded", requireKind(t, err, MissingInput).Message)

	_, err = svc.Predict(context.Background(), &Upload{Filename: "", Body: strings.NewReader("x")})
	assert.Equal(t, "No file selected", requireKind(t, err, MissingInput).Message)
}

func TestPredict_UnsupportedType(t *testing.T) {
	svc, dir := newService(t, modeltest.New(modeltest.OneHot(17, 0, 0.9)...), 0)

	for _, name := range []string{"notes.txt", "image.gif", "..", "png"} {
		_, err := svc.Predict(context.Background(), &Upload{Filename: name, Body: bytes.NewReader(pngBytes(t))})
		requireKind(t, err, UnsupportedType)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected uploads are not stored")
}

func TestPredict_StorageError(t *testing.T) {
	svc, dir := newService(t, modeltest.New(modeltest.OneHot(17, 0, 0.9)...), 0)
	require.NoError(t, os.RemoveAll(dir))

	_, err := svc.Predict(context.Background(), &Upload{Filename: "sample.png", Body: bytes.NewReader(pngBytes(t))})
	requireKind(t, err, StorageError)
}

func TestPredict_PreprocessError(t *testing.T) {
	fake := modeltest.New(modeltest.OneHot(17, 0, 0.9)...)
	svc, _ := newService(t, fake, 0)

	_, err := svc.Predict(context.Background(), &Upload{Filename: "broken.jpg", Body: strings.NewReader("not really a jpeg")})
	requireKind(t, err, PreprocessError)
	assert.Zero(t, fake.Calls())
}

func TestPredict_ConfigError(t *testing.T) {
	fake := modeltest.New(modeltest.OneHot(16, 0, 0.9)...)
	svc, _ := newService(t, fake, 0)

	_, err := svc.Predict(context.Background(), &Upload{Filename: "sample.png", Body: bytes.NewReader(pngBytes(t))})
	requireKind(t, err, ConfigError)
	assert.Zero(t, fake.Calls())
}

func TestPredict_InferenceError(t *testing.T) {
	fake := modeltest.New(modeltest.OneHot(17, 0, 0.9)...)
	fake.Err = errors.New("session crashed")
	svc, _ := newService(t, fake, 0)

	_, err := svc.Predict(context.Background(), &Upload{Filename: "sample.png", Body: bytes.NewReader(pngBytes(t))})
	perr := requireKind(t, err, InferenceError)
	assert.ErrorIs(t, err, fake.Err)
	assert.Equal(t, "Prediction failed", perr.Message)
}

func TestPredict_EmptyOutputIsInferenceError(t *testing.T) {
	fake := modeltest.New()
	fake.Out = []int64{1, 17}
	svc, _ := newService(t, fake, 0)

	_, err := svc.Predict(context.Background(), &Upload{Filename: "sample.png", Body: bytes.NewReader(pngBytes(t))})
	requireKind(t, err, InferenceError)
}

func TestPredict_NonFiniteOutputIsInferenceError(t *testing.T) {
	probs := modeltest.OneHot(17, 5, 0.87)
	probs[0] = float32(math.NaN())
	fake := modeltest.New(probs...)
	svc, _ := newService(t, fake, 8)

	_, err := svc.Predict(context.Background(), &Upload{Filename: "sample.png", Body: bytes.NewReader(pngBytes(t))})
	requireKind(t, err, InferenceError)
	assert.ErrorIs(t, err, model.ErrNonFinite)

	_, err = svc.Predict(context.Background(), &Upload{Filename: "sample.png", Body: bytes.NewReader(pngBytes(t))})
	requireKind(t, err, InferenceError)
	assert.Equal(t, 2, fake.Calls(), "failed predictions are not cached")
}

func TestPredict_Idempotent(t *testing.T) {
	fake := modeltest.New(modeltest.OneHot(17, 12, 0.6543)...)
	svc, _ := newService(t, fake, 0)
	data := pngBytes(t)

	first, err := svc.Predict(context.Background(), &Upload{Filename: "a.png", Body: bytes.NewReader(data)})
	require.NoError(t, err)
	second, err := svc.Predict(context.Background(), &Upload{Filename: "a.png", Body: bytes.NewReader(data)})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "Red lunula", first.DiseaseName)
	assert.Equal(t, 65.43, first.Confidence)
	assert.Equal(t, 2, fake.Calls())
}

func TestPredict_CacheSkipsInference(t *testing.T) {
	fake := modeltest.New(modeltest.OneHot(17, 3, 0.5)...)
	svc, dir := newService(t, fake, 8)
	data := pngBytes(t)

	first, err := svc.Predict(context.Background(), &Upload{Filename: "a.png", Body: bytes.NewReader(data)})
	require.NoError(t, err)
	second, err := svc.Predict(context.Background(), &Upload{Filename: "b.png", Body: bytes.NewReader(data)})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fake.Calls())
	assert.FileExists(t, filepath.Join(dir, "b.png"), "cached answers still store the upload")
}
