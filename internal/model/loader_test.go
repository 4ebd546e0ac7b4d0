package model_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/nail-disease-api/internal/model"
	"github.com/Brownie44l1/nail-disease-api/internal/model/modeltest"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("onnx"), 0o644))
}

func TestDefaultCandidates(t *testing.T) {
	got := model.DefaultCandidates("web")
	assert.Equal(t, []string{
		filepath.Join("web", "static", "models", model.ModelFilename),
		filepath.Join("web", model.ModelFilename),
	}, got)
}

func TestLoad_FirstExistingCandidateWins(t *testing.T) {
	dir := t.TempDir()
	candidates := model.DefaultCandidates(dir)
	touch(t, candidates[0])
	touch(t, candidates[1])

	var opened []string
	c, path := model.Load(candidates, func(p string) (model.Classifier, error) {
		opened = append(opened, p)
		return modeltest.New(0.5, 0.5), nil
	})

	require.NotNil(t, c)
	assert.Equal(t, candidates[0], path)
	assert.Equal(t, []string{candidates[0]}, opened)
}

func TestLoad_FallsBackAfterOpenFailure(t *testing.T) {
	dir := t.TempDir()
	candidates := model.DefaultCandidates(dir)
	touch(t, candidates[0])
	touch(t, candidates[1])

	c, path := model.Load(candidates, func(p string) (model.Classifier, error) {
		if p == candidates[0] {
			return nil, errors.New("corrupt")
		}
		return modeltest.New(1), nil
	})

	require.NotNil(t, c)
	assert.Equal(t, candidates[1], path)
}

func TestLoad_SkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	candidates := model.DefaultCandidates(dir)
	touch(t, candidates[1])

	c, path := model.Load(candidates, func(p string) (model.Classifier, error) {
		return modeltest.New(1), nil
	})

	require.NotNil(t, c)
	assert.Equal(t, candidates[1], path)
}

func TestLoad_NothingFound(t *testing.T) {
	called := false
	c, path := model.Load(model.DefaultCandidates(t.TempDir()), func(string) (model.Classifier, error) {
		called = true
		return nil, nil
	})

	assert.Nil(t, c)
	assert.Empty(t, path)
	assert.False(t, called)
}

func TestLoad_AllFail(t *testing.T) {
	dir := t.TempDir()
	candidates := model.DefaultCandidates(dir)
	touch(t, candidates[0])
	touch(t, candidates[1])

	c, _ := model.Load(candidates, func(string) (model.Classifier, error) {
		return nil, errors.New("bad model")
	})
	assert.Nil(t, c)
}

func TestLoadLabels(t *testing.T) {
	labels, err := model.LoadLabels("")
	require.NoError(t, err)
	assert.Len(t, labels, 17)
	assert.Equal(t, "Clubbing", labels[5])

	path := filepath.Join(t.TempDir(), "labels.json")
	require.NoError(t, os.WriteFile(path, []byte(`["a","b"]`), 0o644))
	labels, err = model.LoadLabels(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, labels)

	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))
	_, err = model.LoadLabels(path)
	assert.Error(t, err)

	_, err = model.LoadLabels(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
