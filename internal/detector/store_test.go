package detector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedMissingArtifact(t *testing.T) {
	ResetCache()
	_, err := Cached(filepath.Join(t.TempDir(), "absent.model"))
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestCachedLoadsOnce(t *testing.T) {
	ResetCache()
	t.Cleanup(ResetCache)

	path := filepath.Join(t.TempDir(), "iforest.model")
	f := New(WithSeed(42))
	require.NoError(t, f.Fit(trainingPopulation()))
	require.NoError(t, f.SaveFile(path))

	first, err := Cached(path)
	require.NoError(t, err)

	// the handle survives the artifact disappearing: loaded at most once
	require.NoError(t, os.Remove(path))
	second, err := Cached(path)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestCachedRetriesAfterFailure(t *testing.T) {
	ResetCache()
	t.Cleanup(ResetCache)

	path := filepath.Join(t.TempDir(), "iforest.model")
	_, err := Cached(path)
	require.ErrorIs(t, err, ErrModelUnavailable)

	f := New(WithSeed(42))
	require.NoError(t, f.Fit(trainingPopulation()))
	require.NoError(t, f.SaveFile(path))

	loaded, err := Cached(path)
	require.NoError(t, err)
	assert.NotNil(t, loaded)
}
