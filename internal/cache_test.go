package internal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/tregex/search"
)

func TestCache(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	cacheDir := filepath.Join(tmpDir, "cache")
	cache, err := NewCache(cacheDir)
	require.NoError(t, err)

	filename := filepath.Join(tmpDir, "bank.mrg")
	require.NoError(t, os.WriteFile(filename, []byte("(S (NP (DT the)))"), 0o644))

	matches := []search.Match{{
		Pattern:  "NP < DT=d",
		File:     filename,
		Node:     "(NP (DT the))",
		Captures: map[string]string{"d": "(DT the)"},
	}}

	t.Run("SaveAndLoad", func(t *testing.T) {
		require.NoError(t, cache.Set(filename, "NP < DT=d", matches))

		loaded, found := cache.Get(filename, "NP < DT=d")
		assert.True(t, found)
		assert.Equal(t, matches, loaded)

		reopened, err := NewCache(cacheDir)
		require.NoError(t, err)
		loaded, found = reopened.Get(filename, "NP < DT=d")
		assert.True(t, found)
		assert.Equal(t, matches, loaded)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, found := cache.Get("nonexistent.mrg", "NP")
		assert.False(t, found)
		_, found = cache.Get(filename, "other patterns")
		assert.False(t, found)
	})

	t.Run("FileModified", func(t *testing.T) {
		modified := filepath.Join(tmpDir, "modified.mrg")
		require.NoError(t, os.WriteFile(modified, []byte("(S (VP x))"), 0o644))
		require.NoError(t, cache.Set(modified, "VP", nil))

		require.NoError(t, os.WriteFile(modified, []byte("(S (VP y))"), 0o644))
		_, found := cache.Get(modified, "VP")
		assert.False(t, found)
	})
}

func TestCacheMaxAge(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	cache, err := NewCache(filepath.Join(tmpDir, "cache"))
	require.NoError(t, err)

	filename := filepath.Join(tmpDir, "bank.mrg")
	require.NoError(t, os.WriteFile(filename, []byte("(S x)"), 0o644))
	require.NoError(t, cache.Set(filename, "S", nil))

	cache.SetMaxAge(-time.Second)
	_, found := cache.Get(filename, "S")
	assert.False(t, found)
	assert.Equal(t, 0, cache.Len())
}

func TestCacheInvalidateAll(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	cacheDir := filepath.Join(tmpDir, "cache")
	cache, err := NewCache(cacheDir)
	require.NoError(t, err)

	filename := filepath.Join(tmpDir, "bank.mrg")
	require.NoError(t, os.WriteFile(filename, []byte("(S x)"), 0o644))
	require.NoError(t, cache.Set(filename, "S", nil))
	require.NoError(t, cache.InvalidateAll())

	reopened, err := NewCache(cacheDir)
	require.NoError(t, err)
	assert.Equal(t, 0, reopened.Len())
}

func TestNewCacheCorrupt(t *testing.T) {
	t.Parallel()
	cacheDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, cacheFileName), []byte("not gob"), 0o644))

	_, err := NewCache(cacheDir)
	assert.ErrorContains(t, err, "failed to load cache")
}

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Run(_ context.Context, path string) ([]search.Match, error) {
	args := m.Called(path)
	matches, _ := args.Get(0).([]search.Match)
	return matches, args.Error(1)
}

func TestCachedEngine(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	cache, err := NewCache(filepath.Join(tmpDir, "cache"))
	require.NoError(t, err)

	good := filepath.Join(tmpDir, "good.mrg")
	bad := filepath.Join(tmpDir, "bad.mrg")
	require.NoError(t, os.WriteFile(good, []byte("(S x)"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("(S"), 0o644))

	want := []search.Match{{Pattern: "S", File: good, Node: "(S x)"}}
	inner := new(mockEngine)
	inner.On("Run", good).Return(want, nil).Once()
	inner.On("Run", bad).Return(nil, errors.New("unterminated tree")).Twice()

	engine := &CachedEngine{Engine: inner, Cache: cache, Key: "S"}
	for range 2 {
		got, err := engine.Run(t.Context(), good)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		_, err = engine.Run(t.Context(), bad)
		assert.Error(t, err, "errors are not cached")
	}
	inner.AssertExpectations(t)
}
