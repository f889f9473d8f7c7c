package resource

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMap(t *testing.T, dir, name string, m *TileMap) {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func TestLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	writeMap(t, dir, "plains.json", &TileMap{
		ID: 1, Name: "plains", Width: 2, Height: 2, Collision: make([]int, 4),
	})
	writeMap(t, dir, "cave.json", &TileMap{
		ID: 2, Name: "cave", Width: 3, Height: 1, Collision: []int{0, BlockAll, 0},
	})
	// Non-JSON files are skipped.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("x"), 0o644))

	l := NewLoader(dir)
	require.NoError(t, l.Load())

	assert.Len(t, l.Maps, 2)
	assert.Equal(t, "plains", l.Maps[1].Name)
	require.Contains(t, l.Passability, 2)
	assert.False(t, l.Passability[2].CanPass(1, 0, DirLeft))
}

func TestLoaderDuplicateID(t *testing.T) {
	dir := t.TempDir()
	writeMap(t, dir, "a.json", &TileMap{ID: 1, Width: 1, Height: 1, Collision: []int{0}})
	writeMap(t, dir, "b.json", &TileMap{ID: 1, Width: 1, Height: 1, Collision: []int{0}})

	err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate map id")
}

func TestLoaderBadDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644))
	assert.Error(t, NewLoader(dir).Load())

	dir2 := t.TempDir()
	writeMap(t, dir2, "short.json", &TileMap{ID: 3, Width: 4, Height: 4, Collision: []int{0}})
	assert.Error(t, NewLoader(dir2).Load())
}

func TestLoaderMissingDir(t *testing.T) {
	err := NewLoader("/does/not/exist").Load()
	assert.Error(t, err)
}
