package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "jaccard.csv")
	require.NoError(t, os.WriteFile(out, []byte("old"), 0o644))
	require.NoError(t, WriteFileAtomic(out, []byte("new")))

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "new", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, filepath.Join("base", "a.gpkg"), ResolvePath("base", "a.gpkg"))
	assert.Equal(t, "/abs/a.gpkg", ResolvePath("base", "/abs/a.gpkg"))
	assert.Equal(t, "a.gpkg", ResolvePath("", "a.gpkg"))
	assert.Equal(t, "Samo_20010108_sgl_vec", GetFilenameWithoutExt("/x/Samo_20010108_sgl_vec.gpkg"))
}
