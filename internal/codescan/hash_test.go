package codescan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentMD5(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src.zip")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	first, err := ContentMD5(path)
	require.NoError(t, err)
	// md5("hello world") = 5eb63bbbe01eeed093cb22bb8f5acdc3
	assert.Equal(t, "XrY7u+Ae7tCTyyK7j1rNww==", first)

	second, err := ContentMD5(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestContentMD5MissingFile(t *testing.T) {
	_, err := ContentMD5(filepath.Join(t.TempDir(), "missing.zip"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
