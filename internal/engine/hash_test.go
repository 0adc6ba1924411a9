package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	c := filepath.Join(dir, "c")
	require.NoError(t, os.WriteFile(a, []byte("same content"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("same content"), 0644))
	require.NoError(t, os.WriteFile(c, []byte("other content"), 0644))

	sumA, err := HashFile(a)
	require.NoError(t, err)
	assert.Len(t, sumA, 64) // 32-byte digest, hex-encoded

	sumB, err := HashFile(b)
	require.NoError(t, err)
	assert.Equal(t, sumA, sumB)

	sumC, err := HashFile(c)
	require.NoError(t, err)
	assert.NotEqual(t, sumA, sumC)
}

func TestHashFileMissing(t *testing.T) {
	_, err := HashFile(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
