package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeSubdir(t *testing.T) {
	base := t.TempDir()

	got, err := SafeSubdir(base, "job.mp4")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "job.mp4"), got)

	got, err = SafeSubdir(base, "/nested/job.mp4")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "nested", "job.mp4"), got)

	got, err = SafeSubdir(base, "")
	require.NoError(t, err)
	assert.Equal(t, base, got)

	_, err = SafeSubdir(base, "../escape.mp4")
	require.ErrorIs(t, err, ErrPathTraversal)
}

func TestNewJobID(t *testing.T) {
	a, b := NewJobID(), NewJobID()
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
