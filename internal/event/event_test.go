package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeString(t *testing.T) {
	assert.Equal(t, "CopyStarted", CopyStarted.String())
	assert.Equal(t, "Progress", Progress.String())
	assert.Equal(t, "RangeCompleted", RangeCompleted.String())
	assert.Equal(t, "FileCompleted", FileCompleted.String())
	assert.Equal(t, "FileFailed", FileFailed.String())
	assert.Equal(t, "DirCreated", DirCreated.String())
	assert.Equal(t, "VerifyStarted", VerifyStarted.String())
	assert.Equal(t, "VerifyOK", VerifyOK.String())
	assert.Equal(t, "VerifyFailed", VerifyFailed.String())
	assert.Equal(t, "Unknown", Type(0).String())
	assert.Equal(t, "Unknown", Type(99).String())
}
