package platform

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetOS(t *testing.T) {
	assert.Equal(t, SupportedOS(runtime.GOOS), GetOS())
}

func TestValidateSupport(t *testing.T) {
	switch runtime.GOOS {
	case "linux", "windows", "darwin":
		assert.True(t, IsSupported())
		assert.NoError(t, ValidateSupport())
	default:
		assert.False(t, IsSupported())
		assert.ErrorContains(t, ValidateSupport(), runtime.GOOS)
	}
}
