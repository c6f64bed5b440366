package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorsUnwrapToSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{"device", &DeviceError{Op: "upload volume", Code: 0x505}, ErrDevice, "device error: upload volume (0x505)"},
		{"compile", &ShaderCompileError{Stage: "fragment", Log: "0:1: syntax error"}, ErrShaderCompile, "shader compile error (fragment stage): 0:1: syntax error"},
		{"link", &ShaderLinkError{Log: "unresolved uniform"}, ErrShaderLink, "shader link error: unresolved uniform"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.EqualError(t, tc.err, tc.message)
			wrapped := fmt.Errorf("startup: %w", tc.err)
			assert.ErrorIs(t, wrapped, tc.sentinel)
		})
	}
}

func TestDeviceErrorAs(t *testing.T) {
	err := fmt.Errorf("initial volume upload: %w", &DeviceError{Op: "TexImage3D", Code: 0x501})

	var de *DeviceError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "TexImage3D", de.Op)
	assert.Equal(t, uint32(0x501), de.Code)
	assert.False(t, errors.Is(err, ErrShaderCompile))
}
