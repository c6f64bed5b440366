package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDimensions is returned when a volume is created with an axis <= 0.
	ErrInvalidDimensions = errors.New("invalid volume dimensions")

	// ErrOutOfRange is returned by voxel accessors for coordinates outside the grid.
	ErrOutOfRange = errors.New("voxel coordinate out of range")

	// ErrDevice marks GPU resource creation or upload failures.
	ErrDevice = errors.New("device error")

	ErrShaderCompile = errors.New("shader compile error")
	ErrShaderLink    = errors.New("shader link error")
)

// DeviceError reports a failed GPU operation together with the driver error code.
type DeviceError struct {
	Op   string
	Code uint32
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s: %s (0x%x)", ErrDevice, e.Op, e.Code)
}

func (e *DeviceError) Unwrap() error { return ErrDevice }

// ShaderCompileError carries the driver info log of a failed shader stage.
type ShaderCompileError struct {
	Stage string
	Log   string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("%s (%s stage): %s", ErrShaderCompile, e.Stage, e.Log)
}

func (e *ShaderCompileError) Unwrap() error { return ErrShaderCompile }

// ShaderLinkError carries the driver info log of a failed program link.
type ShaderLinkError struct {
	Log string
}

func (e *ShaderLinkError) Error() string {
	return fmt.Sprintf("%s: %s", ErrShaderLink, e.Log)
}

func (e *ShaderLinkError) Unwrap() error { return ErrShaderLink }
