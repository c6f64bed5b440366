package core

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Projection holds the perspective parameters. FovY is in degrees.
type Projection struct {
	FovY   float64
	Aspect float64
	Near   float64
	Far    float64
}

// DefaultProjection is a 45 degree perspective with near 0.1 and far 100
// for a target of the given pixel size.
func DefaultProjection(width, height int) Projection {
	p := Projection{FovY: 45, Near: 0.1, Far: 100}
	p.SetViewport(width, height)
	return p
}

// SetViewport recomputes the aspect ratio. A zero height (minimized window)
// keeps the previous aspect.
func (p *Projection) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		if p.Aspect == 0 {
			p.Aspect = 1
		}
		return
	}
	p.Aspect = float64(width) / float64(height)
}

// Matrix returns the right-handed, column-major perspective matrix.
func (p Projection) Matrix() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(p.FovY), p.Aspect, p.Near, p.Far)
}

// ComputeMVP composes projection * view * model.
func ComputeMVP(projection, view, model mgl64.Mat4) mgl64.Mat4 {
	return projection.Mul4(view).Mul4(model)
}

// VolumeExtent is the uVolumeSize uniform: voxel counts per axis.
func VolumeExtent(dims Dimensions) mgl32.Vec3 {
	return dims.Vec3()
}

// ToGL narrows a matrix to the float32 column-major layout glUniformMatrix4fv expects.
func ToGL(m mgl64.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i := range m {
		out[i] = float32(m[i])
	}
	return out
}

// ModelMatrix returns identity, or a translation moving the unit cube's
// center to the origin when centered is set.
func ModelMatrix(centered bool) mgl64.Mat4 {
	if centered {
		return mgl64.Translate3D(-0.5, -0.5, -0.5)
	}
	return mgl64.Ident4()
}
