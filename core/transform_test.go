package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestDefaultProjection(t *testing.T) {
	p := DefaultProjection(1200, 800)
	assert.Equal(t, 45.0, p.FovY)
	assert.Equal(t, 0.1, p.Near)
	assert.Equal(t, 100.0, p.Far)
	assert.InDelta(t, 1.5, p.Aspect, tol)

	want := mgl64.Perspective(mgl64.DegToRad(45), 1.5, 0.1, 100)
	assert.True(t, p.Matrix().ApproxEqualThreshold(want, tol))
}

func TestProjectionSetViewport(t *testing.T) {
	p := DefaultProjection(800, 800)
	assert.InDelta(t, 1.0, p.Aspect, tol)
	p.SetViewport(1600, 900)
	assert.InDelta(t, 16.0/9, p.Aspect, tol)

	// Minimized windows report zero height; keep the last aspect.
	p.SetViewport(1600, 0)
	assert.InDelta(t, 16.0/9, p.Aspect, tol)

	assert.Equal(t, 1.0, DefaultProjection(0, 0).Aspect)
}

func TestComputeMVPOrder(t *testing.T) {
	proj := DefaultProjection(640, 480).Matrix()
	view := mgl64.Translate3D(0, 0, -2).Mul4(mgl64.HomogRotate3DX(0.3))
	model := mgl64.Translate3D(-0.5, -0.5, -0.5)

	mvp := ComputeMVP(proj, view, model)
	assert.True(t, mvp.ApproxEqualThreshold(proj.Mul4(view.Mul4(model)), tol))
	assert.False(t, mvp.ApproxEqualThreshold(model.Mul4(view).Mul4(proj), tol))

	// A vertex goes through model, then view, then projection.
	v := mgl64.Vec4{1, 1, 1, 1}
	want := proj.Mul4x1(view.Mul4x1(model.Mul4x1(v)))
	assert.True(t, mvp.Mul4x1(v).ApproxEqualThreshold(want, tol))
}

func TestComputeMVPIdentity(t *testing.T) {
	id := mgl64.Ident4()
	assert.Equal(t, id, ComputeMVP(id, id, id))
}

func TestCubeCenterProjectsToScreenCenter(t *testing.T) {
	c := NewOrbitCamera(2)
	c.Pitch, c.Yaw = 0.9, -2.3
	mvp := ComputeMVP(DefaultProjection(1200, 800).Matrix(), c.ViewMatrix(), ModelMatrix(true))
	clip := mvp.Mul4x1(mgl64.Vec4{0.5, 0.5, 0.5, 1})
	assert.InDelta(t, 0, clip.X()/clip.W(), tol)
	assert.InDelta(t, 0, clip.Y()/clip.W(), tol)
	assert.Greater(t, clip.W(), 0.0, "in front of the camera")
}

func TestModelMatrix(t *testing.T) {
	assert.Equal(t, mgl64.Ident4(), ModelMatrix(false))
	centered := ModelMatrix(true).Mul4x1(mgl64.Vec4{0.5, 0.5, 0.5, 1})
	assert.Equal(t, mgl64.Vec4{0, 0, 0, 1}, centered)
}

func TestVolumeExtent(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{4, 8, 16}, VolumeExtent(Dimensions{4, 8, 16}))
}

func TestToGL(t *testing.T) {
	m := mgl64.Translate3D(1, 2, 3)
	got := ToGL(m)
	assert.Equal(t, mgl32.Translate3D(1, 2, 3), got)
	// Column-major: translation lives in elements 12..14.
	assert.Equal(t, float32(1), got[12])
	assert.Equal(t, float32(3), got[14])
}
