package core

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pickViewer(t *testing.T, vol *VolumeField) *Viewer {
	t.Helper()
	v, err := NewViewer(ViewerOptions{Width: 100, Height: 100, Mode: ModeVolume}, vol, &fakeDisplay{})
	require.NoError(t, err)
	return v
}

func TestPickRayCenter(t *testing.T) {
	v := pickViewer(t, gradientVolume(t))
	st := v.Frame()
	origin, dir, ok := PickRay(st.MVP, 50, 50, 100, 100)
	require.True(t, ok)
	// The camera sits at z=2 looking down -z; the near plane is 0.1 ahead.
	assert.InDelta(t, 0, origin.X(), 1e-6)
	assert.InDelta(t, 0, origin.Y(), 1e-6)
	assert.InDelta(t, 1.9, origin.Z(), 1e-6)
	assert.InDelta(t, -1, dir.Z(), 1e-6)
}

func gradientVolume(t *testing.T) *VolumeField {
	t.Helper()
	vol, err := NewGradientVolume(4, 4, 4)
	require.NoError(t, err)
	return vol
}

func TestPickRayDegenerate(t *testing.T) {
	_, _, ok := PickRay(mgl64.Ident4(), 10, 10, 0, 100)
	assert.False(t, ok)
	_, _, ok = PickRay(mgl64.Mat4{}, 10, 10, 100, 100)
	assert.False(t, ok)
}

func TestViewerPickFrontFace(t *testing.T) {
	v := pickViewer(t, gradientVolume(t))
	// NDC (0.905, 0.905) lands at x=y≈0.375 on the z=1 face.
	p, ok := v.Pick(95.25, 4.75)
	require.True(t, ok)
	assert.Equal(t, 1, p.X)
	assert.Equal(t, 1, p.Y)
	assert.Equal(t, 3, p.Z)
	assert.Equal(t, color.RGBA{R: 64, G: 64, B: 191, A: 255}, p.Sample)
	assert.InDelta(t, 1.0, p.Point.Z(), 1e-6)
	assert.Equal(t, "(1,1,3) #4040bfff", p.String())
}

func TestViewerPickMiss(t *testing.T) {
	v := pickViewer(t, gradientVolume(t))
	_, ok := v.Pick(5, 95)
	assert.False(t, ok, "ray passes left of and below the cube")
}

func TestViewerPickSkipsTransparent(t *testing.T) {
	vol, err := NewVolume(4, 4, 4)
	require.NoError(t, err)
	v := pickViewer(t, vol)
	_, ok := v.Pick(95.25, 4.75)
	assert.False(t, ok)

	// One opaque voxel behind the front layer along the same ray.
	require.NoError(t, vol.SetSample(2, 2, 1, color.RGBA{R: 255, A: 255}))
	p, ok := v.Pick(95.25, 4.75)
	require.True(t, ok)
	assert.Equal(t, [3]int{2, 2, 1}, [3]int{p.X, p.Y, p.Z})
}

func TestViewerPickWithoutVolume(t *testing.T) {
	v, err := NewViewer(ViewerOptions{Width: 100, Height: 100, Mode: ModeCube}, nil, &fakeDisplay{})
	require.NoError(t, err)
	_, ok := v.Pick(50, 50)
	assert.False(t, ok)
}

func TestViewerPickAfterResize(t *testing.T) {
	v := pickViewer(t, gradientVolume(t))
	v.Resize(0, 0)
	_, ok := v.Pick(95.25, 4.75)
	assert.False(t, ok)
}

func TestIntersectUnitCube(t *testing.T) {
	tests := []struct {
		name        string
		origin, dir mgl64.Vec3
		ok          bool
		enter, exit float64
	}{
		{"straight through", mgl64.Vec3{0.5, 0.5, 3}, mgl64.Vec3{0, 0, -1}, true, 2, 3},
		{"from inside", mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{1, 0, 0}, true, 0, 0.5},
		{"parallel outside", mgl64.Vec3{2, 0.5, 3}, mgl64.Vec3{0, 0, -1}, false, 0, 0},
		{"pointing away", mgl64.Vec3{0.5, 0.5, 3}, mgl64.Vec3{0, 0, 1}, false, 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			enter, exit, ok := intersectUnitCube(tc.origin, tc.dir)
			require.Equal(t, tc.ok, ok)
			if ok {
				assert.InDelta(t, tc.enter, enter, 1e-12)
				assert.InDelta(t, tc.exit, exit, 1e-12)
			}
		})
	}
}
