package core

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func TestDragScenario(t *testing.T) {
	c := NewOrbitCamera(2)
	c.BeginDrag(10, 10)
	assert.Equal(t, Dragging, c.State())
	assert.True(t, c.Drag(20, 15))
	assert.InDelta(t, 0.05, c.Pitch, tol)
	assert.InDelta(t, 0.10, c.Yaw, tol)

	c.EndDrag()
	assert.Equal(t, Idle, c.State())
	assert.False(t, c.Drag(100, 100))
	assert.InDelta(t, 0.05, c.Pitch, tol)
	assert.InDelta(t, 0.10, c.Yaw, tol)
}

func TestDragIsRelativeToLastPoint(t *testing.T) {
	c := NewOrbitCamera(2)
	c.BeginDrag(0, 0)
	c.Drag(10, 0)
	c.Drag(10, 20)
	c.Drag(5, 20)
	assert.InDelta(t, 0.20, c.Pitch, tol)
	assert.InDelta(t, 0.05, c.Yaw, tol)
}

func TestDragIdleIsNoop(t *testing.T) {
	c := NewOrbitCamera(2)
	assert.False(t, c.Drag(50, 50))
	assert.Zero(t, c.Pitch)
	assert.Zero(t, c.Yaw)

	// EndDrag while idle is harmless.
	c.EndDrag()
	c.EndDrag()
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, "idle", c.State().String())
}

func TestZoomScenario(t *testing.T) {
	c := NewOrbitCamera(2)
	assert.True(t, c.Zoom(-100))
	assert.InDelta(t, 3.0, c.Distance, tol)
	c.Zoom(1000000)
	assert.Equal(t, MinDistance, c.Distance)
}

func TestZoomNeverReachesZero(t *testing.T) {
	c := NewOrbitCamera(2)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		c.Zoom((rng.Float64() - 0.3) * 2000)
		require.GreaterOrEqual(t, c.Distance, MinDistance, "step %d", i)
	}
}

func TestNewOrbitCameraClampsDistance(t *testing.T) {
	assert.Equal(t, MinDistance, NewOrbitCamera(0).Distance)
	assert.Equal(t, MinDistance, NewOrbitCamera(-5).Distance)
}

func TestInitialDistance(t *testing.T) {
	assert.InDelta(t, 2.0, InitialDistance(UnitCube().Extent()), tol)
	assert.InDelta(t, 2.0, InitialDistance(Triangle().Extent()), tol)
	assert.Equal(t, MinDistance, InitialDistance(mgl32.Vec3{}))
}

func TestViewMatrixFiniteAndInvertible(t *testing.T) {
	angles := []float64{-1000, -2 * math.Pi, -math.Pi / 2, -0.3, 0, 0.7, math.Pi / 2, math.Pi, 12.5, 1e4}
	distances := []float64{MinDistance, 0.5, 2, 37, 99}
	c := NewOrbitCamera(1)
	for _, p := range angles {
		for _, y := range angles {
			for _, d := range distances {
				c.Pitch, c.Yaw, c.Distance = p, y, d
				m := c.ViewMatrix()
				for i, v := range m {
					require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "element %d for (%v,%v,%v)", i, p, y, d)
				}
				// Rigid transform: determinant is one.
				require.InDelta(t, 1.0, m.Det(), 1e-6, "(%v,%v,%v)", p, y, d)
				require.True(t, m.Mul4(m.Inv()).ApproxEqualThreshold(mgl64.Ident4(), 1e-6))
			}
		}
	}
}

func TestViewMatrixComposition(t *testing.T) {
	c := NewOrbitCamera(2)
	c.Pitch, c.Yaw = 0.4, -1.1
	want := mgl64.Translate3D(0, 0, -2).Mul4(mgl64.HomogRotate3DX(0.4)).Mul4(mgl64.HomogRotate3DY(-1.1))
	assert.True(t, c.ViewMatrix().ApproxEqualThreshold(want, tol))
}

func TestViewMatrixOrbitsOrigin(t *testing.T) {
	c := NewOrbitCamera(3)
	for _, a := range []float64{0, 0.5, 2, -4} {
		c.Pitch, c.Yaw = a, a*1.7
		origin := c.ViewMatrix().Mul4x1(mgl64.Vec4{0, 0, 0, 1})
		assert.InDelta(t, 0, origin.X(), tol)
		assert.InDelta(t, 0, origin.Y(), tol)
		assert.InDelta(t, -3, origin.Z(), tol)

		// The camera sits at distance from the origin whatever the angles.
		eye := c.ViewMatrix().Inv().Mul4x1(mgl64.Vec4{0, 0, 0, 1})
		assert.InDelta(t, 3, eye.Vec3().Len(), 1e-6)
	}
}

func TestAnglesAreUnbounded(t *testing.T) {
	c := NewOrbitCamera(2)
	c.BeginDrag(0, 0)
	for i := 1; i <= 1000; i++ {
		c.Drag(float64(i*100), float64(i*100))
	}
	assert.InDelta(t, 1000.0, c.Pitch, 1e-6)
	assert.InDelta(t, 1000.0, c.Yaw, 1e-6)
}

func TestReset(t *testing.T) {
	c := NewOrbitCamera(2)
	c.BeginDrag(0, 0)
	c.Drag(30, 40)
	c.Zoom(50)
	assert.True(t, c.Reset())
	assert.Zero(t, c.Pitch)
	assert.Zero(t, c.Yaw)
	assert.Equal(t, 2.0, c.Distance)
	assert.Equal(t, Dragging, c.State())
}

func TestCustomSensitivity(t *testing.T) {
	c := NewOrbitCamera(2)
	c.DragSensitivity = 0.1
	c.ZoomSensitivity = 1
	c.BeginDrag(0, 0)
	c.Drag(1, 2)
	c.Zoom(0.5)
	assert.InDelta(t, 0.2, c.Pitch, tol)
	assert.InDelta(t, 0.1, c.Yaw, tol)
	assert.InDelta(t, 1.5, c.Distance, tol)
}

func TestSnapshot(t *testing.T) {
	c := NewOrbitCamera(4)
	c.BeginDrag(1, 1)
	assert.Equal(t, CameraState{Distance: 4, Dragging: true}, c.Snapshot())
}
