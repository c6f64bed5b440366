package core

import (
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Pick is the first visible voxel along a screen ray.
type Pick struct {
	X, Y, Z int
	Sample  color.RGBA
	// Point is where the ray reached the voxel, in model space.
	Point mgl64.Vec3
}

func (p Pick) String() string {
	return fmt.Sprintf("(%d,%d,%d) #%02x%02x%02x%02x", p.X, p.Y, p.Z, p.Sample.R, p.Sample.G, p.Sample.B, p.Sample.A)
}

// PickRay unprojects the pixel (x, y) of a width x height viewport through
// the inverse MVP and returns the model-space ray. Pixel y grows downward.
func PickRay(mvp mgl64.Mat4, x, y float64, width, height int) (origin, dir mgl64.Vec3, ok bool) {
	if width <= 0 || height <= 0 {
		return origin, dir, false
	}
	if math.Abs(mvp.Det()) < 1e-15 {
		return origin, dir, false
	}
	ndcX := 2*x/float64(width) - 1
	ndcY := 1 - 2*y/float64(height)

	inv := mvp.Inv()
	near := inv.Mul4x1(mgl64.Vec4{ndcX, ndcY, -1, 1})
	far := inv.Mul4x1(mgl64.Vec4{ndcX, ndcY, 1, 1})
	near = near.Mul(1 / near[3])
	far = far.Mul(1 / far[3])

	origin = near.Vec3()
	dir = far.Vec3().Sub(origin)
	if dir.Len() == 0 {
		return origin, dir, false
	}
	return origin, dir.Normalize(), true
}

// intersectUnitCube clips the ray against [0,1]^3 with the slab method.
func intersectUnitCube(origin, dir mgl64.Vec3) (tEnter, tExit float64, ok bool) {
	tEnter, tExit = math.Inf(-1), math.Inf(1)
	for i := 0; i < 3; i++ {
		if math.Abs(dir[i]) < 1e-12 {
			if origin[i] < 0 || origin[i] > 1 {
				return 0, 0, false
			}
			continue
		}
		t0 := (0 - origin[i]) / dir[i]
		t1 := (1 - origin[i]) / dir[i]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tEnter = max(tEnter, t0)
		tExit = min(tExit, t1)
	}
	if tExit < max(tEnter, 0) {
		return 0, 0, false
	}
	return max(tEnter, 0), tExit, true
}

// PickVoxel marches a model-space ray through the field and returns the
// first voxel with non-zero alpha.
func PickVoxel(field *VolumeField, origin, dir mgl64.Vec3) (Pick, bool) {
	if field == nil {
		return Pick{}, false
	}
	tEnter, tExit, ok := intersectUnitCube(origin, dir)
	if !ok {
		return Pick{}, false
	}
	dims := field.Dimensions()
	step := 0.5 / float64(max(dims.X, dims.Y, dims.Z))
	for t := tEnter; t <= tExit; t += step {
		p := origin.Add(dir.Mul(t))
		x := voxelIndex(p[0], dims.X)
		y := voxelIndex(p[1], dims.Y)
		z := voxelIndex(p[2], dims.Z)
		c, err := field.Sample(x, y, z)
		if err != nil || c.A == 0 {
			continue
		}
		return Pick{X: x, Y: y, Z: z, Sample: c, Point: p}, true
	}
	return Pick{}, false
}

func voxelIndex(f float64, n int) int {
	i := int(math.Floor(f * float64(n)))
	return max(0, min(n-1, i))
}
