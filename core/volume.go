package core

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Dimensions is the voxel count along x, y and z.
type Dimensions struct {
	X, Y, Z int
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%dx%d", d.X, d.Y, d.Z)
}

// ParseDimensions parses the "WxHxD" form produced by String.
func ParseDimensions(s string) (Dimensions, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 3 {
		return Dimensions{}, fmt.Errorf("%w: %q is not WxHxD", ErrInvalidDimensions, s)
	}
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return Dimensions{}, fmt.Errorf("%w: %q: %v", ErrInvalidDimensions, s, err)
		}
		n[i] = v
	}
	d := Dimensions{n[0], n[1], n[2]}
	return d, d.validate()
}

// Voxels returns the total number of voxels.
func (d Dimensions) Voxels() int {
	return d.X * d.Y * d.Z
}

// Vec3 returns the dimensions as float32 voxel counts.
func (d Dimensions) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{float32(d.X), float32(d.Y), float32(d.Z)}
}

// Stride returns the step that visits at most n samples along every axis.
func (d Dimensions) Stride(n int) int {
	longest := max(d.X, d.Y, d.Z)
	if n <= 0 || longest <= n {
		return 1
	}
	return (longest + n - 1) / n
}

// validate rejects empty axes, axes a GPU texture size cannot hold, and
// grids whose packed RGBA8 buffer length overflows int.
func (d Dimensions) validate() error {
	if d.X <= 0 || d.Y <= 0 || d.Z <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDimensions, d)
	}
	if d.X > math.MaxInt32 || d.Y > math.MaxInt32 || d.Z > math.MaxInt32 {
		return fmt.Errorf("%w: %s exceeds %d per axis", ErrInvalidDimensions, d, math.MaxInt32)
	}
	n := 4
	for _, axis := range []int{d.X, d.Y, d.Z} {
		if n > math.MaxInt/axis {
			return fmt.Errorf("%w: %s is too large to allocate", ErrInvalidDimensions, d)
		}
		n *= axis
	}
	return nil
}

// VolumeField is a dense grid of RGBA8 samples packed the way the GPU
// consumes them: index = (x + y*w + z*w*h) * 4.
type VolumeField struct {
	dims    Dimensions
	samples []byte
	version uint64
}

// NewVolume allocates a zeroed volume.
func NewVolume(w, h, d int) (*VolumeField, error) {
	dims := Dimensions{w, h, d}
	if err := dims.validate(); err != nil {
		return nil, err
	}
	return &VolumeField{
		dims:    dims,
		samples: make([]byte, 4*dims.Voxels()),
		version: 1,
	}, nil
}

// NewGradientVolume builds the reference procedural volume: red, green and
// blue follow the normalized x, y and z coordinates, alpha is opaque.
func NewGradientVolume(w, h, d int) (*VolumeField, error) {
	v, err := NewVolume(w, h, d)
	if err != nil {
		return nil, err
	}
	v.Fill(GradientPattern(v.dims))
	return v, nil
}

// Pattern computes the sample at a voxel coordinate. Channels are stored
// as given (straight alpha), not premultiplied.
type Pattern func(x, y, z int) color.RGBA

// GradientPattern maps normalized voxel coordinates to color channels.
func GradientPattern(dims Dimensions) Pattern {
	return func(x, y, z int) color.RGBA {
		return color.RGBA{
			R: unitToByte(float64(x) / float64(dims.X)),
			G: unitToByte(float64(y) / float64(dims.Y)),
			B: unitToByte(float64(z) / float64(dims.Z)),
			A: 255,
		}
	}
}

// SpherePattern draws a translucent shell centered in the grid, colored by
// the gradient and transparent elsewhere.
func SpherePattern(dims Dimensions) Pattern {
	grad := GradientPattern(dims)
	cx, cy, cz := float64(dims.X)/2, float64(dims.Y)/2, float64(dims.Z)/2
	radius := math.Min(cx, math.Min(cy, cz))
	return func(x, y, z int) color.RGBA {
		dx := (float64(x) + 0.5 - cx) / radius
		dy := (float64(y) + 0.5 - cy) / radius
		dz := (float64(z) + 0.5 - cz) / radius
		r := math.Sqrt(dx*dx + dy*dy + dz*dz)
		if r > 1 {
			return color.RGBA{}
		}
		c := grad(x, y, z)
		c.A = unitToByte(0.15 + 0.85*r*r)
		return c
	}
}

// PatternByName resolves a volume pattern name from the settings.
func PatternByName(name string, dims Dimensions) (Pattern, error) {
	switch name {
	case "", "gradient":
		return GradientPattern(dims), nil
	case "sphere":
		return SpherePattern(dims), nil
	}
	return nil, fmt.Errorf("unknown volume pattern %q", name)
}

func unitToByte(f float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, f)) * 255))
}

// Dimensions returns the grid size.
func (v *VolumeField) Dimensions() Dimensions {
	return v.dims
}

// Bytes returns the packed sample buffer. Callers must treat it as read-only.
func (v *VolumeField) Bytes() []byte {
	return v.samples
}

// Version increases on every mutation.
func (v *VolumeField) Version() uint64 {
	return v.version
}

func (v *VolumeField) offset(x, y, z int) (int, error) {
	if x < 0 || y < 0 || z < 0 || x >= v.dims.X || y >= v.dims.Y || z >= v.dims.Z {
		return 0, fmt.Errorf("%w: (%d,%d,%d) not in %s", ErrOutOfRange, x, y, z, v.dims)
	}
	return (x + y*v.dims.X + z*v.dims.X*v.dims.Y) * 4, nil
}

// Sample returns the RGBA value at the voxel.
func (v *VolumeField) Sample(x, y, z int) (color.RGBA, error) {
	i, err := v.offset(x, y, z)
	if err != nil {
		return color.RGBA{}, err
	}
	s := v.samples[i : i+4]
	return color.RGBA{R: s[0], G: s[1], B: s[2], A: s[3]}, nil
}

// SetSample stores the RGBA value at the voxel.
func (v *VolumeField) SetSample(x, y, z int, c color.RGBA) error {
	i, err := v.offset(x, y, z)
	if err != nil {
		return err
	}
	v.samples[i], v.samples[i+1], v.samples[i+2], v.samples[i+3] = c.R, c.G, c.B, c.A
	v.version++
	return nil
}

// Fill evaluates p for every voxel.
func (v *VolumeField) Fill(p Pattern) {
	i := 0
	for z := 0; z < v.dims.Z; z++ {
		for y := 0; y < v.dims.Y; y++ {
			for x := 0; x < v.dims.X; x++ {
				c := p(x, y, z)
				v.samples[i], v.samples[i+1], v.samples[i+2], v.samples[i+3] = c.R, c.G, c.B, c.A
				i += 4
			}
		}
	}
	v.version++
}
