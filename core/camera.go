package core

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DragSensitivity is radians of rotation per pixel of pointer movement.
	DragSensitivity = 0.01
	// ZoomSensitivity is distance units per wheel delta unit.
	ZoomSensitivity = 0.01
	// MinDistance keeps the view matrix from degenerating.
	MinDistance = 0.001
)

// DragState is the pointer state of the camera controller.
type DragState int

const (
	Idle DragState = iota
	Dragging
)

func (s DragState) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// OrbitCamera orbits the origin at a fixed distance. Pitch and yaw are not
// clamped or wrapped; the camera may pass over the poles.
type OrbitCamera struct {
	Pitch    float64
	Yaw      float64
	Distance float64

	// Sensitivities default to DragSensitivity and ZoomSensitivity.
	DragSensitivity float64
	ZoomSensitivity float64

	state        DragState
	lastX, lastY float64
	home         [3]float64
}

// NewOrbitCamera returns a camera at pitch = yaw = 0 looking at the origin
// from distance.
func NewOrbitCamera(distance float64) *OrbitCamera {
	c := &OrbitCamera{
		Distance:        max(distance, MinDistance),
		DragSensitivity: DragSensitivity,
		ZoomSensitivity: ZoomSensitivity,
	}
	c.home = [3]float64{c.Pitch, c.Yaw, c.Distance}
	return c
}

// InitialDistance places the camera twice the largest proxy extent away.
func InitialDistance(extent mgl32.Vec3) float64 {
	m := float64(max(extent[0], extent[1], extent[2]))
	return max(2*m, MinDistance)
}

// State reports whether a drag is in progress.
func (c *OrbitCamera) State() DragState {
	return c.state
}

// BeginDrag records the anchor point and enters the dragging state.
func (c *OrbitCamera) BeginDrag(x, y float64) {
	c.state = Dragging
	c.lastX, c.lastY = x, y
}

// EndDrag leaves the dragging state. Calling it while idle does nothing.
func (c *OrbitCamera) EndDrag() {
	c.state = Idle
}

// Drag rotates by the movement since the last recorded point. It is a no-op
// while idle and reports whether the view changed.
func (c *OrbitCamera) Drag(x, y float64) bool {
	if c.state != Dragging {
		return false
	}
	dx, dy := x-c.lastX, y-c.lastY
	c.Pitch += dy * c.DragSensitivity
	c.Yaw += dx * c.DragSensitivity
	c.lastX, c.lastY = x, y
	return true
}

// Zoom moves the camera along its view axis; positive deltaY moves closer.
// Distance never drops below MinDistance.
func (c *OrbitCamera) Zoom(deltaY float64) bool {
	c.Distance -= deltaY * c.ZoomSensitivity
	c.Distance = max(c.Distance, MinDistance)
	return true
}

// Reset restores the pose the camera was created with. The drag state is kept.
func (c *OrbitCamera) Reset() bool {
	c.Pitch, c.Yaw, c.Distance = c.home[0], c.home[1], c.home[2]
	return true
}

// ViewMatrix is translate(0,0,-distance) * rotateX(pitch) * rotateY(yaw).
func (c *OrbitCamera) ViewMatrix() mgl64.Mat4 {
	return mgl64.Translate3D(0, 0, -c.Distance).
		Mul4(mgl64.HomogRotate3DX(c.Pitch)).
		Mul4(mgl64.HomogRotate3DY(c.Yaw))
}

// CameraState is a serializable snapshot of the orbit parameters.
type CameraState struct {
	Pitch    float64 `json:"pitch"`
	Yaw      float64 `json:"yaw"`
	Distance float64 `json:"distance"`
	Dragging bool    `json:"dragging"`
}

// Snapshot captures the current orbit parameters.
func (c *OrbitCamera) Snapshot() CameraState {
	return CameraState{
		Pitch:    c.Pitch,
		Yaw:      c.Yaw,
		Distance: c.Distance,
		Dragging: c.state == Dragging,
	}
}
