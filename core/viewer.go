package core

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// ViewerOptions configures a Viewer. Zero values select the defaults.
type ViewerOptions struct {
	Width, Height int
	Mode          RenderMode
	// CenterVolume translates the unit cube so its center sits at the origin.
	CenterVolume bool
	// Distance overrides the initial camera distance derived from the mesh.
	Distance        float64
	DragSensitivity float64
	ZoomSensitivity float64
}

// FrameState is everything one frame consumes, computed when the frame
// is drawn rather than when it was requested.
type FrameState struct {
	Frame      uint64
	Mode       RenderMode
	Projection mgl64.Mat4
	View       mgl64.Mat4
	Model      mgl64.Mat4
	MVP        mgl64.Mat4
	VolumeSize mgl32.Vec3
	Camera     CameraState
	Volume     *VolumeField
}

// Viewer is the render context for one viewer instance. It owns the
// camera, the volume, the transforms and the redraw scheduler, and maps
// host input to camera updates. All methods must be called from the
// render thread.
type Viewer struct {
	mode       RenderMode
	mesh       Mesh
	camera     *OrbitCamera
	projection Projection
	model      mgl64.Mat4
	volume     *VolumeField
	scheduler  *Scheduler
	width      int
	height     int

	observers []func(FrameState)
	last      FrameState
}

// NewViewer creates a viewer drawing through requester. The volume may be
// nil unless the mode samples it.
func NewViewer(opts ViewerOptions, volume *VolumeField, requester FrameRequester) (*Viewer, error) {
	if requester == nil {
		return nil, errors.New("viewer: nil frame requester")
	}
	if opts.Mode == ModeVolume && volume == nil {
		return nil, fmt.Errorf("viewer: %s mode requires a volume", opts.Mode)
	}
	mesh := MeshFor(opts.Mode)
	distance := opts.Distance
	if distance <= 0 {
		distance = InitialDistance(mesh.Extent())
	}
	camera := NewOrbitCamera(distance)
	if opts.DragSensitivity != 0 {
		camera.DragSensitivity = opts.DragSensitivity
	}
	if opts.ZoomSensitivity != 0 {
		camera.ZoomSensitivity = opts.ZoomSensitivity
	}

	v := &Viewer{
		mode:       opts.Mode,
		mesh:       mesh,
		camera:     camera,
		projection: DefaultProjection(opts.Width, opts.Height),
		model:      ModelMatrix(opts.CenterVolume),
		volume:     volume,
		width:      opts.Width,
		height:     opts.Height,
	}
	v.scheduler = NewScheduler(requester, nil)
	return v, nil
}

// SetDraw installs the host's frame-drawing routine.
func (v *Viewer) SetDraw(draw func(FrameState) error) {
	v.scheduler.SetDraw(func() error {
		st := v.Frame()
		if err := draw(st); err != nil {
			return err
		}
		v.last = st
		for _, fn := range v.observers {
			fn(st)
		}
		return nil
	})
}

// OnFrame registers fn to run after every successfully drawn frame.
func (v *Viewer) OnFrame(fn func(FrameState)) {
	v.observers = append(v.observers, fn)
}

// Start requests the first paint.
func (v *Viewer) Start() {
	v.scheduler.RequestRedraw()
}

// RequestRedraw schedules a frame; repeated calls before it fires coalesce.
func (v *Viewer) RequestRedraw() {
	v.scheduler.RequestRedraw()
}

func (v *Viewer) Mode() RenderMode { return v.mode }
func (v *Viewer) Mesh() Mesh { return v.mesh }
func (v *Viewer) Camera() *OrbitCamera { return v.camera }
func (v *Viewer) Scheduler() *Scheduler { return v.scheduler }
func (v *Viewer) Volume() *VolumeField { return v.volume }
func (v *Viewer) Projection() Projection { return v.projection }
func (v *Viewer) LastFrame() FrameState { return v.last }

// Frame computes the transforms from the current state.
func (v *Viewer) Frame() FrameState {
	view := v.camera.ViewMatrix()
	proj := v.projection.Matrix()
	st := FrameState{
		Frame:      v.scheduler.Frames() + 1,
		Mode:       v.mode,
		Projection: proj,
		View:       view,
		Model:      v.model,
		MVP:        ComputeMVP(proj, view, v.model),
		Camera:     v.camera.Snapshot(),
		Volume:     v.volume,
	}
	if v.volume != nil {
		st.VolumeSize = VolumeExtent(v.volume.Dimensions())
	}
	return st
}

// PointerDown starts an orbit drag.
func (v *Viewer) PointerDown(x, y float64) {
	v.camera.BeginDrag(x, y)
}

// PointerUp ends an orbit drag.
func (v *Viewer) PointerUp() {
	v.camera.EndDrag()
}

// PointerMove rotates the camera while dragging.
func (v *Viewer) PointerMove(x, y float64) {
	if v.camera.Drag(x, y) {
		v.scheduler.RequestRedraw()
	}
}

// Wheel zooms the camera.
func (v *Viewer) Wheel(deltaY float64) {
	if v.camera.Zoom(deltaY) {
		v.scheduler.RequestRedraw()
	}
}

// Reset returns the camera to its initial pose.
func (v *Viewer) Reset() {
	if v.camera.Reset() {
		v.scheduler.RequestRedraw()
	}
}

// Resize recomputes the projection aspect ratio.
func (v *Viewer) Resize(width, height int) {
	v.projection.SetViewport(width, height)
	v.width, v.height = width, height
	v.scheduler.RequestRedraw()
}

// Pick returns the first visible voxel under the viewport pixel (x, y),
// using the current camera. Viewers without a volume never pick.
func (v *Viewer) Pick(x, y float64) (Pick, bool) {
	if v.volume == nil {
		return Pick{}, false
	}
	st := v.Frame()
	origin, dir, ok := PickRay(st.MVP, x, y, v.width, v.height)
	if !ok {
		return Pick{}, false
	}
	return PickVoxel(v.volume, origin, dir)
}

// SetVolume replaces the volume data. The host re-uploads it on the next
// frame because its version differs from the uploaded one.
func (v *Viewer) SetVolume(volume *VolumeField) error {
	if volume == nil {
		return errors.New("viewer: nil volume")
	}
	v.volume = volume
	v.scheduler.RequestRedraw()
	return nil
}

// VolumeChanged requests a redraw after the current volume was mutated in place.
func (v *Viewer) VolumeChanged() {
	v.scheduler.RequestRedraw()
}

// Input event types accepted by Apply.
const (
	EventPointerDown = "pointerDown"
	EventPointerUp   = "pointerUp"
	EventPointerMove = "pointerMove"
	EventWheel       = "wheel"
	EventReset       = "reset"
)

// InputEvent is a host-independent input record.
type InputEvent struct {
	Type   string  `json:"type"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	DeltaY float64 `json:"deltaY,omitempty"`
}

// Apply dispatches an input event to the matching handler.
func (v *Viewer) Apply(ev InputEvent) error {
	switch ev.Type {
	case EventPointerDown:
		v.PointerDown(ev.X, ev.Y)
	case EventPointerUp:
		v.PointerUp()
	case EventPointerMove:
		v.PointerMove(ev.X, ev.Y)
	case EventWheel:
		v.Wheel(ev.DeltaY)
	case EventReset:
		v.Reset()
	default:
		return fmt.Errorf("unknown input event %q", ev.Type)
	}
	return nil
}
