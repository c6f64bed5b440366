package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"volumeviewer/core"
	"volumeviewer/overlay"
	"volumeviewer/rendering/opengl/shaders"
)

// Options configures the GLFW window.
type Options struct {
	Width, Height int
	Title         string
	VSync         bool
	ShowStats     bool
	// WheelScale converts scroll offsets (lines) into wheel deltas.
	WheelScale float64
}

// Renderer is the GLFW/OpenGL host for a Viewer. It must be created and
// used on the locked main thread.
type Renderer struct {
	window *glfw.Window
	frames *frameQueue

	viewer  *core.Viewer
	program *shaders.Program
	mesh    *meshBuffers
	volume  *VolumeTexture
	hud     *hudLayer

	showStats  bool
	pick       string
	wheelScale float64
	fbWidth    int
	fbHeight   int
}

// NewRenderer opens the window and initializes the OpenGL context. Attach
// a viewer before calling Run.
func NewRenderer(opts Options) (*Renderer, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	window.MakeContextCurrent()

	if opts.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	core.Logger().Info("opengl context",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)))

	wheelScale := opts.WheelScale
	if wheelScale == 0 {
		wheelScale = 100
	}
	r := &Renderer{
		window:     window,
		frames:     &frameQueue{},
		showStats:  opts.ShowStats,
		wheelScale: wheelScale,
	}
	r.fbWidth, r.fbHeight = window.GetFramebufferSize()
	return r, nil
}

// FrameRequester returns the display-refresh primitive viewers schedule
// frames on.
func (r *Renderer) FrameRequester() core.FrameRequester {
	return r.frames
}

// Attach builds the GPU resources for v's mode, uploads its volume and
// installs the input callbacks. Any error here is a startup failure.
func (r *Renderer) Attach(v *core.Viewer) error {
	program, err := shaders.Compile(v.Mode())
	if err != nil {
		return err
	}
	r.program = program

	mesh, err := newMeshBuffers(v.Mesh())
	if err != nil {
		return err
	}
	r.mesh = mesh

	if r.volume, err = NewVolumeTexture(); err != nil {
		return err
	}
	if v.Mode() == core.ModeVolume {
		if err := r.volume.Sync(v.Volume()); err != nil {
			return fmt.Errorf("initial volume upload: %w", err)
		}
	}

	if r.hud, err = newHUDLayer(); err != nil {
		return err
	}

	r.viewer = v
	v.SetDraw(r.drawFrame)
	v.Resize(r.fbWidth, r.fbHeight)

	r.window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		r.onResize(width, height)
	})
	r.window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		r.onKey(key, action)
	})
	r.window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		r.onScroll(yoff)
	})
	r.window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		r.onMouseButton(button, action)
	})
	r.window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		r.viewer.PointerMove(xpos, ypos)
	})
	return nil
}

// Wake interrupts a blocking wait for events. Safe to call from any
// goroutine.
func (r *Renderer) Wake() {
	glfw.PostEmptyEvent()
}

// Run paints the first frame and services events until the window closes.
// Remote input from events is applied on this thread. The loop sleeps in
// WaitEvents whenever no frame is requested.
func (r *Renderer) Run(events <-chan core.InputEvent) {
	r.viewer.Start()
	for !r.window.ShouldClose() {
		if r.frames.pending() {
			glfw.PollEvents()
		} else {
			glfw.WaitEvents()
		}
		r.drainEvents(events)
		r.frames.run()
	}
}

func (r *Renderer) drainEvents(events <-chan core.InputEvent) {
	for {
		select {
		case ev := <-events:
			if err := r.viewer.Apply(ev); err != nil {
				core.Logger().Warn("remote input ignored", "err", err)
			}
		default:
			return
		}
	}
}

// drawFrame renders one frame from the state computed at fire time.
func (r *Renderer) drawFrame(st core.FrameState) error {
	if st.Mode == core.ModeVolume {
		if err := r.volume.Sync(st.Volume); err != nil {
			return err
		}
	}

	gl.Viewport(0, 0, int32(r.fbWidth), int32(r.fbHeight))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	// Cube faces nearest the camera start the rays; the far side must lose.
	if st.Mode.Indexed() {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.LESS)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}

	gl.UseProgram(r.program.ID)
	if r.program.MVP >= 0 {
		mvp := core.ToGL(st.MVP)
		gl.UniformMatrix4fv(r.program.MVP, 1, false, &mvp[0])
	}
	if r.program.VolumeSize >= 0 {
		gl.Uniform3fv(r.program.VolumeSize, 1, &st.VolumeSize[0])
	}
	if r.program.Volume >= 0 {
		r.volume.Bind(0)
		gl.Uniform1i(r.program.Volume, 0)
	}
	r.mesh.draw()
	if err := checkError("draw " + st.Mode.String()); err != nil {
		return err
	}

	if r.showStats {
		r.hud.update(r.stats(st))
		r.hud.draw(r.fbWidth, r.fbHeight)
	}

	r.window.SwapBuffers()
	return nil
}

func (r *Renderer) stats(st core.FrameState) overlay.Stats {
	s := overlay.Stats{
		Mode:     st.Mode.String(),
		Volume:   "-",
		Pitch:    st.Camera.Pitch,
		Yaw:      st.Camera.Yaw,
		Distance: st.Camera.Distance,
		Frames:   st.Frame,
		Dropped:  r.viewer.Scheduler().Dropped(),
		Pick:     r.pick,
	}
	if st.Volume != nil {
		s.Volume = st.Volume.Dimensions().String()
	}
	return s
}

func (r *Renderer) onResize(width, height int) {
	r.fbWidth, r.fbHeight = width, height
	r.viewer.Resize(width, height)
}

func (r *Renderer) onScroll(yoff float64) {
	// Scrolling up moves closer, like a browser wheel event with negative deltaY.
	r.viewer.Wheel(-yoff * r.wheelScale)
}

func (r *Renderer) onMouseButton(button glfw.MouseButton, action glfw.Action) {
	switch button {
	case glfw.MouseButtonLeft:
		switch action {
		case glfw.Press:
			r.viewer.PointerDown(r.window.GetCursorPos())
		case glfw.Release:
			r.viewer.PointerUp()
		}
	case glfw.MouseButtonRight:
		if action == glfw.Press {
			r.pickAt(r.window.GetCursorPos())
		}
	}
}

// pickAt selects the voxel under the cursor and shows it in the HUD.
func (r *Renderer) pickAt(x, y float64) {
	// Cursor positions are in screen coordinates, the viewport in pixels.
	if ww, wh := r.window.GetSize(); ww > 0 && wh > 0 {
		x *= float64(r.fbWidth) / float64(ww)
		y *= float64(r.fbHeight) / float64(wh)
	}
	r.pick = ""
	if p, ok := r.viewer.Pick(x, y); ok {
		r.pick = p.String()
		core.Logger().Info("voxel picked", "voxel", r.pick)
	}
	r.viewer.RequestRedraw()
}

func (r *Renderer) onKey(key glfw.Key, action glfw.Action) {
	if action != glfw.Press {
		return
	}
	switch key {
	case glfw.KeyEscape:
		r.window.SetShouldClose(true)
	case glfw.KeyF1:
		r.showStats = !r.showStats
		r.viewer.RequestRedraw()
	case glfw.KeyR:
		r.viewer.Reset()
	}
}

// Terminate releases GPU resources and closes the window.
func (r *Renderer) Terminate() {
	if r.hud != nil {
		r.hud.release()
	}
	if r.volume != nil {
		r.volume.Release()
	}
	if r.mesh != nil {
		r.mesh.release()
	}
	if r.program != nil {
		r.program.Delete()
	}
	r.window.Destroy()
	glfw.Terminate()
}
