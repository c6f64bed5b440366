// Package raylib is a lightweight preview host for the viewer. It draws the
// proxy mesh and a subsampled voxel cloud with raylib instead of the
// ray-marching shader, using the same camera and transforms.
package raylib

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"volumeviewer/core"
	"volumeviewer/overlay"
)

// MaxVoxelsPerAxis bounds the preview voxel cloud.
const MaxVoxelsPerAxis = 24

type Options struct {
	Width, Height int
	Title         string
	VSync         bool
	ShowStats     bool
	WheelScale    float64
	// EventWaiting sleeps until local input arrives. Leave it off when
	// remote input must be serviced.
	EventWaiting bool
}

// frameQueue runs requested callbacks once per loop iteration, before the
// scene texture is presented.
type frameQueue struct {
	callbacks []func()
}

func (q *frameQueue) RequestFrame(cb func()) {
	q.callbacks = append(q.callbacks, cb)
}

func (q *frameQueue) run() {
	cbs := q.callbacks
	q.callbacks = nil
	for _, cb := range cbs {
		cb()
	}
}

// Preview is the raylib host. The scene is rendered into a texture only
// when the scheduler fires; every refresh presents that texture.
type Preview struct {
	opts   Options
	frames *frameQueue
	viewer *core.Viewer

	target    rl.RenderTexture2D
	hud       *overlay.HUD
	hudTex    rl.Texture2D
	hasHUDTex bool
	showStats bool
	pick      string
}

// NewPreview opens the raylib window.
func NewPreview(opts Options) *Preview {
	if opts.WheelScale == 0 {
		opts.WheelScale = 100
	}
	flags := uint32(rl.FlagWindowResizable)
	if opts.VSync {
		flags |= rl.FlagVsyncHint
	}
	rl.SetTraceLogLevel(rl.LogWarning)
	rl.SetConfigFlags(flags)
	rl.InitWindow(int32(opts.Width), int32(opts.Height), opts.Title)
	if opts.EventWaiting {
		rl.EnableEventWaiting()
	}
	p := &Preview{
		opts:      opts,
		frames:    &frameQueue{},
		hud:       overlay.NewHUD(),
		showStats: opts.ShowStats,
	}
	p.target = rl.LoadRenderTexture(int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()))
	return p
}

func (p *Preview) FrameRequester() core.FrameRequester {
	return p.frames
}

// Attach installs the draw routine for v.
func (p *Preview) Attach(v *core.Viewer) {
	p.viewer = v
	v.SetDraw(p.drawFrame)
	v.Resize(rl.GetScreenWidth(), rl.GetScreenHeight())
}

// Run services input and presents frames until the window closes.
func (p *Preview) Run(events <-chan core.InputEvent) {
	p.viewer.Start()
	for !rl.WindowShouldClose() {
		p.handleInput()
		p.drainEvents(events)
		p.frames.run()

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		tex := p.target.Texture
		// Render textures are stored bottom-up.
		rl.DrawTextureRec(tex, rl.NewRectangle(0, 0, float32(tex.Width), -float32(tex.Height)), rl.NewVector2(0, 0), rl.White)
		if p.showStats && p.hasHUDTex {
			rl.DrawTexture(p.hudTex, 0, 0, rl.White)
		}
		rl.EndDrawing()
	}
}

func (p *Preview) handleInput() {
	if rl.IsWindowResized() {
		w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
		rl.UnloadRenderTexture(p.target)
		p.target = rl.LoadRenderTexture(int32(w), int32(h))
		p.viewer.Resize(w, h)
	}

	pos := rl.GetMousePosition()
	x, y := float64(pos.X), float64(pos.Y)
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		p.viewer.PointerDown(x, y)
	}
	if d := rl.GetMouseDelta(); d.X != 0 || d.Y != 0 {
		p.viewer.PointerMove(x, y)
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		p.viewer.PointerUp()
	}
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		p.pick = ""
		if pk, ok := p.viewer.Pick(x, y); ok {
			p.pick = pk.String()
			core.Logger().Info("voxel picked", "voxel", p.pick)
		}
		p.viewer.RequestRedraw()
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		p.viewer.Wheel(-float64(wheel) * p.opts.WheelScale)
	}

	if rl.IsKeyPressed(rl.KeyR) {
		p.viewer.Reset()
	}
	if rl.IsKeyPressed(rl.KeyF1) {
		p.showStats = !p.showStats
		p.viewer.RequestRedraw()
	}
}

func (p *Preview) drainEvents(events <-chan core.InputEvent) {
	for {
		select {
		case ev := <-events:
			if err := p.viewer.Apply(ev); err != nil {
				core.Logger().Warn("remote input ignored", "err", err)
			}
		default:
			return
		}
	}
}

func (p *Preview) drawFrame(st core.FrameState) error {
	rl.BeginTextureMode(p.target)
	rl.ClearBackground(rl.Black)

	rl.DrawRenderBatchActive()
	rl.SetMatrixProjection(toMatrix(core.ToGL(st.Projection)))
	rl.SetMatrixModelview(toMatrix(core.ToGL(st.View.Mul4(st.Model))))
	rl.DisableBackfaceCulling()

	switch st.Mode {
	case core.ModeVolume:
		rl.EnableDepthTest()
		drawVoxels(st.Volume)
		rl.DrawCubeWires(rl.NewVector3(0.5, 0.5, 0.5), 1, 1, 1, rl.RayWhite)
	case core.ModeCube:
		rl.EnableDepthTest()
		drawMesh(p.viewer.Mesh(), positionColor)
	default:
		drawMesh(p.viewer.Mesh(), func(mgl32.Vec3) color.RGBA { return rl.Red })
	}

	// Flush while the orbit matrices and render state are still set.
	rl.DrawRenderBatchActive()
	rl.DisableDepthTest()
	rl.EnableBackfaceCulling()
	rl.EndTextureMode()

	if p.showStats {
		p.updateHUD(st)
	}
	return nil
}

func (p *Preview) updateHUD(st core.FrameState) {
	s := overlay.Stats{
		Mode:     st.Mode.String(),
		Volume:   "-",
		Pitch:    st.Camera.Pitch,
		Yaw:      st.Camera.Yaw,
		Distance: st.Camera.Distance,
		Frames:   st.Frame,
		Dropped:  p.viewer.Scheduler().Dropped(),
		Pick:     p.pick,
	}
	if st.Volume != nil {
		s.Volume = st.Volume.Dimensions().String()
	}
	if !p.hud.Update(s) {
		return
	}
	img := rl.NewImageFromImage(p.hud.Image())
	if p.hasHUDTex {
		rl.UnloadTexture(p.hudTex)
	}
	p.hudTex = rl.LoadTextureFromImage(img)
	p.hasHUDTex = true
	rl.UnloadImage(img)
}

// positionColor mirrors the cube shader: color = model-space position.
func positionColor(v mgl32.Vec3) color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(v.X()) * 255),
		G: uint8(clamp01(v.Y()) * 255),
		B: uint8(clamp01(v.Z()) * 255),
		A: 255,
	}
}

func clamp01(f float32) float32 {
	return max(0, min(1, f))
}

// drawMesh emits the mesh triangles through the immediate-mode batch.
func drawMesh(mesh core.Mesh, shade func(mgl32.Vec3) color.RGBA) {
	vertex := func(v mgl32.Vec3) {
		c := shade(v)
		rl.Color4ub(c.R, c.G, c.B, c.A)
		rl.Vertex3f(v.X(), v.Y(), v.Z())
	}
	rl.Begin(rl.Triangles)
	if mesh.Indices == nil {
		for _, v := range mesh.Positions {
			vertex(v)
		}
	} else {
		for _, i := range mesh.Indices {
			vertex(mesh.Positions[i])
		}
	}
	rl.End()
}

// drawVoxels draws one cube per visited sample, spanning the block of
// voxels it stands for. Fully transparent samples are skipped.
func drawVoxels(field *core.VolumeField) {
	if field == nil {
		return
	}
	dims := field.Dimensions()
	step := dims.Stride(MaxVoxelsPerAxis)
	size := mgl32.Vec3{float32(step) / float32(dims.X), float32(step) / float32(dims.Y), float32(step) / float32(dims.Z)}
	for z := 0; z < dims.Z; z += step {
		for y := 0; y < dims.Y; y += step {
			for x := 0; x < dims.X; x += step {
				c, err := field.Sample(x, y, z)
				if err != nil || c.A == 0 {
					continue
				}
				center := rl.NewVector3(
					(float32(x)+float32(step)/2)/float32(dims.X),
					(float32(y)+float32(step)/2)/float32(dims.Y),
					(float32(z)+float32(step)/2)/float32(dims.Z),
				)
				rl.DrawCube(center, size.X(), size.Y(), size.Z(), c)
			}
		}
	}
}

func toMatrix(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M1: m[1], M2: m[2], M3: m[3],
		M4: m[4], M5: m[5], M6: m[6], M7: m[7],
		M8: m[8], M9: m[9], M10: m[10], M11: m[11],
		M12: m[12], M13: m[13], M14: m[14], M15: m[15],
	}
}

// Close releases textures and closes the window.
func (p *Preview) Close() {
	if p.hasHUDTex {
		rl.UnloadTexture(p.hudTex)
	}
	rl.UnloadRenderTexture(p.target)
	rl.CloseWindow()
}
