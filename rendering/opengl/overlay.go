package opengl

import (
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"volumeviewer/overlay"
	"volumeviewer/rendering/opengl/shaders"
)

// hudLayer draws the text HUD as a textured quad in the top-left corner.
type hudLayer struct {
	program *shaders.OverlayProgram
	hud     *overlay.HUD
	vao     uint32
	vbo     uint32
	texture uint32

	texW, texH int
	dirty      bool
}

func newHUDLayer() (*hudLayer, error) {
	program, err := shaders.CompileOverlay()
	if err != nil {
		return nil, err
	}
	l := &hudLayer{program: program, hud: overlay.NewHUD()}

	gl.GenVertexArrays(1, &l.vao)
	gl.BindVertexArray(l.vao)
	gl.GenBuffers(1, &l.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, l.vbo)
	// 6 vertices of x, y, u, v
	gl.BufferData(gl.ARRAY_BUFFER, 6*4*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(2*4))
	gl.BindVertexArray(0)

	gl.GenTextures(1, &l.texture)
	gl.BindTexture(gl.TEXTURE_2D, l.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if err := checkError("create hud"); err != nil {
		l.release()
		return nil, err
	}
	return l, nil
}

func (l *hudLayer) update(s overlay.Stats) {
	if l.hud.Update(s) {
		l.dirty = true
	}
}

func (l *hudLayer) draw(width, height int) {
	img := l.hud.Image()
	if img == nil {
		return
	}
	if l.dirty {
		l.upload(img)
		l.dirty = false
	}

	w, h := float32(l.texW), float32(l.texH)
	quad := []float32{
		0, 0, 0, 0,
		w, 0, 1, 0,
		w, h, 1, 1,
		0, 0, 0, 0,
		w, h, 1, 1,
		0, h, 0, 1,
	}
	projection := mgl32.Ortho2D(0, float32(width), float32(height), 0)

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	gl.UseProgram(l.program.ID)
	gl.UniformMatrix4fv(l.program.Projection, 1, false, &projection[0])
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, l.texture)
	gl.Uniform1i(l.program.Texture, 1)

	gl.BindVertexArray(l.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, l.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(quad)*4, gl.Ptr(quad))
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.Disable(gl.BLEND)
}

func (l *hudLayer) upload(img *image.RGBA) {
	b := img.Bounds()
	gl.BindTexture(gl.TEXTURE_2D, l.texture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()),
		0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	l.texW, l.texH = b.Dx(), b.Dy()
}

func (l *hudLayer) release() {
	if l.texture != 0 {
		gl.DeleteTextures(1, &l.texture)
	}
	if l.vbo != 0 {
		gl.DeleteBuffers(1, &l.vbo)
	}
	if l.vao != 0 {
		gl.DeleteVertexArrays(1, &l.vao)
	}
	l.program.Delete()
}
