package opengl

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"volumeviewer/core"
	"volumeviewer/rendering/opengl/shaders"
)

// meshBuffers is a proxy mesh uploaded to a VAO. Indexed meshes also own
// an element buffer.
type meshBuffers struct {
	vao, vbo, ebo uint32
	count         int32
	indexed       bool
}

func newMeshBuffers(mesh core.Mesh) (*meshBuffers, error) {
	m := &meshBuffers{count: int32(mesh.VertexCount()), indexed: mesh.Indices != nil}
	vertices := mesh.Flatten()

	drainErrors()
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(shaders.PositionLocation)
	gl.VertexAttribPointer(shaders.PositionLocation, 3, gl.FLOAT, false, 0, gl.PtrOffset(0))

	if m.indexed {
		gl.GenBuffers(1, &m.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)
	}
	gl.BindVertexArray(0)

	if err := checkError("upload mesh"); err != nil {
		m.release()
		return nil, err
	}
	return m, nil
}

// draw issues the single draw call for the mesh.
func (m *meshBuffers) draw() {
	gl.BindVertexArray(m.vao)
	if m.indexed {
		gl.DrawElements(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, gl.PtrOffset(0))
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, m.count)
	}
	gl.BindVertexArray(0)
}

func (m *meshBuffers) release() {
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
	}
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
}
