package shaders

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Textured screen-space quad for the HUD.

const overlayVertexShader = `
#version 410 core

layout (location = 0) in vec2 position;
layout (location = 1) in vec2 texCoord;

out vec2 fragTexCoord;

uniform mat4 projection;

void main() {
    gl_Position = projection * vec4(position, 0.0, 1.0);
    fragTexCoord = texCoord;
}
`

const overlayFragmentShader = `
#version 410 core

in vec2 fragTexCoord;
out vec4 outColor;

uniform sampler2D overlayTexture;

void main() {
    outColor = texture(overlayTexture, fragTexCoord);
}
`

// OverlayProgram is the linked HUD program.
type OverlayProgram struct {
	ID         uint32
	Projection int32
	Texture    int32
}

// CompileOverlay builds the HUD program.
func CompileOverlay() (*OverlayProgram, error) {
	id, err := buildProgram(overlayVertexShader, overlayFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("overlay program: %w", err)
	}
	return &OverlayProgram{
		ID:         id,
		Projection: uniformLocation(id, "projection"),
		Texture:    uniformLocation(id, "overlayTexture"),
	}, nil
}

func (p *OverlayProgram) Delete() {
	if p.ID != 0 {
		gl.DeleteProgram(p.ID)
		p.ID = 0
	}
}
