package shaders

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"volumeviewer/core"
)

// Minimal variant: untransformed positions, constant red.
const triangleVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPosition;

void main() {
    gl_Position = vec4(aPosition, 1.0);
}
`

const triangleFragmentShader = `
#version 410 core

out vec4 outColor;

void main() {
    outColor = vec4(1.0, 0.0, 0.0, 1.0);
}
`

// Transform-aware variants share one vertex stage. The camera position in
// object space is recovered from the inverse MVP so the fragment stage can
// build a view ray.
const cubeVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPosition;

uniform mat4 uMVPMatrix;

out vec3 vPosition;
flat out vec3 vEye;

void main() {
    vec4 eye = inverse(uMVPMatrix) * vec4(0.0, 0.0, -1.0, 0.0);
    vEye = eye.xyz / eye.w;
    vPosition = aPosition;
    gl_Position = uMVPMatrix * vec4(aPosition, 1.0);
}
`

const cubeFragmentShader = `
#version 410 core

in vec3 vPosition;
flat in vec3 vEye;

out vec4 outColor;

void main() {
    outColor = vec4(vPosition, 1.0);
}
`

// Front-to-back compositing along the view ray, one step per voxel of the
// largest axis.
const volumeFragmentShader = `
#version 410 core

in vec3 vPosition;
flat in vec3 vEye;

uniform vec3 uVolumeSize;
uniform sampler3D uVolume;

out vec4 outColor;

void main() {
    vec3 dir = normalize(vPosition - vEye);
    float stepLen = 1.0 / max(max(uVolumeSize.x, uVolumeSize.y), uVolumeSize.z);
    int maxSteps = int(ceil(1.7320508 / stepLen)) + 1;

    vec3 p = vPosition + dir * stepLen * 0.5;
    vec4 acc = vec4(0.0);
    for (int i = 0; i < maxSteps; i++) {
        if (any(lessThan(p, vec3(0.0))) || any(greaterThan(p, vec3(1.0)))) {
            break;
        }
        vec4 s = texture(uVolume, p);
        float a = s.a * stepLen * 8.0;
        acc.rgb += (1.0 - acc.a) * a * s.rgb;
        acc.a += (1.0 - acc.a) * a;
        if (acc.a > 0.99) {
            break;
        }
        p += dir * stepLen;
    }
    outColor = vec4(acc.rgb, 1.0);
}
`

// Uniform and attribute names shared with the GPU programs.
const (
	AttribPosition    = "aPosition"
	UniformMVP        = "uMVPMatrix"
	UniformVolumeSize = "uVolumeSize"
	UniformVolume     = "uVolume"

	// PositionLocation is the attribute location bound to aPosition.
	PositionLocation = 0
)

// Program is a linked program and the uniform locations the frame routine
// sets. Locations are -1 when the variant does not use the uniform.
type Program struct {
	ID         uint32
	Mode       core.RenderMode
	MVP        int32
	VolumeSize int32
	Volume     int32
}

// Sources returns the vertex and fragment source for a variant.
func Sources(mode core.RenderMode) (vertex, fragment string, err error) {
	switch mode {
	case core.ModeTriangle:
		return triangleVertexShader, triangleFragmentShader, nil
	case core.ModeCube:
		return cubeVertexShader, cubeFragmentShader, nil
	case core.ModeVolume:
		return cubeVertexShader, volumeFragmentShader, nil
	}
	return "", "", fmt.Errorf("no shaders for %s", mode)
}

// Compile builds the program for a variant. Compile and link failures carry
// the driver's info log.
func Compile(mode core.RenderMode) (*Program, error) {
	vs, fs, err := Sources(mode)
	if err != nil {
		return nil, err
	}
	id, err := buildProgram(vs, fs)
	if err != nil {
		return nil, fmt.Errorf("%s program: %w", mode, err)
	}
	return &Program{
		ID:         id,
		Mode:       mode,
		MVP:        uniformLocation(id, UniformMVP),
		VolumeSize: uniformLocation(id, UniformVolumeSize),
		Volume:     uniformLocation(id, UniformVolume),
	}, nil
}

// Delete releases the program.
func (p *Program) Delete() {
	if p.ID != 0 {
		gl.DeleteProgram(p.ID)
		p.ID = 0
	}
}

func uniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}
