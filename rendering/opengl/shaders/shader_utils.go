package shaders

import (
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"volumeviewer/core"
)

// compileShader compiles a single shader stage
func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	if shader == 0 {
		return 0, &core.DeviceError{Op: "create shader", Code: gl.GetError()}
	}

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, &core.ShaderCompileError{Stage: stageName(shaderType), Log: strings.TrimRight(log, "\x00\n")}
	}

	return shader, nil
}

// linkProgram links vertex and fragment shaders into a program
func linkProgram(vertShader, fragShader uint32) (uint32, error) {
	program := gl.CreateProgram()
	if program == 0 {
		return 0, &core.DeviceError{Op: "create program", Code: gl.GetError()}
	}
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, &core.ShaderLinkError{Log: strings.TrimRight(log, "\x00\n")}
	}

	gl.DetachShader(program, vertShader)
	gl.DetachShader(program, fragShader)
	return program, nil
}

// buildProgram compiles both stages and links them, deleting the stage
// objects once the program owns them.
func buildProgram(vertexSource, fragmentSource string) (uint32, error) {
	vertShader, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	return linkProgram(vertShader, fragShader)
}

func stageName(shaderType uint32) string {
	switch shaderType {
	case gl.VERTEX_SHADER:
		return "vertex"
	case gl.FRAGMENT_SHADER:
		return "fragment"
	}
	return "unknown"
}
