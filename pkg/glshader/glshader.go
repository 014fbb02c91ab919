// Package glshader provides the OpenGL runtime used by generated shader
// wrappers: shader compilation, program linking and uniform locations.
//
// All functions require a current GL 4.1 context on the calling thread.
package glshader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// ComputeShader is GL_COMPUTE_SHADER. Compute shaders need GL 4.3, so the
// 4.1 core bindings do not define it.
const ComputeShader = 0x91B9

// Errors returned when the driver rejects a shader or program.
var (
	ErrCompile = errors.New("shader compilation failed")
	ErrLink    = errors.New("program link failed")
)

// Location is a uniform location that may be absent. The driver removes
// uniforms that do not contribute to the output; setting one is a no-op.
type Location struct {
	value int32
	valid bool
}

// Lookup queries the location of the named uniform.
func Lookup(program uint32, name string) Location {
	loc := gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	if loc < 0 {
		return Location{}
	}
	return Location{value: loc, valid: true}
}

// Fixed returns a location known ahead of time, e.g. from an explicit
// layout(location = N) qualifier.
func Fixed(loc uint32) Location {
	return Location{value: int32(loc), valid: true}
}

// Valid reports whether the location is active.
func (l Location) Valid() bool {
	return l.valid
}

// Value returns the raw location, -1 when absent.
func (l Location) Value() int32 {
	if !l.valid {
		return -1
	}
	return l.value
}

// CompileShader compiles a single shader of the given type (gl.VERTEX_SHADER,
// gl.FRAGMENT_SHADER or ComputeShader). name is used in errors only.
func CompileShader(shaderType uint32, source, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		log := shaderInfoLog(shader)
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %s: %s", ErrCompile, name, log)
	}

	return shader, nil
}

// LinkProgram links the given shaders into a new program. The shaders are
// detached after linking and stay owned by the caller.
func LinkProgram(shaders ...uint32) (uint32, error) {
	program := gl.CreateProgram()
	for _, sh := range shaders {
		gl.AttachShader(program, sh)
	}
	gl.LinkProgram(program)
	for _, sh := range shaders {
		gl.DetachShader(program, sh)
	}

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		log := programInfoLog(program)
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%w: %s", ErrLink, log)
	}

	return program, nil
}

func shaderInfoLog(shader uint32) string {
	var logLen int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
	if logLen == 0 {
		return ""
	}
	log := make([]byte, logLen)
	gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
	return strings.TrimRight(string(log), "\x00\n")
}

func programInfoLog(program uint32) string {
	var logLen int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
	if logLen == 0 {
		return ""
	}
	log := make([]byte, logLen)
	gl.GetProgramInfoLog(program, logLen, nil, &log[0])
	return strings.TrimRight(string(log), "\x00\n")
}
