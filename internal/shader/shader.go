// Package shader holds the per-stage record that flows through the
// generator: its stage, sources, SPIR-V binary and reflected uniforms.
package shader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"

	"github.com/Faultbox/glslgen/pkg/reflect"
)

// ErrUnknownStage is returned when a stage cannot be determined.
var ErrUnknownStage = errors.New("unknown shader stage")

// Stage is a programmable pipeline stage.
type Stage int

// Supported stages.
const (
	Vertex Stage = iota
	Fragment
	Compute
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case Vertex:
		return "vertex"
	case Fragment:
		return "fragment"
	case Compute:
		return "compute"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Extension returns the conventional file extension without the dot. It is
// also the stage name glslangValidator expects after -S.
func (s Stage) Extension() string {
	switch s {
	case Fragment:
		return "frag"
	case Compute:
		return "comp"
	default:
		return "vert"
	}
}

// GLConstant returns the Go constant naming the shader type in generated
// code.
func (s Stage) GLConstant() string {
	switch s {
	case Fragment:
		return "gl.FRAGMENT_SHADER"
	case Compute:
		return "glshader.ComputeShader"
	default:
		return "gl.VERTEX_SHADER"
	}
}

// ParseStage parses a stage name such as "vertex" or "frag".
func ParseStage(name string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "vertex", "vert", "vs":
		return Vertex, nil
	case "fragment", "frag", "fs":
		return Fragment, nil
	case "compute", "comp", "cs":
		return Compute, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStage, name)
	}
}

// StageFromPath detects the stage from a file extension, looking through
// a trailing .glsl or .wgsl (e.g. "blur.frag.glsl").
func StageFromPath(path string) (Stage, error) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == ".glsl" || ext == ".wgsl" {
		ext = filepath.Ext(strings.TrimSuffix(base, ext))
	}
	if ext == "" {
		return 0, fmt.Errorf("%w: %s has no stage extension", ErrUnknownStage, path)
	}
	stage, err := ParseStage(strings.TrimPrefix(ext, "."))
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrUnknownStage, path)
	}
	return stage, nil
}

// Shader is one compiled and reflected shader stage.
type Shader struct {
	// Name is the identifier the generated types derive from, e.g.
	// "blit_frag".
	Name  string
	Path  string
	Stage Stage

	// Source is the GLSL embedded in generated code.
	Source string
	SPIRV  []uint32

	Uniforms []reflect.FoundUniform

	// Dependencies lists the files the shader was built from, the shader
	// itself first.
	Dependencies []string
}

// DefaultName derives a shader name from its path: "shaders/blit.frag"
// becomes "blit_frag".
func DefaultName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".glsl")
	base = strings.TrimSuffix(base, ".wgsl")
	return snake(base)
}

// snake lower-cases s and splits it at camel humps only, so digits stay
// with their word: "fullScreen.vert" is "full_screen_vert" and
// "blur3x3.frag" is "blur3x3_frag".
func snake(s string) string {
	rs := []rune(s)
	var b strings.Builder
	sep := func() {
		if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
			b.WriteByte('_')
		}
	}
	for i, r := range rs {
		switch {
		case r == '.' || r == '-' || r == '_' || unicode.IsSpace(r):
			sep()
		case unicode.IsUpper(r):
			prev := i > 0 && (unicode.IsLower(rs[i-1]) || unicode.IsDigit(rs[i-1]))
			// The last capital of an acronym starts the next word: HDRBlur.
			acronym := i > 0 && unicode.IsUpper(rs[i-1]) && i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if prev || acronym {
				sep()
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TypeName returns the exported Go identifier for a snake or camel name,
// e.g. "blit_frag" becomes "BlitFrag".
func TypeName(name string) string {
	return strcase.ToCamel(name)
}

// HasUniforms reports whether any uniform was reflected.
func (s *Shader) HasUniforms() bool {
	return len(s.Uniforms) > 0
}
