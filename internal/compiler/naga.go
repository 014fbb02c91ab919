package compiler

import (
	"context"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
	nagaspirv "github.com/gogpu/naga/spirv"

	"github.com/Faultbox/glslgen/pkg/spirv"
)

// Naga compiles WGSL shaders in process. Besides SPIR-V for reflection it
// emits GLSL of the configured version for embedding.
type Naga struct {
	Version  GlslVersion
	Validate bool
}

// NewNaga creates a validating WGSL compiler targeting version.
func NewNaga(version GlslVersion) *Naga {
	return &Naga{Version: version, Validate: true}
}

// Compile compiles src.Text as WGSL. Defines are ignored; WGSL has no
// preprocessor.
func (n *Naga) Compile(ctx context.Context, src Source) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := naga.CompileWithOptions(src.Text, naga.CompileOptions{
		SPIRVVersion: nagaspirv.Version1_0,
		Debug:        true, // OpName is needed for reflection
		Validate:     n.Validate,
	})
	if err != nil {
		return nil, &CompilationError{Path: src.Path, ErrorCount: 1, Message: err.Error()}
	}
	words, err := spirv.DecodeWords(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Path, err)
	}

	ast, err := naga.Parse(src.Text)
	if err != nil {
		return nil, &CompilationError{Path: src.Path, ErrorCount: 1, Message: err.Error()}
	}
	module, err := naga.LowerWithSource(ast, src.Text)
	if err != nil {
		return nil, &CompilationError{Path: src.Path, ErrorCount: 1, Message: err.Error()}
	}

	opts := glsl.DefaultOptions()
	opts.LangVersion = n.Version.Naga()
	code, _, err := glsl.Compile(module, opts)
	if err != nil {
		return nil, &TranspileError{Version: n.Version, Message: err.Error()}
	}

	return &Output{SPIRV: words, GLSL: code}, nil
}
