package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/Faultbox/glslgen/pkg/spirv"
)

// DefaultGlslangPath is the glslang executable looked up on PATH.
const DefaultGlslangPath = "glslangValidator"

// Glslang compiles GLSL to OpenGL-flavoured SPIR-V with glslangValidator.
type Glslang struct {
	// Path is the executable, DefaultGlslangPath when empty.
	Path string
}

// NewGlslang resolves the glslangValidator executable.
func NewGlslang(path string) (*Glslang, error) {
	if path == "" {
		path = DefaultGlslangPath
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrToolNotFound, path, err)
	}
	return &Glslang{Path: resolved}, nil
}

// Args returns the command line used to compile src into out.
func (g *Glslang) Args(src Source, out string) []string {
	args := []string{
		"-G",    // SPIR-V for OpenGL
		"--aml", // auto-map locations
		"--amb", // auto-map bindings
		"--stdin",
		"-S", src.Stage.Extension(),
	}
	for _, name := range sortedDefines(src.Defines) {
		if v := src.Defines[name]; v != "" {
			args = append(args, "-D"+name+"="+v)
		} else {
			args = append(args, "-D"+name)
		}
	}
	return append(args, "-o", out)
}

// Compile runs glslangValidator on src.
func (g *Glslang) Compile(ctx context.Context, src Source) (*Output, error) {
	tmp, err := os.CreateTemp("", "glslgen-*.spv")
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}
	outPath := tmp.Name()
	tmp.Close()
	defer os.Remove(outPath)

	path := g.Path
	if path == "" {
		path = DefaultGlslangPath
	}

	cmd := exec.CommandContext(ctx, path, g.Args(src, outPath)...)
	cmd.Stdin = strings.NewReader(src.Text)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	runErr := cmd.Run()
	diag := parseDiagnostics(output.String())

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return nil, &CompilationError{
				Path:       src.Path,
				ErrorCount: diag.errorCount(),
				Message:    strings.TrimSpace(output.String()),
			}
		}
		return nil, fmt.Errorf("running %s: %w", path, runErr)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("reading compiled SPIR-V: %w", err)
	}
	words, err := spirv.DecodeWords(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Path, err)
	}

	return &Output{SPIRV: words, Warnings: diag.warnings}, nil
}
