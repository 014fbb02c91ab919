// Package codegen turns reflected shaders, programs and uniform sets into Go
// source that wraps the go-gl uniform API with typed setters.
//
// Generation is a pure function of its Input: it never touches a GL
// context, and the same input always produces the same bytes.
package codegen

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
	"golang.org/x/tools/imports"

	"github.com/Faultbox/glslgen/internal/program"
	"github.com/Faultbox/glslgen/internal/shader"
	"github.com/Faultbox/glslgen/internal/uniformset"
)

// Errors returned by Generate.
var (
	ErrDuplicateIdentifier = errors.New("duplicate generated identifier")
	ErrUnknownShader       = errors.New("program references an unknown shader")
	ErrUnknownProgram      = errors.New("uniform set references an unknown program")
	ErrInvalidPackage      = errors.New("invalid package name")
	ErrImplicitLocation    = errors.New("uniform location is not fixed by the embedded source")
)

// Import paths the generated code may reference.
const (
	importFmt      = "fmt"
	importGL       = "github.com/go-gl/gl/v4.1-core/gl"
	importGLShader = "github.com/Faultbox/glslgen/pkg/glshader"
)

// LocationMode selects how generated code obtains uniform locations.
type LocationMode string

const (
	// LocationsQuery asks the driver with glGetUniformLocation.
	LocationsQuery LocationMode = "query"
	// LocationsReflected uses the location recorded in the SPIR-V binary.
	// Every uniform must carry the same layout(location = N) in the
	// embedded source, or the driver is free to place it elsewhere.
	LocationsReflected LocationMode = "reflected"
)

// ParseLocationMode parses a location mode name. Empty means query.
func ParseLocationMode(s string) (LocationMode, error) {
	switch LocationMode(strings.ToLower(s)) {
	case "", LocationsQuery:
		return LocationsQuery, nil
	case LocationsReflected:
		return LocationsReflected, nil
	default:
		return "", fmt.Errorf("unknown location mode %q", s)
	}
}

// Input is everything one generated file is built from.
type Input struct {
	// Package is the package clause of the generated file.
	Package   string
	Locations LocationMode

	Shaders     []*shader.Shader
	Programs    []*program.Program
	UniformSets []*uniformset.UniformSet

	// Sources are listed in the file header. Usually the union of every
	// shader's dependencies.
	Sources []string
	// Base is the directory source paths are shown relative to. Paths
	// outside it are shown unchanged.
	Base string
}

// Generate renders in as a formatted Go file.
func Generate(in Input) ([]byte, error) {
	if !token.IsIdentifier(in.Package) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPackage, in.Package)
	}

	g := newGenerator(in)
	if err := g.run(); err != nil {
		return nil, err
	}
	return g.format()
}

type generator struct {
	in Input

	body    bytes.Buffer
	imports map[string]bool
	// idents holds every top-level identifier emitted so far.
	idents map[string]string
	// shaders maps shader names to their position in Input.Shaders.
	shaders  map[string]int
	programs map[string]bool
}

func newGenerator(in Input) *generator {
	if in.Locations == "" {
		in.Locations = LocationsQuery
	}
	return &generator{
		in:       in,
		imports:  make(map[string]bool),
		idents:   make(map[string]string),
		shaders:  make(map[string]int),
		programs: make(map[string]bool),
	}
}

func (g *generator) run() error {
	for i, sh := range g.in.Shaders {
		if _, dup := g.shaders[sh.Name]; dup {
			return fmt.Errorf("%w: shader %q declared twice", ErrDuplicateIdentifier, sh.Name)
		}
		g.shaders[sh.Name] = i
	}

	for _, sh := range g.in.Shaders {
		if err := g.shader(sh); err != nil {
			return fmt.Errorf("shader %s: %w", sh.Name, err)
		}
	}
	for _, p := range g.in.Programs {
		g.programs[p.ID] = true
	}
	for _, p := range g.in.Programs {
		if err := g.program(p); err != nil {
			return fmt.Errorf("program %s: %w", p.ID, err)
		}
	}
	for _, set := range g.in.UniformSets {
		if err := g.uniformSet(set); err != nil {
			return fmt.Errorf("uniform set %s: %w", set.ID, err)
		}
	}
	return nil
}

// p writes one line of output.
func (g *generator) p(format string, args ...any) {
	fmt.Fprintf(&g.body, format, args...)
	g.body.WriteByte('\n')
}

func (g *generator) use(path string) {
	g.imports[path] = true
}

// declare reserves a top-level identifier.
func (g *generator) declare(ident, owner string) error {
	if prev, ok := g.idents[ident]; ok {
		return fmt.Errorf("%w: %s (from %s and %s)", ErrDuplicateIdentifier, ident, prev, owner)
	}
	g.idents[ident] = owner
	return nil
}

func (g *generator) header() []byte {
	var h bytes.Buffer
	h.WriteString("// Code generated by glslgen. DO NOT EDIT.\n")
	if len(g.in.Sources) > 0 {
		h.WriteString("//\n// Sources:\n")
		for _, src := range g.in.Sources {
			h.WriteString("//\t" + g.relative(src) + "\n")
		}
	}
	h.WriteString("\npackage " + g.in.Package + "\n\n")

	paths := make([]string, 0, len(g.imports))
	for path := range g.imports {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	if len(paths) > 0 {
		h.WriteString("import (\n")
		for _, path := range paths {
			h.WriteString("\t" + strconv.Quote(path) + "\n")
		}
		h.WriteString(")\n\n")
	}
	return h.Bytes()
}

func (g *generator) format() ([]byte, error) {
	src := append(g.header(), g.body.Bytes()...)
	out, err := imports.Process(g.in.Package+"_gen.go", src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("formatting generated code: %w", err)
	}
	return out, nil
}

// relative shows path relative to Input.Base when it lies inside it.
func (g *generator) relative(path string) string {
	if g.in.Base == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(g.in.Base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}

// exported returns the exported Go identifier for a GLSL or manifest name.
func exported(name string) string {
	return strcase.ToCamel(name)
}

// local returns an unexported identifier that is never a keyword.
func local(name string) string {
	id := strcase.ToLowerCamel(name)
	if token.IsKeyword(id) || id == "" {
		id += "Shader"
	}
	return id
}

// quoteSource renders shader source as a Go string literal, raw when
// possible.
func quoteSource(src string) string {
	if !strings.Contains(src, "`") && !strings.Contains(src, "\r") {
		return "`" + src + "`"
	}
	return strconv.Quote(src)
}
