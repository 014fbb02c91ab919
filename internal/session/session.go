// Package session drives one generator run: shaders are compiled and
// reflected, grouped into programs and uniform sets, then emitted as Go.
//
// A Session has the lifecycle New → AddShaders / AddProgram /
// AddUniformSet → Generate or Emit. It is not safe for concurrent use;
// AddShaders parallelizes internally.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"go.uber.org/zap"

	"github.com/Faultbox/glslgen/internal/codegen"
	"github.com/Faultbox/glslgen/internal/compiler"
	"github.com/Faultbox/glslgen/internal/program"
	"github.com/Faultbox/glslgen/internal/shader"
	"github.com/Faultbox/glslgen/internal/uniformset"
	"github.com/Faultbox/glslgen/pkg/reflect"
)

// Errors returned by Session.
var (
	ErrDuplicateName    = errors.New("name already registered")
	ErrUnknownShader    = errors.New("unknown shader")
	ErrUnknownProgram   = errors.New("unknown program")
	ErrUniformConflict  = errors.New("uniform declared with different types")
	ErrNoTranspiler     = errors.New("no SPIR-V to GLSL transpiler configured")
	ErrNoCompiler       = errors.New("no compiler configured")
	ErrShaderSourceless = errors.New("shader has neither source nor path")
)

// Targets for the embedded shader source.
const (
	// TargetSource embeds the preprocessed input GLSL.
	TargetSource = "source"
	// TargetGLSL embeds GLSL transpiled from SPIR-V at Options.GlslVersion.
	TargetGLSL = "glsl"
)

// Options configure a session.
type Options struct {
	Package     string
	Target      string
	GlslVersion compiler.GlslVersion
	Locations   codegen.LocationMode
	// StrictUniformTypes fails AddProgram when two stages declare the same
	// uniform with different types. Otherwise the first stage wins.
	StrictUniformTypes bool

	Defines     map[string]string
	IncludeDirs []string
	// Workers bounds parallel compilations; 0 means one per CPU.
	Workers int
	// Timeout bounds every compiler invocation; 0 means none.
	Timeout time.Duration
}

// Toolchain holds the compilers a session uses.
type Toolchain struct {
	// GLSL compiles .vert, .frag and .comp sources.
	GLSL compiler.Compiler
	// WGSL compiles .wgsl sources.
	WGSL compiler.Compiler
	// Transpiler is required for TargetGLSL unless the compiler already
	// emits GLSL.
	Transpiler compiler.Transpiler
}

// ShaderSpec declares one shader stage.
type ShaderSpec struct {
	// Name defaults to shader.DefaultName(Path).
	Name  string
	Path  string
	Stage shader.Stage
	// Source overrides the contents of Path.
	Source string
}

// Session accumulates shaders, programs and uniform sets.
type Session struct {
	opts      Options
	tools     Toolchain
	log       *zap.Logger
	reflector *reflect.Reflector
	includes  *compiler.IncludeResolver

	shaders  []*shader.Shader
	programs []*program.Program
	sets     []*uniformset.UniformSet

	shaderIndex  map[string]*shader.Shader
	programIndex map[string]*program.Program
	setIndex     map[string]bool
}

// New creates an empty session. A nil logger discards diagnostics.
func New(opts Options, tools Toolchain, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Target == "" {
		opts.Target = TargetSource
	}
	if opts.Package == "" {
		opts.Package = "shaders"
	}
	return &Session{
		opts:         opts,
		tools:        tools,
		log:          log,
		reflector:    reflect.New(log.Named("reflect")),
		includes:     compiler.NewIncludeResolver(opts.IncludeDirs...),
		shaderIndex:  make(map[string]*shader.Shader),
		programIndex: make(map[string]*program.Program),
		setIndex:     make(map[string]bool),
	}
}

// Shaders returns the registered shaders in registration order.
func (s *Session) Shaders() []*shader.Shader { return s.shaders }

// Programs returns the registered programs in registration order.
func (s *Session) Programs() []*program.Program { return s.programs }

// UniformSets returns the registered uniform sets in registration order.
func (s *Session) UniformSets() []*uniformset.UniformSet { return s.sets }

// Shader looks up a registered shader by name.
func (s *Session) Shader(name string) (*shader.Shader, bool) {
	sh, ok := s.shaderIndex[name]
	return sh, ok
}

// AddShaders compiles and reflects specs in parallel and registers them in
// the given order. Nothing is registered when any of them fails; the
// returned error joins every failure.
func (s *Session) AddShaders(ctx context.Context, specs ...ShaderSpec) error {
	if len(specs) == 0 {
		return nil
	}
	seen := make(map[string]bool)
	for i := range specs {
		if specs[i].Name == "" {
			specs[i].Name = shader.DefaultName(specs[i].Path)
		}
		name := specs[i].Name
		if _, ok := s.shaderIndex[name]; ok || seen[name] {
			return fmt.Errorf("%w: shader %q", ErrDuplicateName, name)
		}
		seen[name] = true
	}

	results := make([]*shader.Shader, len(specs))
	errs := make([]error, len(specs))

	workers := s.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool := worker.NewDynamicWorkerPool(workers, len(specs)+1, 1*time.Second)

	var wg sync.WaitGroup
	for i := range specs {
		wg.Add(1)
		idx := i
		pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				results[idx], errs[idx] = s.build(ctx, specs[idx])
				return nil, nil
			},
		})
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return err
	}

	for _, sh := range results {
		s.shaders = append(s.shaders, sh)
		s.shaderIndex[sh.Name] = sh
		s.log.Info("Shader reflected",
			zap.String("shader", sh.Name),
			zap.String("stage", sh.Stage.String()),
			zap.Int("uniforms", len(sh.Uniforms)))
	}
	return nil
}

// build compiles, reflects and prepares the embedded source of one shader.
func (s *Session) build(ctx context.Context, spec ShaderSpec) (*shader.Shader, error) {
	if spec.Path == "" && spec.Source == "" {
		return nil, fmt.Errorf("%s: %w", spec.Name, ErrShaderSourceless)
	}
	wgsl := isWGSL(spec.Path)

	// Includes
	var (
		text string
		deps []string
	)
	switch {
	case wgsl && spec.Source != "":
		text, deps = spec.Source, []string{spec.Path}
	case wgsl:
		src, err := s.includes.Load(spec.Path)
		if err != nil {
			return nil, err
		}
		text, deps = src, []string{spec.Path}
	default:
		var (
			exp *compiler.Expanded
			err error
		)
		if spec.Source != "" {
			exp, err = s.includes.ExpandSource(spec.Path, spec.Source)
		} else {
			exp, err = s.includes.Expand(spec.Path)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", spec.Name, err)
		}
		text, deps = exp.Text, exp.Dependencies
	}

	c := s.tools.GLSL
	if wgsl {
		c = s.tools.WGSL
	}
	if c == nil {
		return nil, fmt.Errorf("%s: %w", spec.Name, ErrNoCompiler)
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	defines := compiler.MergeDefines(s.opts.Defines)
	out, err := c.Compile(ctx, compiler.Source{
		Path:    spec.Path,
		Text:    text,
		Stage:   spec.Stage,
		Defines: defines,
	})
	if err != nil {
		return nil, err
	}
	for _, w := range out.Warnings {
		s.log.Warn("Compiler warning", zap.String("shader", spec.Name), zap.String("message", w))
	}

	uniforms, err := s.reflector.ReflectWords(out.SPIRV)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", spec.Name, err)
	}

	source, err := s.embeddedSource(ctx, text, defines, out)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", spec.Name, err)
	}

	return &shader.Shader{
		Name:         spec.Name,
		Path:         spec.Path,
		Stage:        spec.Stage,
		Source:       source,
		SPIRV:        out.SPIRV,
		Uniforms:     uniforms,
		Dependencies: deps,
	}, nil
}

func (s *Session) embeddedSource(ctx context.Context, text string, defines map[string]string, out *compiler.Output) (string, error) {
	if s.opts.Target == TargetGLSL || out.GLSL != "" {
		if out.GLSL != "" {
			return out.GLSL, nil
		}
		if s.tools.Transpiler == nil {
			return "", ErrNoTranspiler
		}
		return s.tools.Transpiler.Transpile(ctx, out.SPIRV, s.opts.GlslVersion)
	}
	return compiler.FilterSource(compiler.InjectDefines(text, defines)), nil
}

// AddProgram links registered shaders into a program.
func (s *Session) AddProgram(id string, shaderNames ...string) (*program.Program, error) {
	if _, ok := s.programIndex[id]; ok {
		return nil, fmt.Errorf("%w: program %q", ErrDuplicateName, id)
	}

	shaders := make([]*shader.Shader, len(shaderNames))
	for i, name := range shaderNames {
		sh, ok := s.shaderIndex[name]
		if !ok {
			return nil, fmt.Errorf("program %s: %w: %q", id, ErrUnknownShader, name)
		}
		shaders[i] = sh
	}

	p := program.Assemble(id, shaders)
	for _, c := range p.Conflicts {
		s.log.Warn("Uniform declared with different types, keeping the first",
			zap.String("program", id),
			zap.String("uniform", c.Name),
			zap.String("kept", c.Kept.String()),
			zap.String("kept_in", c.KeptIn),
			zap.String("dropped", c.Dropped.String()),
			zap.String("dropped_in", c.DroppedIn))
	}
	if s.opts.StrictUniformTypes && len(p.Conflicts) > 0 {
		c := p.Conflicts[0]
		return nil, fmt.Errorf("program %s: %w: %s is %s in %s and %s in %s",
			id, ErrUniformConflict, c.Name, c.Kept, c.KeptIn, c.Dropped, c.DroppedIn)
	}

	s.programs = append(s.programs, p)
	s.programIndex[id] = p
	s.log.Debug("Program assembled", zap.String("program", id), zap.Int("uniforms", len(p.Uniforms)))
	return p, nil
}

// AddUniformSet intersects the uniforms of registered programs.
func (s *Session) AddUniformSet(id string, programIDs ...string) (*uniformset.UniformSet, error) {
	if s.setIndex[id] {
		return nil, fmt.Errorf("%w: uniform set %q", ErrDuplicateName, id)
	}

	programs := make([]*program.Program, len(programIDs))
	for i, pid := range programIDs {
		p, ok := s.programIndex[pid]
		if !ok {
			return nil, fmt.Errorf("uniform set %s: %w: %q", id, ErrUnknownProgram, pid)
		}
		programs[i] = p
	}

	set := uniformset.Resolve(id, programs)
	s.sets = append(s.sets, set)
	s.setIndex[id] = true
	s.log.Debug("Uniform set resolved", zap.String("set", id), zap.Int("uniforms", len(set.Uniforms)))
	return set, nil
}

// Dependencies returns every file the registered shaders were built from,
// sorted and without duplicates.
func (s *Session) Dependencies() []string {
	seen := make(map[string]bool)
	var deps []string
	for _, sh := range s.shaders {
		for _, d := range sh.Dependencies {
			if d != "" && !seen[d] {
				seen[d] = true
				deps = append(deps, d)
			}
		}
	}
	sort.Strings(deps)
	return deps
}

// Generate renders the registered items as Go source. Source paths are
// shown relative to base when they lie inside it.
func (s *Session) Generate(base string) ([]byte, error) {
	return codegen.Generate(codegen.Input{
		Package:     s.opts.Package,
		Locations:   s.opts.Locations,
		Shaders:     s.shaders,
		Programs:    s.programs,
		UniformSets: s.sets,
		Sources:     s.Dependencies(),
		Base:        base,
	})
}

// Emit generates the output and writes it to path. The file is replaced
// atomically.
func (s *Session) Emit(path string) error {
	code, err := s.Generate(filepath.Dir(path))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".glslgen-*.go")
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if _, err := tmp.Write(code); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	s.log.Info("Generated", zap.String("path", path), zap.Int("bytes", len(code)))
	return nil
}

func isWGSL(path string) bool {
	return strings.HasSuffix(path, ".wgsl")
}

// WriteDepfile writes a make-style rule listing the files target was
// generated from.
func (s *Session) WriteDepfile(path, target string) error {
	var b strings.Builder
	b.WriteString(escapeMake(target) + ":")
	for _, d := range s.Dependencies() {
		b.WriteString(" \\\n  " + escapeMake(d))
	}
	b.WriteString("\n")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing depfile: %w", err)
	}
	return nil
}

func escapeMake(path string) string {
	return strings.ReplaceAll(path, " ", `\ `)
}
