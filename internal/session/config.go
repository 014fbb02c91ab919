package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/glslgen/internal/codegen"
	"github.com/Faultbox/glslgen/internal/compiler"
	"github.com/Faultbox/glslgen/internal/config"
)

// OptionsFromConfig converts the manifest settings into session options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	opts := Options{
		Package:            cfg.Output.Package,
		Target:             cfg.Compiler.Target,
		StrictUniformTypes: cfg.Codegen.StrictUniformTypes,
		Defines:            cfg.Compiler.Defines,
		Workers:            cfg.Compiler.Workers,
		Timeout:            cfg.Compiler.Timeout,
	}
	for _, dir := range cfg.Compiler.IncludeDirs {
		opts.IncludeDirs = append(opts.IncludeDirs, cfg.Resolve(dir))
	}

	version, err := compiler.ParseGlslVersion(cfg.Compiler.GlslVersion)
	if err != nil {
		return Options{}, err
	}
	opts.GlslVersion = version

	opts.Locations, err = codegen.ParseLocationMode(cfg.Codegen.Locations)
	if err != nil {
		return Options{}, err
	}
	return opts, nil
}

// ToolchainFromConfig resolves the external tools the manifest needs.
// glslangValidator is only required when a GLSL shader is declared and
// spirv-cross only for the glsl target.
func ToolchainFromConfig(cfg *config.Config, version compiler.GlslVersion) (Toolchain, error) {
	tools := Toolchain{WGSL: compiler.NewNaga(version)}

	needGLSL := false
	for _, s := range cfg.Shaders {
		if !isWGSL(s.Path) {
			needGLSL = true
			break
		}
	}
	if needGLSL {
		g, err := compiler.NewGlslang(cfg.Compiler.Glslang)
		if err != nil {
			return Toolchain{}, err
		}
		tools.GLSL = g
	}

	if cfg.Compiler.Target == config.TargetGLSL && needGLSL {
		sc, err := compiler.NewSpirvCross(cfg.Compiler.SpirvCross)
		if err != nil {
			return Toolchain{}, err
		}
		tools.Transpiler = sc
	}
	return tools, nil
}

// FromConfig builds a session holding everything the manifest declares.
func FromConfig(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	tools, err := ToolchainFromConfig(cfg, opts.GlslVersion)
	if err != nil {
		return nil, err
	}
	return Populate(ctx, New(opts, tools, log), cfg)
}

// Populate registers the shaders, programs and uniform sets of cfg.
func Populate(ctx context.Context, s *Session, cfg *config.Config) (*Session, error) {
	specs := make([]ShaderSpec, 0, len(cfg.Shaders))
	for _, sc := range cfg.Shaders {
		stage, err := sc.ShaderStage()
		if err != nil {
			return nil, err
		}
		specs = append(specs, ShaderSpec{
			Name:  sc.ShaderName(),
			Path:  cfg.Resolve(sc.Path),
			Stage: stage,
		})
	}
	if err := s.AddShaders(ctx, specs...); err != nil {
		return nil, err
	}

	for _, pc := range cfg.Programs {
		if _, err := s.AddProgram(pc.Name, pc.Shaders...); err != nil {
			return nil, err
		}
	}
	for _, uc := range cfg.UniformSets {
		if _, err := s.AddUniformSet(uc.Name, uc.Programs...); err != nil {
			return nil, fmt.Errorf("uniform set %s: %w", uc.Name, err)
		}
	}
	return s, nil
}
