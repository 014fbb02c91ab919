package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/glslgen/internal/config"
	"github.com/Faultbox/glslgen/internal/logger"
	"github.com/Faultbox/glslgen/internal/session"
	"github.com/Faultbox/glslgen/internal/shader"
	"github.com/Faultbox/glslgen/pkg/reflect"
)

// reflectedShader is the reflect command's output for one file.
type reflectedShader struct {
	Path     string             `yaml:"path"`
	Uniforms []reflectedUniform `yaml:"uniforms"`
}

type reflectedUniform struct {
	Name     string  `yaml:"name"`
	Location uint32  `yaml:"location"`
	Binding  *uint32 `yaml:"binding,omitempty"`
	Type     string  `yaml:"type"`
	GoType   string  `yaml:"go_type"`
	Setter   string  `yaml:"gl_call"`
}

func cmdReflect(args []string) {
	fs := flag.NewFlagSet("reflect", flag.ExitOnError)
	format := fs.String("format", "text", "Output format: text or yaml")
	stage := fs.String("stage", "", "Stage of every file (default: from the extension)")
	cfg, _ := setup(fs, args)
	defer logger.Sync()

	if fs.NArg() < 1 {
		fatal("usage: glslgen reflect [-format text|yaml] [-stage name] <file>...")
	}

	var out []reflectedShader
	var sources []string
	for _, path := range fs.Args() {
		if strings.HasSuffix(path, ".spv") {
			uniforms, err := reflectBinary(path)
			if err != nil {
				fatal("%v", err)
			}
			out = append(out, describe(path, uniforms))
			continue
		}
		sources = append(sources, path)
	}

	if len(sources) > 0 {
		shaders, err := reflectSources(context.Background(), cfg, sources, *stage)
		if err != nil {
			fatal("%v", err)
		}
		for _, sh := range shaders {
			out = append(out, describe(sh.Path, sh.Uniforms))
		}
	}

	switch *format {
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			fatal("%v", err)
		}
		enc.Close()
	case "text":
		printReflected(os.Stdout, out)
	default:
		fatal("unknown format %q", *format)
	}
}

func reflectBinary(path string) ([]reflect.FoundUniform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	uniforms, err := reflect.New(logger.Log.Named("reflect")).ReflectBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return uniforms, nil
}

// reflectSources compiles the given files with the manifest's compiler
// settings. The manifest's own shaders are ignored.
func reflectSources(ctx context.Context, cfg *config.Config, paths []string, stageName string) ([]*shader.Shader, error) {
	adhoc := *cfg
	adhoc.Shaders = nil
	specs := make([]session.ShaderSpec, 0, len(paths))
	for _, path := range paths {
		sc := config.ShaderConfig{Path: path, Stage: stageName}
		stage, err := sc.ShaderStage()
		if err != nil {
			return nil, err
		}
		adhoc.Shaders = append(adhoc.Shaders, sc)
		specs = append(specs, session.ShaderSpec{
			// Full paths keep names unique across directories.
			Name:  filepath.ToSlash(path),
			Path:  path,
			Stage: stage,
		})
	}

	opts, err := session.OptionsFromConfig(&adhoc)
	if err != nil {
		return nil, err
	}
	// Only the reflection matters here.
	opts.Target = session.TargetSource
	adhoc.Compiler.Target = config.TargetSource

	tools, err := session.ToolchainFromConfig(&adhoc, opts.GlslVersion)
	if err != nil {
		return nil, err
	}
	s := session.New(opts, tools, logger.Log)
	if err := s.AddShaders(ctx, specs...); err != nil {
		return nil, err
	}
	return s.Shaders(), nil
}

func describe(path string, uniforms []reflect.FoundUniform) reflectedShader {
	rs := reflectedShader{Path: path, Uniforms: []reflectedUniform{}}
	for _, u := range uniforms {
		rs.Uniforms = append(rs.Uniforms, reflectedUniform{
			Name:     u.Name,
			Location: u.Location,
			Binding:  u.Binding,
			Type:     u.Type.String(),
			GoType:   u.Type.HostValueType().GoType,
			Setter:   u.Type.UniformCallSignature().Func,
		})
	}
	return rs
}

func printReflected(w io.Writer, shaders []reflectedShader) {
	for i, sh := range shaders {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d uniforms)\n", sh.Path, len(sh.Uniforms))
		for _, u := range sh.Uniforms {
			binding := ""
			if u.Binding != nil {
				binding = fmt.Sprintf(" binding=%d", *u.Binding)
			}
			fmt.Fprintf(w, "  %3d  %-24s %-12s %s%s\n", u.Location, u.Name, u.Type, u.GoType, binding)
		}
	}
}
