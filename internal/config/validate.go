package config

import (
	"errors"
	"fmt"
	"go/token"

	"github.com/Faultbox/glslgen/internal/compiler"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// Validate checks the manifest for consistency: known enum values, unique
// names and references that resolve.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if !token.IsIdentifier(c.Output.Package) {
		fail("output.package %q is not a Go identifier", c.Output.Package)
	}
	if c.Output.Path == "" {
		fail("output.path is empty")
	}

	switch c.Compiler.Target {
	case TargetSource, TargetGLSL:
	default:
		fail("compiler.target %q, expected %q or %q", c.Compiler.Target, TargetSource, TargetGLSL)
	}
	if c.Compiler.Target == TargetGLSL {
		v, err := compiler.ParseGlslVersion(c.Compiler.GlslVersion)
		if err != nil {
			fail("compiler.glsl_version: %v", err)
		} else if c.Codegen.Locations == LocationsReflected && !v.ExplicitUniformLocations() {
			fail("codegen.locations %q needs glsl_version 430 or later, got %s", LocationsReflected, v)
		}
	}
	if c.Compiler.Workers < 0 {
		fail("compiler.workers must not be negative")
	}

	switch c.Codegen.Locations {
	case LocationsQuery, LocationsReflected:
	default:
		fail("codegen.locations %q, expected %q or %q", c.Codegen.Locations, LocationsQuery, LocationsReflected)
	}

	shaders := make(map[string]bool)
	for i, s := range c.Shaders {
		if s.Path == "" {
			fail("shaders[%d]: path is empty", i)
			continue
		}
		name := s.ShaderName()
		if shaders[name] {
			fail("shader %q declared twice", name)
		}
		shaders[name] = true
		if _, err := s.ShaderStage(); err != nil {
			fail("shader %q: %v", name, err)
		}
	}

	programs := make(map[string]bool)
	for i, p := range c.Programs {
		if p.Name == "" {
			fail("programs[%d]: name is empty", i)
			continue
		}
		if programs[p.Name] {
			fail("program %q declared twice", p.Name)
		}
		programs[p.Name] = true
		if len(p.Shaders) == 0 {
			fail("program %q has no shaders", p.Name)
		}
		for _, s := range p.Shaders {
			if !shaders[s] {
				fail("program %q: unknown shader %q", p.Name, s)
			}
		}
	}

	sets := make(map[string]bool)
	for i, set := range c.UniformSets {
		if set.Name == "" {
			fail("uniform_sets[%d]: name is empty", i)
			continue
		}
		if sets[set.Name] {
			fail("uniform set %q declared twice", set.Name)
		}
		sets[set.Name] = true
		for _, p := range set.Programs {
			if !programs[p] {
				fail("uniform set %q: unknown program %q", set.Name, p)
			}
		}
	}

	return errors.Join(errs...)
}
