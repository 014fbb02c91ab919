package codegen

import (
	"fmt"

	"github.com/Faultbox/glslgen/internal/uniformset"
	"github.com/Faultbox/glslgen/pkg/gltype"
	"github.com/Faultbox/glslgen/pkg/reflect"
)

func (g *generator) uniformSet(set *uniformset.UniformSet) error {
	name := exported(set.ID) + "UniformSet"
	if err := g.declare(name, set.ID); err != nil {
		return err
	}
	for _, p := range set.Programs {
		if !g.programs[p.ID] {
			return fmt.Errorf("%w: %s is not generated", ErrUnknownProgram, p.ID)
		}
	}

	g.p("// %s is implemented by every program that exposes the uniforms", name)
	g.p("// shared by the %s set.", set.ID)
	g.p("type %s interface {", name)
	g.p("Name() uint32")
	g.p("Use()")
	for _, key := range set.Uniforms {
		u := reflect.FoundUniform{Name: key.Name, Type: key.Type}
		s := newSetter(u, "")
		for _, path := range s.Imports {
			g.use(path)
		}
		g.p("%s(%s)", s.Method, s.Params)
		if sharedBinding(set, key.Name) {
			g.p("%sBinding() uint32", methodName(u))
		}
		if key.Type.Kind == gltype.KindImage && key.Type.Format.GoConstant() != "" {
			g.p("%sFormat() uint32", methodName(u))
		}
	}
	g.p("}")
	g.p("")

	if len(set.Programs) == 0 {
		return nil
	}
	g.p("var (")
	for _, p := range set.Programs {
		g.p("_ %s = (*%s)(nil)", name, exported(p.ID)+"Program")
	}
	g.p(")")
	g.p("")
	return nil
}

// sharedBinding reports whether every member program has a binding for the
// named uniform, so that its getter is part of the interface.
func sharedBinding(set *uniformset.UniformSet, name string) bool {
	if len(set.Programs) == 0 {
		return false
	}
	for _, p := range set.Programs {
		u, ok := p.Uniform(name)
		if !ok || u.Binding == nil {
			return false
		}
	}
	return true
}
