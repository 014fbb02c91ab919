package codegen

import (
	"fmt"
	"strings"

	"github.com/Faultbox/glslgen/internal/program"
)

func (g *generator) program(p *program.Program) error {
	base := exported(p.ID)
	typeName := base + "Program"
	newName := "New" + typeName
	buildName := "Build" + typeName
	for _, id := range []string{typeName, newName, buildName} {
		if err := g.declare(id, p.ID); err != nil {
			return err
		}
	}

	vars := make(map[string]bool)
	names := make([]shaderNames, len(p.Shaders))
	for i, sh := range p.Shaders {
		if _, ok := g.shaders[sh.Name]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownShader, sh.Name)
		}
		names[i] = namesOf(sh)
		if vars[names[i].Var] {
			return fmt.Errorf("%w: shader %s attached twice", ErrDuplicateIdentifier, sh.Name)
		}
		vars[names[i].Var] = true
	}
	// Shader variables become parameters and locals of the program
	// constructors, next to these names and the imported packages.
	for _, reserved := range []string{"name", "err", "p", "gl", "glshader", "fmt"} {
		if vars[reserved] {
			return fmt.Errorf("%w: shader variable %q is reserved", ErrDuplicateIdentifier, reserved)
		}
	}

	methods := make(map[string]string)
	for _, u := range p.Uniforms {
		m := methodName(u.FoundUniform)
		if prev, ok := methods[m]; ok {
			return fmt.Errorf("%w: uniforms %s and %s both map to %s", ErrDuplicateIdentifier, prev, u.Name, m)
		}
		methods[m] = u.Name
	}

	g.use(importGL)
	g.use(importGLShader)
	g.use(importFmt)

	g.p("// %s is the linked %s program.", typeName, p.ID)
	g.p("type %s struct {", typeName)
	g.p("name uint32")
	for _, i := range p.ShadersWithUniforms() {
		g.p("%s %s", names[i].Var, names[i].Uniforms)
	}
	g.p("}")
	g.p("")

	var params, args []string
	for _, n := range names {
		params = append(params, fmt.Sprintf("%s *%s", n.Var, n.Type))
		args = append(args, n.Var+".Name()")
	}
	g.p("// %s links the given shaders and resolves their uniform locations.", newName)
	g.p("// The shaders stay owned by the caller.")
	g.p("func %s(%s) (*%s, error) {", newName, strings.Join(params, ", "), typeName)
	g.p("name, err := glshader.LinkProgram(%s)", strings.Join(args, ", "))
	g.p("if err != nil {")
	g.p("return nil, fmt.Errorf(\"linking %s: %%w\", err)", p.ID)
	g.p("}")
	g.p("return &%s{", typeName)
	g.p("name: name,")
	for _, i := range p.ShadersWithUniforms() {
		g.p("%s: %s(name),", names[i].Var, names[i].NewCache)
	}
	g.p("}, nil")
	g.p("}")
	g.p("")

	g.p("// %s compiles every stage of %s and links them.", buildName, p.ID)
	g.p("func %s() (*%s, error) {", buildName, typeName)
	for _, n := range names {
		g.p("%s, err := %s()", n.Var, n.Build)
		g.p("if err != nil {")
		g.p("return nil, err")
		g.p("}")
		g.p("defer %s.Delete()", n.Var)
		g.p("")
	}
	g.p("return %s(%s)", newName, strings.Join(varsOf(names), ", "))
	g.p("}")
	g.p("")

	g.p("// Name returns the GL program name.")
	g.p("func (p *%s) Name() uint32 {", typeName)
	g.p("return p.name")
	g.p("}")
	g.p("")
	g.p("// Use makes the program current.")
	g.p("func (p *%s) Use() {", typeName)
	g.p("gl.UseProgram(p.name)")
	g.p("}")
	g.p("")
	g.p("// Delete releases the program.")
	g.p("func (p *%s) Delete() {", typeName)
	g.p("if p.name != 0 {")
	g.p("gl.DeleteProgram(p.name)")
	g.p("p.name = 0")
	g.p("}")
	g.p("}")
	g.p("")

	recv := "p *" + typeName
	for _, u := range p.Uniforms {
		owner := names[u.Shader].Var
		s := newSetter(u.FoundUniform, "")
		for _, path := range s.Imports {
			g.use(path)
		}
		g.p("// %s sets uniform %s %s.", s.Method, u.Type, u.Name)
		g.p("func (%s) %s(%s) {", recv, s.Method, s.Params)
		g.p("p.%s.%s(p.name, %s)", owner, s.Method, s.Args)
		g.p("}")
		g.p("")

		g.getters(recv, u.FoundUniform)
	}
	return nil
}

func varsOf(names []shaderNames) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n.Var
	}
	return out
}
