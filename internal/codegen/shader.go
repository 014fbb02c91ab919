package codegen

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/Faultbox/glslgen/internal/shader"
)

// shaderNames are the identifiers generated for one shader.
type shaderNames struct {
	Type     string // ToyFragShader
	Build    string // BuildToyFragShader
	Uniforms string // ToyFragUniforms
	NewCache string // NewToyFragUniforms
	Source   string // toyFragSource
	Var      string // toyFrag
}

func namesOf(sh *shader.Shader) shaderNames {
	base := exported(sh.Name)
	return shaderNames{
		Type:     base + "Shader",
		Build:    "Build" + base + "Shader",
		Uniforms: base + "Uniforms",
		NewCache: "New" + base + "Uniforms",
		Source:   local(sh.Name) + "Source",
		Var:      local(sh.Name),
	}
}

func (g *generator) shader(sh *shader.Shader) error {
	n := namesOf(sh)
	for _, id := range []string{n.Type, n.Build, n.Source} {
		if err := g.declare(id, sh.Name); err != nil {
			return err
		}
	}

	g.use(importGL)
	g.use(importGLShader)

	origin := g.relative(sh.Path)
	if origin == "" {
		origin = sh.Name
	}
	g.p("// %s is the GLSL source of %s.", n.Source, origin)
	g.p("const %s = %s", n.Source, quoteSource(sh.Source))
	g.p("")

	g.p("// %s is a compiled %s shader.", n.Type, sh.Stage)
	g.p("type %s struct {", n.Type)
	g.p("name uint32")
	g.p("}")
	g.p("")

	g.p("// %s compiles the embedded source of %s.", n.Build, sh.Name)
	g.p("func %s() (*%s, error) {", n.Build, n.Type)
	g.p("name, err := glshader.CompileShader(%s, %s, %q)", sh.Stage.GLConstant(), n.Source, sh.Name)
	g.p("if err != nil {")
	g.p("return nil, err")
	g.p("}")
	g.p("return &%s{name: name}, nil", n.Type)
	g.p("}")
	g.p("")

	g.p("// Name returns the GL shader name.")
	g.p("func (s *%s) Name() uint32 {", n.Type)
	g.p("return s.name")
	g.p("}")
	g.p("")
	g.p("// Kind returns the GL shader type.")
	g.p("func (s *%s) Kind() uint32 {", n.Type)
	g.p("return %s", sh.Stage.GLConstant())
	g.p("}")
	g.p("")
	g.p("// Delete releases the shader.")
	g.p("func (s *%s) Delete() {", n.Type)
	g.p("if s.name != 0 {")
	g.p("gl.DeleteShader(s.name)")
	g.p("s.name = 0")
	g.p("}")
	g.p("}")
	g.p("")

	if !sh.HasUniforms() {
		return nil
	}
	return g.uniformCache(sh, n)
}

// uniformCache emits the location cache of a shader and its setters.
func (g *generator) uniformCache(sh *shader.Shader, n shaderNames) error {
	for _, id := range []string{n.Uniforms, n.NewCache} {
		if err := g.declare(id, sh.Name); err != nil {
			return err
		}
	}
	methods := make(map[string]string)
	for _, u := range sh.Uniforms {
		m := methodName(u)
		if prev, ok := methods[m]; ok {
			return fmt.Errorf("%w: uniforms %s and %s both map to %s", ErrDuplicateIdentifier, prev, u.Name, m)
		}
		methods[m] = u.Name
		if g.in.Locations == LocationsReflected {
			if err := checkLocation(sh.Source, u.Name, u.Location); err != nil {
				return err
			}
		}
	}

	g.p("// %s holds the uniform locations of %s in a linked program.", n.Uniforms, sh.Name)
	g.p("type %s struct {", n.Uniforms)
	for _, u := range sh.Uniforms {
		g.p("%s glshader.Location // %s %s", u.LocationName, u.Type, u.Name)
	}
	g.p("}")
	g.p("")

	g.p("// %s resolves the locations of %s in program.", n.NewCache, sh.Name)
	g.p("func %s(program uint32) %s {", n.NewCache, n.Uniforms)
	g.p("return %s{", n.Uniforms)
	for _, u := range sh.Uniforms {
		if g.in.Locations == LocationsReflected {
			g.p("%s: glshader.Fixed(%d),", u.LocationName, u.Location)
		} else {
			g.p("%s: glshader.Lookup(program, %q),", u.LocationName, u.Name)
		}
	}
	g.p("}")
	g.p("}")
	g.p("")

	recv := "u *" + n.Uniforms
	for _, u := range sh.Uniforms {
		s := newSetter(u, "u."+u.LocationName+".Value()")
		for _, path := range s.Imports {
			g.use(path)
		}
		g.p("// %s sets uniform %s %s. It does nothing when the driver removed %s.", s.Method, u.Type, u.Name, u.Name)
		g.p("func (%s) %s(program uint32, %s) {", recv, s.Method, s.Params)
		g.p("if !u.%s.Valid() {", u.LocationName)
		g.p("return")
		g.p("}")
		for _, line := range s.Body {
			g.p("%s", line)
		}
		g.p("}")
		g.p("")

		g.getters(recv, u)
	}
	return nil
}

var (
	uniformDecl  = regexp.MustCompile(`layout\s*\(([^)]*)\)\s*uniform\s+(?:(?:lowp|mediump|highp)\s+)?\w+\s+(\w+)`)
	locationQual = regexp.MustCompile(`\blocation\s*=\s*(\d+)`)
)

// checkLocation makes sure src pins uniform name to loc with a layout
// qualifier, so a fixed location in generated code matches the driver.
func checkLocation(src, name string, loc uint32) error {
	for _, m := range uniformDecl.FindAllStringSubmatch(src, -1) {
		if m[2] != name {
			continue
		}
		q := locationQual.FindStringSubmatch(m[1])
		if q == nil {
			break
		}
		n, err := strconv.ParseUint(q[1], 10, 32)
		if err != nil || uint32(n) != loc {
			return fmt.Errorf("%w: %s is declared at location %s, reflected %d", ErrImplicitLocation, name, q[1], loc)
		}
		return nil
	}
	return fmt.Errorf("%w: %s has no layout(location = %d)", ErrImplicitLocation, name, loc)
}
