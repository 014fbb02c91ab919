package codegen

import (
	"fmt"
	"strings"

	"github.com/Faultbox/glslgen/pkg/gltype"
	"github.com/Faultbox/glslgen/pkg/reflect"
)

// setter describes the generated setter of one uniform.
type setter struct {
	// Method is the setter name, e.g. "SetITime".
	Method string
	// Params is the parameter list after program, e.g. "transpose bool,
	// value mgl32.Mat4".
	Params string
	// Args forwards Params to another setter, e.g. "transpose, value".
	Args string
	// Body uploads value to location; program and the location expression
	// are in scope.
	Body    []string
	Imports []string
}

// methodName returns the exported stem of the accessors of a uniform,
// e.g. "ITime".
func methodName(u reflect.FoundUniform) string {
	return exported(u.Name)
}

// newSetter builds the setter of u. loc is a Go expression yielding the
// int32 location.
func newSetter(u reflect.FoundUniform, loc string) setter {
	t := u.Type
	hv := t.HostValueType()
	sig := t.UniformCallSignature()

	s := setter{
		Method:  "Set" + methodName(u),
		Params:  "value " + hv.GoType,
		Args:    "value",
		Imports: append([]string{importGL}, hv.Imports...),
	}
	if sig.Transpose {
		s.Params = "transpose bool, " + s.Params
		s.Args = "transpose, value"
	}

	call := func(ptr, count string) string {
		args := []string{"program", loc}
		if sig.Pointer {
			args = append(args, count)
		}
		if sig.Transpose {
			args = append(args, "transpose")
		}
		args = append(args, ptr)
		return fmt.Sprintf("gl.%s(%s)", sig.Func, strings.Join(args, ", "))
	}

	if !sig.Pointer {
		value := "value"
		if sig.FromBool {
			value = "glshader.Bool(value)"
			s.Imports = append(s.Imports, importGLShader)
		}
		s.Body = []string{call(value, "")}
		return s
	}

	count := "1"
	if t.Kind == gltype.KindArray {
		count = fmt.Sprintf("glshader.Count(len(value), %d)", t.Len)
		s.Imports = append(s.Imports, importGLShader)
		s.Body = append(s.Body, "if len(value) == 0 {", "return", "}")
	}

	lanes := t.Elem.Kind != gltype.KindAtom
	switch {
	case !sig.FromBool && t.Kind == gltype.KindArray && lanes:
		s.Body = append(s.Body, call("&value[0][0]", count))
	case !sig.FromBool:
		s.Body = append(s.Body, call("&value[0]", count))
	case t.Kind == gltype.KindArray && lanes:
		s.Imports = append(s.Imports, importGLShader)
		s.Body = append(s.Body,
			fmt.Sprintf("v := make([]int32, 0, len(value)*%d)", hv.Lanes),
			"for _, e := range value {",
			"v = append(v, glshader.Bools(e[:])...)",
			"}",
			call("&v[0]", count))
	case t.Kind == gltype.KindArray:
		s.Imports = append(s.Imports, importGLShader)
		s.Body = append(s.Body, "v := glshader.Bools(value)", call("&v[0]", count))
	default:
		s.Imports = append(s.Imports, importGLShader)
		s.Body = append(s.Body, "v := glshader.Bools(value[:])", call("&v[0]", count))
	}
	return s
}

// getters emits the Binding and Format accessors of u on recv.
func (g *generator) getters(recv string, u reflect.FoundUniform) {
	name := methodName(u)
	if u.Binding != nil {
		g.p("// %sBinding returns the binding point of %s.", name, u.Name)
		g.p("func (%s) %sBinding() uint32 {", recv, name)
		g.p("return %d", *u.Binding)
		g.p("}")
		g.p("")
	}
	if c := u.Type.Format.GoConstant(); u.Type.Kind == gltype.KindImage && c != "" {
		g.use(importGL)
		g.p("// %sFormat returns the internal format declared for %s.", name, u.Name)
		g.p("func (%s) %sFormat() uint32 {", recv, name)
		g.p("return %s", c)
		g.p("}")
		g.p("")
	}
}
