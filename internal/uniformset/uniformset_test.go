package uniformset

import (
	"testing"

	"github.com/Faultbox/glslgen/internal/program"
	"github.com/Faultbox/glslgen/internal/shader"
	"github.com/Faultbox/glslgen/pkg/gltype"
	"github.com/Faultbox/glslgen/pkg/reflect"
)

func vec(n int) gltype.ItemOrArrayType {
	v, _ := gltype.Vector(gltype.Atom(gltype.Float), n)
	return gltype.Item(v)
}

var floatType = gltype.Item(gltype.Atom(gltype.Float))

// newProgram assembles a single-stage program from name/type pairs.
func newProgram(id string, uniforms map[string]gltype.ItemOrArrayType) *program.Program {
	sh := &shader.Shader{Name: id + "_frag", Stage: shader.Fragment}
	var location uint32
	for name, typ := range uniforms {
		sh.Uniforms = append(sh.Uniforms, reflect.FoundUniform{Name: name, Type: typ, Location: location})
		location++
	}
	return program.Assemble(id, []*shader.Shader{sh})
}

func names(s *UniformSet) []string {
	var out []string
	for _, k := range s.Uniforms {
		out = append(out, k.Name)
	}
	return out
}

func TestResolve_Intersection(t *testing.T) {
	a := newProgram("a", map[string]gltype.ItemOrArrayType{"iTime": floatType, "iResolution": vec(3)})
	b := newProgram("b", map[string]gltype.ItemOrArrayType{"iTime": floatType, "iMouse": vec(2)})

	set := Resolve("toy", []*program.Program{a, b})

	if len(set.Uniforms) != 1 || set.Uniforms[0].Name != "iTime" {
		t.Fatalf("expected only iTime, got %v", names(set))
	}
	if set.Uniforms[0].Type != floatType {
		t.Errorf("expected float iTime, got %s", set.Uniforms[0].Type)
	}
	if !set.Contains("iTime") || set.Contains("iMouse") {
		t.Error("unexpected Contains result")
	}
}

func TestResolve_TypeMismatchIsExcluded(t *testing.T) {
	a := newProgram("a", map[string]gltype.ItemOrArrayType{"color": vec(3), "iTime": floatType})
	b := newProgram("b", map[string]gltype.ItemOrArrayType{"color": vec(4), "iTime": floatType})

	set := Resolve("s", []*program.Program{a, b})

	if got := names(set); len(got) != 1 || got[0] != "iTime" {
		t.Errorf("expected only iTime, got %v", got)
	}
}

func TestResolve_Commutative(t *testing.T) {
	a := newProgram("a", map[string]gltype.ItemOrArrayType{"x": floatType, "y": floatType, "z": vec(2)})
	b := newProgram("b", map[string]gltype.ItemOrArrayType{"z": vec(2), "y": floatType, "w": floatType})
	c := newProgram("c", map[string]gltype.ItemOrArrayType{"y": floatType, "z": vec(2), "x": floatType})

	orders := [][]*program.Program{
		{a, b, c}, {a, c, b}, {b, a, c}, {b, c, a}, {c, a, b}, {c, b, a},
	}

	want := names(Resolve("s", orders[0]))
	if len(want) != 2 || want[0] != "y" || want[1] != "z" {
		t.Fatalf("expected [y z], got %v", want)
	}
	for _, order := range orders[1:] {
		got := names(Resolve("s", order))
		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Errorf("expected %v, got %v", want, got)
			}
		}
	}
}

func TestResolve_SingleProgram(t *testing.T) {
	a := newProgram("a", map[string]gltype.ItemOrArrayType{"zeta": floatType, "alpha": vec(4), "mid": floatType})

	set := Resolve("s", []*program.Program{a})

	got := names(set)
	want := []string{"alpha", "mid", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
}

func TestResolve_NoPrograms(t *testing.T) {
	set := Resolve("empty", nil)
	if set == nil {
		t.Fatal("expected a set")
	}
	if len(set.Uniforms) != 0 {
		t.Errorf("expected no uniforms, got %v", names(set))
	}
}
