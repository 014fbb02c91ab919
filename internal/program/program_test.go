package program

import (
	"testing"

	"github.com/Faultbox/glslgen/internal/shader"
	"github.com/Faultbox/glslgen/pkg/gltype"
	"github.com/Faultbox/glslgen/pkg/reflect"
)

var (
	floatType = gltype.Item(gltype.Atom(gltype.Float))
	intType   = gltype.Item(gltype.Atom(gltype.Int))
	vec3Type  = func() gltype.ItemOrArrayType {
		v, _ := gltype.Vector(gltype.Atom(gltype.Float), 3)
		return gltype.Item(v)
	}()
)

func uniform(name string, typ gltype.ItemOrArrayType, location uint32) reflect.FoundUniform {
	return reflect.FoundUniform{
		Name:         name,
		Type:         typ,
		Location:     location,
		LocationName: reflect.LocationName(name),
	}
}

func TestAssemble_DedupByName(t *testing.T) {
	vert := &shader.Shader{Name: "toy_vert", Stage: shader.Vertex,
		Uniforms: []reflect.FoundUniform{uniform("iTime", floatType, 0)}}
	frag := &shader.Shader{Name: "toy_frag", Stage: shader.Fragment,
		Uniforms: []reflect.FoundUniform{uniform("iTime", floatType, 0), uniform("iMouse", vec3Type, 1)}}

	p := Assemble("toy", []*shader.Shader{vert, frag})

	if len(p.Uniforms) != 2 {
		t.Fatalf("expected 2 uniforms, got %d", len(p.Uniforms))
	}
	if p.Uniforms[0].Name != "iTime" || p.Uniforms[0].Shader != 0 {
		t.Errorf("expected iTime owned by the vertex stage, got %s in %d", p.Uniforms[0].Name, p.Uniforms[0].Shader)
	}
	if p.Uniforms[1].Name != "iMouse" || p.Uniforms[1].Shader != 1 {
		t.Errorf("expected iMouse owned by the fragment stage, got %s in %d", p.Uniforms[1].Name, p.Uniforms[1].Shader)
	}
	if len(p.Conflicts) != 0 {
		t.Errorf("expected no conflicts, got %v", p.Conflicts)
	}
	if len(p.Stages) != 2 || p.Stages[0] != shader.Vertex || p.Stages[1] != shader.Fragment {
		t.Errorf("expected vertex, fragment stages, got %v", p.Stages)
	}
}

// Only the fragment stage declares iResolution.
func TestAssemble_SingleStageUniform(t *testing.T) {
	vert := &shader.Shader{Name: "quad_vert", Stage: shader.Vertex}
	frag := &shader.Shader{Name: "toy_frag", Stage: shader.Fragment,
		Uniforms: []reflect.FoundUniform{uniform("iResolution", vec3Type, 0)}}

	p := Assemble("toy", []*shader.Shader{vert, frag})

	if len(p.Uniforms) != 1 {
		t.Fatalf("expected 1 uniform, got %d", len(p.Uniforms))
	}
	u := p.Uniforms[0]
	if u.Name != "iResolution" || u.Shader != 1 {
		t.Errorf("expected iResolution from the fragment stage, got %s in %d", u.Name, u.Shader)
	}
	sig := u.Type.UniformCallSignature()
	if sig.Func != "ProgramUniform3fv" || sig.Count != 1 {
		t.Errorf("expected ProgramUniform3fv with count 1, got %s with %d", sig.Func, sig.Count)
	}

	with := p.ShadersWithUniforms()
	if len(with) != 1 || with[0] != 1 {
		t.Errorf("expected only the fragment stage to have uniforms, got %v", with)
	}
}

func TestAssemble_FirstStageWinsOnConflict(t *testing.T) {
	vert := &shader.Shader{Name: "a_vert", Stage: shader.Vertex,
		Uniforms: []reflect.FoundUniform{uniform("scale", floatType, 0)}}
	frag := &shader.Shader{Name: "a_frag", Stage: shader.Fragment,
		Uniforms: []reflect.FoundUniform{uniform("scale", intType, 0)}}

	p := Assemble("a", []*shader.Shader{vert, frag})

	if len(p.Uniforms) != 1 || p.Uniforms[0].Type != floatType {
		t.Fatalf("expected a single float scale, got %v", p.Uniforms)
	}
	if len(p.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(p.Conflicts))
	}
	c := p.Conflicts[0]
	if c.Name != "scale" || c.KeptIn != "a_vert" || c.DroppedIn != "a_frag" || c.Dropped != intType {
		t.Errorf("unexpected conflict: %+v", c)
	}
}

func TestProgram_Lookup(t *testing.T) {
	frag := &shader.Shader{Name: "f", Stage: shader.Fragment,
		Uniforms: []reflect.FoundUniform{uniform("iTime", floatType, 0)}}
	p := Assemble("p", []*shader.Shader{frag})

	if _, ok := p.Uniform("iTime"); !ok {
		t.Error("expected to find iTime")
	}
	if _, ok := p.Uniform("missing"); ok {
		t.Error("expected missing uniform to be absent")
	}

	keys := p.Keys()
	if len(keys) != 1 || keys[0] != (reflect.Key{Name: "iTime", Type: floatType}) {
		t.Errorf("unexpected keys: %v", keys)
	}
}

func TestAssemble_Empty(t *testing.T) {
	p := Assemble("empty", nil)
	if len(p.Uniforms) != 0 || len(p.Stages) != 0 {
		t.Errorf("expected an empty program, got %+v", p)
	}
}
