package reflect

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/glslgen/pkg/gltype"
	"github.com/Faultbox/glslgen/pkg/spirv"
)

// newObservedReflector returns a reflector whose warnings can be inspected.
func newObservedReflector() (*Reflector, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return New(zap.New(core)), logs
}

func mustParse(t *testing.T, b *spirv.Builder) *spirv.Module {
	t.Helper()
	m, err := spirv.Parse(b.Words())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return m
}

// createFragmentModule mirrors:
//
//	uniform float iTime;
//	uniform sampler2D tex;
func createFragmentModule() *spirv.Builder {
	b := spirv.NewBuilder()
	f32 := b.TypeFloat(32)
	image := b.TypeImage(f32, spirv.Dim2D, spirv.ImageFormatUnknown)
	sampled := b.TypeSampledImage(image)

	// Declared in reverse location order on purpose.
	tex := b.Uniform("tex", sampled, 1)
	b.Decorate(tex, spirv.DecorationBinding, 3)
	b.Uniform("iTime", f32, 0)
	b.Function()
	return b
}

func TestReflect_FragmentScenario(t *testing.T) {
	r, logs := newObservedReflector()
	uniforms := r.Reflect(mustParse(t, createFragmentModule()))

	if len(uniforms) != 2 {
		t.Fatalf("expected 2 uniforms, got %d", len(uniforms))
	}

	iTime := uniforms[0]
	if iTime.Name != "iTime" || iTime.Type != gltype.Item(gltype.Atom(gltype.Float)) {
		t.Errorf("expected iTime float, got %s %s", iTime.Name, iTime.Type)
	}
	if iTime.Location != 0 || iTime.Binding != nil {
		t.Errorf("expected iTime at location 0 without binding, got %d/%v", iTime.Location, iTime.Binding)
	}
	if iTime.LocationName != "iTimeLocation" {
		t.Errorf("expected iTimeLocation, got %s", iTime.LocationName)
	}

	tex := uniforms[1]
	if tex.Name != "tex" || tex.Type != gltype.Image(gltype.FormatNone) {
		t.Errorf("expected tex image with no format, got %s %s", tex.Name, tex.Type)
	}
	if tex.Binding == nil || *tex.Binding != 3 {
		t.Errorf("expected tex binding 3, got %v", tex.Binding)
	}

	if logs.Len() != 0 {
		t.Errorf("expected no warnings, got %d", logs.Len())
	}
}

func TestReflect_AllTypes(t *testing.T) {
	b := spirv.NewBuilder()
	i32 := b.TypeInt(32, true)
	u32 := b.TypeInt(32, false)
	f32 := b.TypeFloat(32)
	f64 := b.TypeFloat(64)
	boolean := b.TypeBool()

	vec3 := b.TypeVector(f32, 3)
	ivec2 := b.TypeVector(i32, 2)
	uvec4 := b.TypeVector(u32, 4)
	bvec2 := b.TypeVector(boolean, 2)
	dvec4 := b.TypeVector(f64, 4)
	mat4 := b.TypeMatrix(b.TypeVector(f32, 4), 4)
	dmat2 := b.TypeMatrix(b.TypeVector(f64, 2), 2)
	four := b.Constant(u32, 4)
	floats := b.TypeArray(f32, four)
	storage := b.TypeImage(f32, spirv.Dim2D, spirv.ImageFormatRgba8)

	decls := []struct {
		name string
		typ  uint32
	}{
		{"testInt", i32}, {"testUInt", u32}, {"testFloat", f32}, {"testDouble", f64},
		{"testBool", boolean}, {"testFloatVec3", vec3}, {"testIntVec2", ivec2},
		{"testUIntVec4", uvec4}, {"testBoolVec2", bvec2}, {"testDoubleVec4", dvec4},
		{"testFloatMat4", mat4}, {"testDoubleMat2", dmat2}, {"testFloatArray", floats},
		{"testImage", storage},
	}
	for i, d := range decls {
		b.Uniform(d.name, d.typ, uint32(i))
	}

	r, logs := newObservedReflector()
	uniforms := r.Reflect(mustParse(t, b))

	if len(uniforms) != len(decls) {
		t.Fatalf("expected %d uniforms, got %d", len(decls), len(uniforms))
	}
	if logs.Len() != 0 {
		t.Errorf("expected no warnings, got %v", logs.All())
	}

	want := []string{
		"int", "uint", "float", "double", "bool", "vec3", "ivec2", "uvec4", "bvec2",
		"dvec4", "mat4", "dmat2", "float[4]", "image(RGBA8)",
	}
	for i, u := range uniforms {
		if u.Name != decls[i].name {
			t.Errorf("uniform %d: expected %s, got %s", i, decls[i].name, u.Name)
		}
		if u.Type.String() != want[i] {
			t.Errorf("%s: expected type %s, got %s", u.Name, want[i], u.Type)
		}
		if u.Location != uint32(i) {
			t.Errorf("%s: expected location %d, got %d", u.Name, i, u.Location)
		}
	}
}

func TestReflect_RejectsRectangularMatrix(t *testing.T) {
	b := spirv.NewBuilder()
	f32 := b.TypeFloat(32)
	vec3 := b.TypeVector(f32, 3)
	mat2x3 := b.TypeMatrix(vec3, 2)
	mat3 := b.TypeMatrix(vec3, 3)
	b.Uniform("testFloatMat2x3", mat2x3, 0)
	b.Uniform("testFloatMat3", mat3, 1)

	r, logs := newObservedReflector()
	uniforms := r.Reflect(mustParse(t, b))

	if len(uniforms) != 1 || uniforms[0].Name != "testFloatMat3" {
		t.Fatalf("expected only testFloatMat3, got %v", uniforms)
	}

	warnings := logs.FilterField(zap.String("uniform", "testFloatMat2x3")).All()
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning for the rectangular matrix, got %d", len(warnings))
	}
	if reason, _ := warnings[0].ContextMap()["reason"].(string); reason == "" {
		t.Error("expected a reason on the warning")
	}
}

func TestReflect_DropsUnsupported(t *testing.T) {
	b := spirv.NewBuilder()
	f32 := b.TypeFloat(32)
	f16 := b.TypeFloat(16)
	i64 := b.TypeInt(64, true)
	half3 := b.TypeVector(f16, 3)
	imageType := b.TypeImage(f32, spirv.Dim2D, spirv.ImageFormatUnknown)
	two := b.Constant(b.TypeInt(32, false), 2)
	images := b.TypeArray(b.TypeSampledImage(imageType), two)
	specLen := b.ID() // never declared as a constant
	dynamic := b.TypeArray(f32, specLen)

	b.Uniform("half3", half3, 0)
	b.Uniform("bigInt", i64, 1)
	b.Uniform("samplers", images, 2)
	b.Uniform("dynamic", dynamic, 3)
	b.Uniform("ok", f32, 4)

	// An unnamed uniform.
	ptr := b.TypePointer(spirv.StorageClassUniformConstant, f32)
	b.Variable(ptr, spirv.StorageClassUniformConstant)

	r, logs := newObservedReflector()
	uniforms := r.Reflect(mustParse(t, b))

	if len(uniforms) != 1 || uniforms[0].Name != "ok" {
		t.Fatalf("expected only 'ok', got %v", uniforms)
	}
	if logs.Len() != 5 {
		t.Errorf("expected 5 warnings, got %d: %v", logs.Len(), logs.All())
	}
}

func TestReflect_IgnoresOtherStorageClasses(t *testing.T) {
	b := spirv.NewBuilder()
	f32 := b.TypeFloat(32)
	vec4 := b.TypeVector(f32, 4)

	out := b.Variable(b.TypePointer(spirv.StorageClassOutput, vec4), spirv.StorageClassOutput)
	b.Name(out, "fragColor")
	in := b.Variable(b.TypePointer(spirv.StorageClassInput, vec4), spirv.StorageClassInput)
	b.Name(in, "position")
	b.Uniform("iTime", f32, 0)

	r, _ := newObservedReflector()
	uniforms := r.Reflect(mustParse(t, b))

	if len(uniforms) != 1 || uniforms[0].Name != "iTime" {
		t.Errorf("expected only iTime, got %v", uniforms)
	}
}

func TestReflect_SampledImageInheritsFormat(t *testing.T) {
	b := spirv.NewBuilder()
	f32 := b.TypeFloat(32)
	image := b.TypeImage(f32, spirv.Dim2D, spirv.ImageFormatR32f)
	b.Uniform("heights", b.TypeSampledImage(image), 0)

	r, _ := newObservedReflector()
	uniforms := r.Reflect(mustParse(t, b))

	if len(uniforms) != 1 || uniforms[0].Type.Format != gltype.FormatR32F {
		t.Errorf("expected R32F sampled image, got %v", uniforms)
	}
}

func TestReflect_Idempotent(t *testing.T) {
	r, _ := newObservedReflector()
	m := mustParse(t, createFragmentModule())

	first := r.Reflect(m)
	second := r.Reflect(m)

	if len(first) != len(second) {
		t.Fatalf("expected same length, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Key() != second[i].Key() || first[i].Location != second[i].Location ||
			first[i].LocationName != second[i].LocationName {
			t.Errorf("uniform %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestReflect_SortsByLocationThenName(t *testing.T) {
	b := spirv.NewBuilder()
	f32 := b.TypeFloat(32)
	b.Uniform("zeta", f32, 2)
	b.Uniform("beta", f32, 1)
	b.Uniform("alpha", f32, 1)
	b.Uniform("omega", f32, 0)

	r, _ := newObservedReflector()
	uniforms := r.Reflect(mustParse(t, b))

	want := []string{"omega", "alpha", "beta", "zeta"}
	for i, u := range uniforms {
		if u.Name != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], u.Name)
		}
	}
}

func TestReflect_LocationNameCollisions(t *testing.T) {
	b := spirv.NewBuilder()
	f32 := b.TypeFloat(32)
	b.Uniform("light_color", f32, 0)
	b.Uniform("lightColor", f32, 1)
	b.Uniform("LightColor", f32, 2)

	r, _ := newObservedReflector()
	uniforms := r.Reflect(mustParse(t, b))

	want := []string{"lightColorLocation", "lightColorLocation2", "lightColorLocation3"}
	for i, u := range uniforms {
		if u.LocationName != want[i] {
			t.Errorf("%s: expected %s, got %s", u.Name, want[i], u.LocationName)
		}
	}
}

func TestReflectWords_ParseError(t *testing.T) {
	r := New(nil)
	_, err := r.ReflectWords([]uint32{0xDEADBEEF, 0, 0, 0, 0})
	if !errors.Is(err, spirv.ErrInvalidMagic) {
		t.Errorf("expected ErrInvalidMagic, got %v", err)
	}

	uniforms, err := r.ReflectBytes(createFragmentModule().Bytes())
	if err != nil {
		t.Fatalf("ReflectBytes failed: %v", err)
	}
	if len(uniforms) != 2 {
		t.Errorf("expected 2 uniforms, got %d", len(uniforms))
	}
}

func TestLocationName(t *testing.T) {
	tests := map[string]string{
		"iTime":       "iTimeLocation",
		"iResolution": "iResolutionLocation",
		"u_mvp":       "uMvpLocation",
		"tex":         "texLocation",
	}
	for in, want := range tests {
		if got := LocationName(in); got != want {
			t.Errorf("LocationName(%q): expected %s, got %s", in, want, got)
		}
	}
}
