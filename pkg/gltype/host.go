package gltype

import "fmt"

// Import paths referenced by HostValue.
const (
	ImportMgl32 = "github.com/go-gl/mathgl/mgl32"
	ImportMgl64 = "github.com/go-gl/mathgl/mgl64"
)

// HostValue describes the Go type a generated setter accepts.
type HostValue struct {
	// GoType is the parameter type, e.g. "mgl32.Vec3" or "[]float32".
	GoType string
	// Elem is the per-element type; equal to GoType unless Slice is set.
	Elem string
	// Lanes is the number of scalar lanes in one element.
	Lanes int
	// Slice is set for arrays.
	Slice bool
	// Imports lists the packages GoType refers to.
	Imports []string
}

// CallSignature describes the go-gl entry point that uploads a value.
type CallSignature struct {
	// Func is the go-gl function name, e.g. "ProgramUniform3fv".
	Func string
	// Pointer is set for the count + pointer variants; scalar atoms are
	// passed by value.
	Pointer bool
	// Count is the number of elements uploaded: 1 for items, the declared
	// length for arrays.
	Count int
	// Transpose is set for matrix entry points, which take a transpose flag
	// before the pointer.
	Transpose bool
	// Scalar is the Go type of a single uploaded lane.
	Scalar string
	// FromBool is set when bool values are widened to int32 before upload.
	FromBool bool
}

// ExtraArgs lists the positional parameters the entry point needs besides
// program, location and the value.
func (c CallSignature) ExtraArgs() []string {
	var args []string
	if c.Pointer {
		args = append(args, "count")
	}
	if c.Transpose {
		args = append(args, "transpose")
	}
	return args
}

func (a AtomType) goScalar() string {
	switch a {
	case Float:
		return "float32"
	case Double:
		return "float64"
	case UInt:
		return "uint32"
	case Bool:
		return "bool"
	default:
		return "int32"
	}
}

// uploadScalar is the lane type GL receives; bools travel as int32.
func (a AtomType) uploadScalar() string {
	if a == Bool {
		return "int32"
	}
	return a.goScalar()
}

// callSuffix is the type suffix of the glUniform family.
func (a AtomType) callSuffix() string {
	switch a {
	case Float:
		return "f"
	case Double:
		return "d"
	case UInt:
		return "ui"
	default:
		return "i"
	}
}

// HostValueType returns the Go representation of one g value.
func (g GenericType) HostValueType() HostValue {
	var hv HostValue
	switch g.Kind {
	case KindVector:
		switch g.Base {
		case Float:
			hv.GoType = fmt.Sprintf("mgl32.Vec%d", g.Size)
			hv.Imports = []string{ImportMgl32}
		case Double:
			hv.GoType = fmt.Sprintf("mgl64.Vec%d", g.Size)
			hv.Imports = []string{ImportMgl64}
		default:
			hv.GoType = fmt.Sprintf("[%d]%s", g.Size, g.Base.goScalar())
		}
	case KindMatrix:
		if g.Base == Double {
			hv.GoType = fmt.Sprintf("mgl64.Mat%d", g.Size)
			hv.Imports = []string{ImportMgl64}
		} else {
			hv.GoType = fmt.Sprintf("mgl32.Mat%d", g.Size)
			hv.Imports = []string{ImportMgl32}
		}
	default:
		hv.GoType = g.Base.goScalar()
	}
	hv.Elem = hv.GoType
	hv.Lanes = g.ComponentCount()
	return hv
}

// HostValueType returns the Go representation of a t value. Images are
// set through their texture unit.
func (t ItemOrArrayType) HostValueType() HostValue {
	switch t.Kind {
	case KindArray:
		hv := t.Elem.HostValueType()
		hv.GoType = "[]" + hv.Elem
		hv.Slice = true
		return hv
	case KindImage:
		return HostValue{GoType: "int32", Elem: "int32", Lanes: 1}
	default:
		return t.Elem.HostValueType()
	}
}

// UniformCallSignature selects the go-gl ProgramUniform entry point for t.
func (t ItemOrArrayType) UniformCallSignature() CallSignature {
	if t.Kind == KindImage {
		return CallSignature{Func: "ProgramUniform1i", Count: 1, Scalar: "int32"}
	}

	g := t.Elem
	sig := CallSignature{
		Count:    1,
		Scalar:   g.Base.uploadScalar(),
		FromBool: g.Base == Bool,
	}
	if t.Kind == KindArray {
		sig.Count = int(t.Len)
	}

	switch g.Kind {
	case KindMatrix:
		sig.Func = fmt.Sprintf("ProgramUniformMatrix%d%sv", g.Size, g.Base.callSuffix())
		sig.Pointer = true
		sig.Transpose = true
	case KindVector:
		sig.Func = fmt.Sprintf("ProgramUniform%d%sv", g.Size, g.Base.callSuffix())
		sig.Pointer = true
	default:
		sig.Func = fmt.Sprintf("ProgramUniform1%s", g.Base.callSuffix())
		if t.Kind == KindArray {
			sig.Func += "v"
			sig.Pointer = true
		}
	}
	return sig
}
