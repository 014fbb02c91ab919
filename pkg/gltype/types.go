// Package gltype models the value types a GLSL uniform can have.
//
// The model is a small algebra: atoms (scalars), vectors and square matrices
// form a GenericType; a uniform is either a single GenericType item, a
// fixed-length array of one, or an opaque image. Every later stage of the
// pipeline asks this package how a type is named, how many lanes it has,
// which Go type carries it and which GL entry point uploads it.
package gltype

import (
	"errors"
	"fmt"
)

// ErrUnsupportedTypeCombination is returned by the constructors when the
// inner type cannot be wrapped.
var ErrUnsupportedTypeCombination = errors.New("unsupported type combination")

// AtomType is a scalar kind.
type AtomType int

// Scalar kinds.
const (
	Int AtomType = iota
	Float
	Double
	UInt
	Bool
)

// String returns the GLSL scalar name.
func (a AtomType) String() string {
	switch a {
	case Int:
		return "int"
	case Float:
		return "float"
	case Double:
		return "double"
	case UInt:
		return "uint"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("AtomType(%d)", int(a))
	}
}

// IsFloat reports whether a is a floating point kind.
func (a AtomType) IsFloat() bool {
	return a == Float || a == Double
}

// vectorPrefix is the GLSL prefix of vector and matrix type names.
func (a AtomType) vectorPrefix() string {
	switch a {
	case Int:
		return "i"
	case Double:
		return "d"
	case UInt:
		return "u"
	case Bool:
		return "b"
	default:
		return ""
	}
}

// GenericKind discriminates GenericType.
type GenericKind int

// Generic type kinds.
const (
	KindAtom GenericKind = iota
	KindVector
	KindMatrix
)

// VectorType is a vector of 2 to 4 scalar components.
type VectorType struct {
	Base       AtomType
	Components int
}

// MatrixType is a square N x N floating point matrix.
type MatrixType struct {
	Base AtomType
	N    int
}

// GenericType is an atom, a vector or a matrix. It is comparable and may be
// used as a map key.
type GenericType struct {
	Kind GenericKind
	Base AtomType
	// Size is the vector component count or matrix dimension, 1 for atoms.
	Size int
}

// Atom wraps a scalar kind.
func Atom(a AtomType) GenericType {
	return GenericType{Kind: KindAtom, Base: a, Size: 1}
}

// Vector builds an n-component vector of inner, which must be an atom.
func Vector(inner GenericType, n int) (GenericType, error) {
	if inner.Kind != KindAtom {
		return GenericType{}, fmt.Errorf("%w: vector of %s", ErrUnsupportedTypeCombination, inner)
	}
	if n < 2 || n > 4 {
		return GenericType{}, fmt.Errorf("%w: vector of %d components", ErrUnsupportedTypeCombination, n)
	}
	return GenericType{Kind: KindVector, Base: inner.Base, Size: n}, nil
}

// Matrix builds an n x n matrix of inner, which must be a float or double
// atom.
func Matrix(inner GenericType, n int) (GenericType, error) {
	if inner.Kind != KindAtom || !inner.Base.IsFloat() {
		return GenericType{}, fmt.Errorf("%w: matrix of %s", ErrUnsupportedTypeCombination, inner)
	}
	if n < 2 || n > 4 {
		return GenericType{}, fmt.Errorf("%w: %dx%d matrix", ErrUnsupportedTypeCombination, n, n)
	}
	return GenericType{Kind: KindMatrix, Base: inner.Base, Size: n}, nil
}

// AsVector returns the vector view of g.
func (g GenericType) AsVector() (VectorType, bool) {
	if g.Kind != KindVector {
		return VectorType{}, false
	}
	return VectorType{Base: g.Base, Components: g.Size}, true
}

// AsMatrix returns the matrix view of g.
func (g GenericType) AsMatrix() (MatrixType, bool) {
	if g.Kind != KindMatrix {
		return MatrixType{}, false
	}
	return MatrixType{Base: g.Base, N: g.Size}, true
}

// ComponentCount returns the number of scalar lanes in g.
func (g GenericType) ComponentCount() int {
	switch g.Kind {
	case KindVector:
		return g.Size
	case KindMatrix:
		return g.Size * g.Size
	default:
		return 1
	}
}

// String returns the GLSL type name, e.g. "vec3" or "dmat4".
func (g GenericType) String() string {
	switch g.Kind {
	case KindVector:
		return fmt.Sprintf("%svec%d", g.Base.vectorPrefix(), g.Size)
	case KindMatrix:
		return fmt.Sprintf("%smat%d", g.Base.vectorPrefix(), g.Size)
	default:
		return g.Base.String()
	}
}

// ItemKind discriminates ItemOrArrayType.
type ItemKind int

// Uniform type kinds.
const (
	KindItem ItemKind = iota
	KindArray
	KindImage
)

// ItemOrArrayType is the full type of a uniform. It is comparable and may be
// used as a map key.
type ItemOrArrayType struct {
	Kind ItemKind
	// Elem is the item type for KindItem and KindArray.
	Elem GenericType
	// Len is the array length for KindArray.
	Len uint32
	// Format is the image format for KindImage; FormatNone selects the
	// implementation default.
	Format InternalFormat
}

// Item wraps a single GenericType.
func Item(g GenericType) ItemOrArrayType {
	return ItemOrArrayType{Kind: KindItem, Elem: g}
}

// Array builds an array of length n. The inner type must be an item;
// arrays of arrays and arrays of images are rejected.
func Array(inner ItemOrArrayType, n uint32) (ItemOrArrayType, error) {
	if inner.Kind != KindItem {
		return ItemOrArrayType{}, fmt.Errorf("%w: array of %s", ErrUnsupportedTypeCombination, inner)
	}
	if n == 0 {
		return ItemOrArrayType{}, fmt.Errorf("%w: zero-length array of %s", ErrUnsupportedTypeCombination, inner)
	}
	return ItemOrArrayType{Kind: KindArray, Elem: inner.Elem, Len: n}, nil
}

// Image builds an opaque image type.
func Image(format InternalFormat) ItemOrArrayType {
	return ItemOrArrayType{Kind: KindImage, Format: format}
}

// ComponentCount returns the number of scalar lanes uploaded for t.
// Images count as a single texture unit.
func (t ItemOrArrayType) ComponentCount() int {
	switch t.Kind {
	case KindArray:
		return t.Elem.ComponentCount() * int(t.Len)
	case KindImage:
		return 1
	default:
		return t.Elem.ComponentCount()
	}
}

// String returns the GLSL-style type name, e.g. "float[4]" or
// "image(RGBA8)".
func (t ItemOrArrayType) String() string {
	switch t.Kind {
	case KindArray:
		return fmt.Sprintf("%s[%d]", t.Elem, t.Len)
	case KindImage:
		if t.Format == FormatNone {
			return "image"
		}
		return fmt.Sprintf("image(%s)", t.Format)
	default:
		return t.Elem.String()
	}
}
