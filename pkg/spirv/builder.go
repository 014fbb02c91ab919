package spirv

import "encoding/binary"

const opReturn Op = 253

// Builder assembles SPIR-V modules word by word.
//
// Instructions are collected per section and written out in logical layout
// order, so callers may declare names and decorations after the ids they
// refer to. Builder is meant for fixtures and tooling; it performs no
// validation.
type Builder struct {
	bound       uint32
	names       []uint32
	annotations []uint32
	types       []uint32
	functions   []uint32
}

// NewBuilder creates an empty module builder.
func NewBuilder() *Builder {
	return &Builder{bound: 1}
}

// ID allocates a fresh result id.
func (b *Builder) ID() uint32 {
	id := b.bound
	b.bound++
	return id
}

func emit(dst *[]uint32, op Op, operands ...uint32) {
	*dst = append(*dst, uint32(len(operands)+1)<<16|uint32(op))
	*dst = append(*dst, operands...)
}

// Name attaches a debug name to id.
func (b *Builder) Name(id uint32, name string) {
	emit(&b.names, OpName, append([]uint32{id}, EncodeString(name)...)...)
}

// MemberName attaches a debug name to a struct member.
func (b *Builder) MemberName(id, member uint32, name string) {
	emit(&b.names, OpMemberName, append([]uint32{id, member}, EncodeString(name)...)...)
}

// Decorate adds a decoration to id.
func (b *Builder) Decorate(id uint32, dec Decoration, args ...uint32) {
	emit(&b.annotations, OpDecorate, append([]uint32{id, uint32(dec)}, args...)...)
}

// TypeVoid declares the void type.
func (b *Builder) TypeVoid() uint32 {
	id := b.ID()
	emit(&b.types, OpTypeVoid, id)
	return id
}

// TypeBool declares the boolean type.
func (b *Builder) TypeBool() uint32 {
	id := b.ID()
	emit(&b.types, OpTypeBool, id)
	return id
}

// TypeInt declares an integer type.
func (b *Builder) TypeInt(width uint32, signed bool) uint32 {
	id := b.ID()
	var signedness uint32
	if signed {
		signedness = 1
	}
	emit(&b.types, OpTypeInt, id, width, signedness)
	return id
}

// TypeFloat declares a floating point type.
func (b *Builder) TypeFloat(width uint32) uint32 {
	id := b.ID()
	emit(&b.types, OpTypeFloat, id, width)
	return id
}

// TypeVector declares a vector of count components.
func (b *Builder) TypeVector(component, count uint32) uint32 {
	id := b.ID()
	emit(&b.types, OpTypeVector, id, component, count)
	return id
}

// TypeMatrix declares a matrix of count columns.
func (b *Builder) TypeMatrix(column, count uint32) uint32 {
	id := b.ID()
	emit(&b.types, OpTypeMatrix, id, column, count)
	return id
}

// TypeImage declares a non-arrayed, single-sampled image type.
func (b *Builder) TypeImage(sampledType uint32, dim Dim, format ImageFormat) uint32 {
	id := b.ID()
	emit(&b.types, OpTypeImage, id, sampledType, uint32(dim), 0, 0, 0, 1, uint32(format))
	return id
}

// TypeSampledImage declares a combined image sampler type.
func (b *Builder) TypeSampledImage(image uint32) uint32 {
	id := b.ID()
	emit(&b.types, OpTypeSampledImage, id, image)
	return id
}

// TypeArray declares an array whose length is the constant lengthID.
func (b *Builder) TypeArray(element, lengthID uint32) uint32 {
	id := b.ID()
	emit(&b.types, OpTypeArray, id, element, lengthID)
	return id
}

// TypePointer declares a pointer type.
func (b *Builder) TypePointer(class StorageClass, pointee uint32) uint32 {
	id := b.ID()
	emit(&b.types, OpTypePointer, id, uint32(class), pointee)
	return id
}

// Constant declares a 32-bit scalar constant.
func (b *Builder) Constant(typ, value uint32) uint32 {
	id := b.ID()
	emit(&b.types, OpConstant, typ, id, value)
	return id
}

// Variable declares a global variable.
func (b *Builder) Variable(pointerType uint32, class StorageClass) uint32 {
	id := b.ID()
	emit(&b.types, OpVariable, pointerType, id, uint32(class))
	return id
}

// Uniform declares a named UniformConstant variable of type pointee at the
// given location.
func (b *Builder) Uniform(name string, pointee, location uint32) uint32 {
	ptr := b.TypePointer(StorageClassUniformConstant, pointee)
	v := b.Variable(ptr, StorageClassUniformConstant)
	b.Name(v, name)
	b.Decorate(v, DecorationLocation, location)
	return v
}

// Function declares an empty void function and returns its id.
func (b *Builder) Function() uint32 {
	void := b.TypeVoid()
	fnType := b.ID()
	emit(&b.types, OpTypeFunction, fnType, void)

	fn := b.ID()
	emit(&b.functions, OpFunction, void, fn, 0, fnType)
	emit(&b.functions, OpLabel, b.ID())
	emit(&b.functions, opReturn)
	emit(&b.functions, OpFunctionEnd)
	return fn
}

// Words returns the assembled module.
func (b *Builder) Words() []uint32 {
	words := []uint32{MagicNumber, 0x00010000, 0, b.bound, 0}
	// OpCapability Shader, OpMemoryModel Logical GLSL450
	emit(&words, OpCapability, 1)
	emit(&words, OpMemoryModel, 0, 1)
	words = append(words, b.names...)
	words = append(words, b.annotations...)
	words = append(words, b.types...)
	words = append(words, b.functions...)
	return words
}

// Bytes returns the assembled module in little endian byte order.
func (b *Builder) Bytes() []byte {
	words := b.Words()
	out := make([]byte, 0, len(words)*4)
	for _, w := range words {
		out = binary.LittleEndian.AppendUint32(out, w)
	}
	return out
}
