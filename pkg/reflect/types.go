package reflect

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/glslgen/pkg/gltype"
	"github.com/Faultbox/glslgen/pkg/spirv"
)

// typeTable is the result of the single pass over the types and global
// values section.
type typeTable struct {
	constants map[uint32]uint32
	generics  map[uint32]gltype.GenericType
	items     map[uint32]gltype.ItemOrArrayType
	pointers  map[uint32]uint32
	// failures records why a type id could not be resolved.
	failures map[uint32]string
}

// resolveTypes walks the types section in module order. SPIR-V declares
// types before use, so every dependency is already resolved (or known to
// have failed) when it is referenced.
func (r *Reflector) resolveTypes(m *spirv.Module) *typeTable {
	tt := &typeTable{
		constants: make(map[uint32]uint32),
		generics:  make(map[uint32]gltype.GenericType),
		items:     make(map[uint32]gltype.ItemOrArrayType),
		pointers:  make(map[uint32]uint32),
		failures:  make(map[uint32]string),
	}

	for _, inst := range m.TypesGlobalValues {
		id := inst.ResultID
		var err error

		switch inst.Opcode {
		case spirv.OpConstant:
			if len(inst.Operands) > 0 {
				tt.constants[id] = inst.Operands[0]
			}
		case spirv.OpTypeBool:
			tt.setGeneric(id, gltype.Atom(gltype.Bool))
		case spirv.OpTypeInt:
			err = tt.resolveInt(inst)
		case spirv.OpTypeFloat:
			err = tt.resolveFloat(inst)
		case spirv.OpTypeVector:
			err = tt.resolveVector(inst)
		case spirv.OpTypeMatrix:
			err = tt.resolveMatrix(inst)
		case spirv.OpTypeArray:
			err = tt.resolveArray(inst)
		case spirv.OpTypeImage:
			err = tt.resolveImage(inst)
		case spirv.OpTypeSampledImage:
			err = tt.resolveSampledImage(inst)
		case spirv.OpTypePointer:
			if len(inst.Operands) >= 2 {
				tt.pointers[id] = inst.Operands[1]
			}
		}

		if err != nil {
			tt.failures[id] = err.Error()
			r.log.Debug("Type not reflected",
				zap.Uint32("type_id", id),
				zap.Stringer("op", inst.Opcode),
				zap.Error(err))
		}
	}
	return tt
}

func (tt *typeTable) setGeneric(id uint32, g gltype.GenericType) {
	tt.generics[id] = g
	tt.items[id] = gltype.Item(g)
}

// operands returns the first n operands or an error when fewer exist.
func operands(inst spirv.Instruction, n int) ([]uint32, error) {
	if len(inst.Operands) < n {
		return nil, fmt.Errorf("%s has %d operands, expected %d", inst.Opcode, len(inst.Operands), n)
	}
	return inst.Operands[:n], nil
}

// dependency looks up a previously resolved generic type.
func (tt *typeTable) dependency(id uint32) (gltype.GenericType, error) {
	g, ok := tt.generics[id]
	if !ok {
		return g, tt.missing(id)
	}
	return g, nil
}

func (tt *typeTable) missing(id uint32) error {
	if reason, failed := tt.failures[id]; failed {
		return fmt.Errorf("depends on unsupported type %d: %s", id, reason)
	}
	return fmt.Errorf("depends on unknown type %d", id)
}

func (tt *typeTable) resolveInt(inst spirv.Instruction) error {
	ops, err := operands(inst, 2)
	if err != nil {
		return err
	}
	if ops[0] != 32 {
		return fmt.Errorf("unsupported integer width %d", ops[0])
	}
	if ops[1] == 0 {
		tt.setGeneric(inst.ResultID, gltype.Atom(gltype.UInt))
	} else {
		tt.setGeneric(inst.ResultID, gltype.Atom(gltype.Int))
	}
	return nil
}

func (tt *typeTable) resolveFloat(inst spirv.Instruction) error {
	ops, err := operands(inst, 1)
	if err != nil {
		return err
	}
	switch ops[0] {
	case 32:
		tt.setGeneric(inst.ResultID, gltype.Atom(gltype.Float))
	case 64:
		tt.setGeneric(inst.ResultID, gltype.Atom(gltype.Double))
	default:
		return fmt.Errorf("unsupported float width %d", ops[0])
	}
	return nil
}

func (tt *typeTable) resolveVector(inst spirv.Instruction) error {
	ops, err := operands(inst, 2)
	if err != nil {
		return err
	}
	component, err := tt.dependency(ops[0])
	if err != nil {
		return err
	}
	v, err := gltype.Vector(component, int(ops[1]))
	if err != nil {
		return err
	}
	tt.setGeneric(inst.ResultID, v)
	return nil
}

func (tt *typeTable) resolveMatrix(inst spirv.Instruction) error {
	ops, err := operands(inst, 2)
	if err != nil {
		return err
	}
	column, err := tt.dependency(ops[0])
	if err != nil {
		return err
	}
	col, ok := column.AsVector()
	if !ok {
		return fmt.Errorf("matrix column type %s is not a vector", column)
	}
	if uint32(col.Components) != ops[1] {
		return fmt.Errorf("rectangular %dx%d matrix is not supported", ops[1], col.Components)
	}
	mat, err := gltype.Matrix(gltype.Atom(col.Base), col.Components)
	if err != nil {
		return err
	}
	tt.setGeneric(inst.ResultID, mat)
	return nil
}

func (tt *typeTable) resolveArray(inst spirv.Instruction) error {
	ops, err := operands(inst, 2)
	if err != nil {
		return err
	}
	elem, ok := tt.items[ops[0]]
	if !ok {
		return tt.missing(ops[0])
	}
	length, ok := tt.constants[ops[1]]
	if !ok {
		return fmt.Errorf("array length %d is not a constant", ops[1])
	}
	arr, err := gltype.Array(elem, length)
	if err != nil {
		return err
	}
	tt.items[inst.ResultID] = arr
	return nil
}

func (tt *typeTable) resolveImage(inst spirv.Instruction) error {
	// sampled type, dim, depth, arrayed, ms, sampled, format
	ops, err := operands(inst, 7)
	if err != nil {
		return err
	}
	format := gltype.FromImageFormat(spirv.ImageFormat(ops[6]))
	tt.items[inst.ResultID] = gltype.Image(format)
	return nil
}

func (tt *typeTable) resolveSampledImage(inst spirv.Instruction) error {
	ops, err := operands(inst, 1)
	if err != nil {
		return err
	}
	image, ok := tt.items[ops[0]]
	if !ok || image.Kind != gltype.KindImage {
		return fmt.Errorf("sampled image of unknown image type %d", ops[0])
	}
	tt.items[inst.ResultID] = image
	return nil
}
