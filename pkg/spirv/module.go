package spirv

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// Parser errors.
var (
	ErrInvalidMagic         = errors.New("invalid SPIR-V magic number")
	ErrTruncatedModule      = errors.New("truncated SPIR-V module")
	ErrInvalidWordCount     = errors.New("invalid SPIR-V instruction word count")
	ErrUnterminatedString   = errors.New("unterminated SPIR-V literal string")
	ErrMisplacedInstruction = errors.New("SPIR-V instruction outside its section")
)

// Header is the five-word SPIR-V module header.
type Header struct {
	Magic     uint32
	Version   Version
	Generator uint32
	Bound     uint32
	Schema    uint32
}

// Instruction is a single decoded SPIR-V instruction.
//
// ResultType and ResultID are zero for opcodes that do not define them.
// Operands holds the remaining words in encoding order.
type Instruction struct {
	Opcode     Op
	ResultType uint32
	ResultID   uint32
	Operands   []uint32
}

// Literal decodes a literal string starting at operand index idx.
func (i Instruction) Literal(idx int) (string, error) {
	if idx < 0 || idx >= len(i.Operands) {
		return "", fmt.Errorf("%w: %s has no operand %d", ErrUnterminatedString, i.Opcode, idx)
	}
	s, _, err := DecodeString(i.Operands[idx:])
	return s, err
}

// Operand returns the operand at idx and whether it exists.
func (i Instruction) Operand(idx int) (uint32, bool) {
	if idx < 0 || idx >= len(i.Operands) {
		return 0, false
	}
	return i.Operands[idx], true
}

// Module is a parsed SPIR-V module split into its logical sections.
type Module struct {
	Header Header

	Capabilities   []Instruction
	Extensions     []Instruction
	ExtInstImports []Instruction
	MemoryModel    *Instruction
	EntryPoints    []Instruction
	ExecutionModes []Instruction

	// Debug holds OpString, OpSource* and OpModuleProcessed.
	Debug      []Instruction
	DebugNames []Instruction

	Annotations       []Instruction
	TypesGlobalValues []Instruction

	// Functions holds every instruction from the first OpFunction to the
	// last OpFunctionEnd.
	Functions []Instruction
}

// section is the logical layout position of an instruction.
type section int

const (
	sectionCapability section = iota
	sectionExtension
	sectionExtInstImport
	sectionMemoryModel
	sectionEntryPoint
	sectionExecutionMode
	sectionDebug
	sectionDebugName
	sectionAnnotation
	sectionTypes
)

// ParseFile reads and parses a SPIR-V module from disk.
func ParseFile(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading SPIR-V file: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes parses a SPIR-V module from its byte encoding. Both little and
// big endian encodings are accepted; the magic number decides which.
func ParseBytes(data []byte) (*Module, error) {
	if len(data) < headerWords*4 {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrTruncatedModule, len(data))
	}
	words, err := DecodeWords(data)
	if err != nil {
		return nil, err
	}
	return Parse(words)
}

// DecodeWords converts a byte encoded module to words, detecting the byte
// order from the magic number.
func DecodeWords(data []byte) ([]uint32, error) {
	if len(data) < 4 || len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of words", ErrTruncatedModule, len(data))
	}

	var order binary.ByteOrder
	switch {
	case binary.LittleEndian.Uint32(data) == MagicNumber:
		order = binary.LittleEndian
	case binary.BigEndian.Uint32(data) == MagicNumber:
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: 0x%08x", ErrInvalidMagic, binary.LittleEndian.Uint32(data))
	}

	words := make([]uint32, len(data)/4)
	if err := binary.Read(bytes.NewReader(data), order, words); err != nil {
		return nil, fmt.Errorf("%w: reading words: %v", ErrTruncatedModule, err)
	}
	return words, nil
}

// Parse parses a SPIR-V module from its word encoding.
func Parse(words []uint32) (*Module, error) {
	if len(words) < headerWords {
		return nil, fmt.Errorf("%w: %d words is shorter than the header", ErrTruncatedModule, len(words))
	}
	if words[0] != MagicNumber {
		return nil, fmt.Errorf("%w: 0x%08x", ErrInvalidMagic, words[0])
	}

	m := &Module{
		Header: Header{
			Magic: words[0],
			Version: Version{
				Major: uint8(words[1] >> 16),
				Minor: uint8(words[1] >> 8),
			},
			Generator: words[2],
			Bound:     words[3],
			Schema:    words[4],
		},
	}

	inFunction := false
	for offset := headerWords; offset < len(words); {
		first := words[offset]
		wordCount := int(first >> 16)
		op := Op(first & 0xFFFF)
		if wordCount == 0 {
			return nil, fmt.Errorf("%w: %s at word %d has zero length", ErrInvalidWordCount, op, offset)
		}
		if offset+wordCount > len(words) {
			return nil, fmt.Errorf("%w: %s at word %d needs %d words, %d remain",
				ErrTruncatedModule, op, offset, wordCount, len(words)-offset)
		}

		inst, err := decodeInstruction(op, words[offset+1:offset+wordCount])
		if err != nil {
			return nil, fmt.Errorf("word %d: %w", offset, err)
		}

		switch {
		case op == OpFunction:
			inFunction = true
			m.Functions = append(m.Functions, inst)
		case op == OpFunctionEnd:
			if !inFunction {
				return nil, fmt.Errorf("%w: %s at word %d", ErrMisplacedInstruction, op, offset)
			}
			inFunction = false
			m.Functions = append(m.Functions, inst)
		case inFunction:
			m.Functions = append(m.Functions, inst)
		default:
			if err := m.place(inst); err != nil {
				return nil, fmt.Errorf("word %d: %w", offset, err)
			}
		}

		offset += wordCount
	}

	if inFunction {
		return nil, fmt.Errorf("%w: missing OpFunctionEnd", ErrTruncatedModule)
	}
	return m, nil
}

// place appends a module-level instruction to its section.
func (m *Module) place(inst Instruction) error {
	switch sectionOf(inst.Opcode) {
	case sectionCapability:
		m.Capabilities = append(m.Capabilities, inst)
	case sectionExtension:
		m.Extensions = append(m.Extensions, inst)
	case sectionExtInstImport:
		m.ExtInstImports = append(m.ExtInstImports, inst)
	case sectionMemoryModel:
		mm := inst
		m.MemoryModel = &mm
	case sectionEntryPoint:
		m.EntryPoints = append(m.EntryPoints, inst)
	case sectionExecutionMode:
		m.ExecutionModes = append(m.ExecutionModes, inst)
	case sectionDebug:
		m.Debug = append(m.Debug, inst)
	case sectionDebugName:
		if _, err := inst.Literal(nameOperand(inst.Opcode)); err != nil {
			return err
		}
		m.DebugNames = append(m.DebugNames, inst)
	case sectionAnnotation:
		m.Annotations = append(m.Annotations, inst)
	case sectionTypes:
		m.TypesGlobalValues = append(m.TypesGlobalValues, inst)
	default:
		return fmt.Errorf("%w: %s", ErrMisplacedInstruction, inst.Opcode)
	}
	return nil
}

func sectionOf(op Op) section {
	switch op {
	case OpCapability:
		return sectionCapability
	case OpExtension:
		return sectionExtension
	case OpExtInstImport:
		return sectionExtInstImport
	case OpMemoryModel:
		return sectionMemoryModel
	case OpEntryPoint:
		return sectionEntryPoint
	case OpExecutionMode, OpExecutionModeID:
		return sectionExecutionMode
	case OpString, OpSource, OpSourceContinued, OpSourceExtension, OpModuleProcessed:
		return sectionDebug
	case OpName, OpMemberName:
		return sectionDebugName
	case OpDecorate, OpMemberDecorate, OpDecorationGroup, OpGroupDecorate,
		OpGroupMemberDecorate, OpDecorateID, OpDecorateString, OpMemberDecorateString:
		return sectionAnnotation
	}
	// Types, constants, global variables, OpLine and OpUndef, plus any
	// extension types and constants.
	return sectionTypes
}

// nameOperand is the operand index of the literal in OpName/OpMemberName.
func nameOperand(op Op) int {
	if op == OpMemberName {
		return 2
	}
	return 1
}

// resultLayout reports whether op carries a result type and a result id.
func resultLayout(op Op) (hasType, hasID bool) {
	switch op {
	case OpUndef, OpConstantTrue, OpConstantFalse, OpConstant, OpConstantComposite,
		OpConstantSampler, OpConstantNull, OpSpecConstantTrue, OpSpecConstantFalse,
		OpSpecConstant, OpSpecConstantComposite, OpSpecConstantOp,
		OpFunction, OpFunctionParameter, OpVariable, OpExtInst:
		return true, true
	case OpString, OpExtInstImport, OpDecorationGroup, OpLabel:
		return false, true
	}
	if op >= OpTypeVoid && op <= OpTypePipe {
		return false, true
	}
	return false, false
}

func decodeInstruction(op Op, body []uint32) (Instruction, error) {
	inst := Instruction{Opcode: op}
	hasType, hasID := resultLayout(op)

	if hasType {
		if len(body) == 0 {
			return inst, fmt.Errorf("%w: %s is missing its result type", ErrInvalidWordCount, op)
		}
		inst.ResultType = body[0]
		body = body[1:]
	}
	if hasID {
		if len(body) == 0 {
			return inst, fmt.Errorf("%w: %s is missing its result id", ErrInvalidWordCount, op)
		}
		inst.ResultID = body[0]
		body = body[1:]
	}
	if len(body) > 0 {
		inst.Operands = append([]uint32(nil), body...)
	}
	return inst, nil
}

// DecodeString decodes a nul-terminated UTF-8 literal packed into words,
// returning the string and the number of words it occupies.
func DecodeString(words []uint32) (string, int, error) {
	var buf []byte
	for i, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			b := byte(w >> shift)
			if b == 0 {
				return string(buf), i + 1, nil
			}
			buf = append(buf, b)
		}
	}
	return "", 0, ErrUnterminatedString
}

// EncodeString packs s into nul-terminated words.
func EncodeString(s string) []uint32 {
	n := len(s)/4 + 1
	words := make([]uint32, n)
	for i := 0; i < len(s); i++ {
		words[i/4] |= uint32(s[i]) << (8 * (i % 4))
	}
	return words
}
