// Package reflect recovers uniform metadata from compiled SPIR-V modules.
//
// Reflection is best effort: a uniform whose type cannot be resolved is
// dropped with a warning and never fails the module as a whole. Only a
// malformed binary is an error.
package reflect

import (
	"fmt"
	"sort"

	"github.com/iancoleman/strcase"
	"go.uber.org/zap"

	"github.com/Faultbox/glslgen/pkg/gltype"
	"github.com/Faultbox/glslgen/pkg/spirv"
)

// FoundUniform is a uniform discovered in a SPIR-V module.
type FoundUniform struct {
	Name     string
	Location uint32
	// Binding is nil when the uniform has no Binding decoration.
	Binding *uint32
	Type    gltype.ItemOrArrayType
	// LocationName is a Go identifier derived from Name, unique within one
	// reflection result.
	LocationName string
}

// Key is the identity of a uniform across programs.
type Key struct {
	Name string
	Type gltype.ItemOrArrayType
}

// Key returns the (name, type) identity of u.
func (u FoundUniform) Key() Key {
	return Key{Name: u.Name, Type: u.Type}
}

// Reflector extracts uniforms from SPIR-V modules.
type Reflector struct {
	log *zap.Logger
}

// New creates a reflector reporting diagnostics to log. A nil logger
// discards them.
func New(log *zap.Logger) *Reflector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reflector{log: log}
}

// ReflectWords parses a module and reflects its uniforms.
func (r *Reflector) ReflectWords(words []uint32) ([]FoundUniform, error) {
	m, err := spirv.Parse(words)
	if err != nil {
		return nil, fmt.Errorf("parsing SPIR-V: %w", err)
	}
	return r.Reflect(m), nil
}

// ReflectBytes parses a module from bytes and reflects its uniforms.
func (r *Reflector) ReflectBytes(data []byte) ([]FoundUniform, error) {
	m, err := spirv.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parsing SPIR-V: %w", err)
	}
	return r.Reflect(m), nil
}

// Reflect returns the uniforms of m sorted by location, then name.
func (r *Reflector) Reflect(m *spirv.Module) []FoundUniform {
	tt := r.resolveTypes(m)

	// Debug names
	stubs := make(map[uint32]*FoundUniform)
	for _, inst := range m.DebugNames {
		if inst.Opcode != spirv.OpName || len(inst.Operands) < 2 {
			continue
		}
		name, err := inst.Literal(1)
		if err != nil {
			continue
		}
		stubs[inst.Operands[0]] = &FoundUniform{Name: name}
	}

	// Decorations
	for _, inst := range m.Annotations {
		if inst.Opcode != spirv.OpDecorate || len(inst.Operands) < 3 {
			continue
		}
		s, ok := stubs[inst.Operands[0]]
		if !ok {
			continue
		}
		value := inst.Operands[2]
		switch spirv.Decoration(inst.Operands[1]) {
		case spirv.DecorationLocation:
			s.Location = value
		case spirv.DecorationBinding:
			s.Binding = &value
		}
	}

	// Uniform constant variables
	var found []FoundUniform
	for _, inst := range m.TypesGlobalValues {
		if inst.Opcode != spirv.OpVariable {
			continue
		}
		class, ok := inst.Operand(0)
		if !ok || spirv.StorageClass(class) != spirv.StorageClassUniformConstant {
			continue
		}

		s, ok := stubs[inst.ResultID]
		if !ok {
			r.log.Warn("Uniform has no debug name, skipping",
				zap.Uint32("id", inst.ResultID))
			continue
		}

		pointee, ok := tt.pointers[inst.ResultType]
		if !ok {
			r.log.Warn("Uniform has no pointer type, skipping",
				zap.String("uniform", s.Name),
				zap.Uint32("type_id", inst.ResultType))
			continue
		}

		typ, ok := tt.items[pointee]
		if !ok {
			reason := tt.failures[pointee]
			if reason == "" {
				reason = "unsupported type"
			}
			r.log.Warn("Unsupported uniform type, it will not be wrapped",
				zap.String("uniform", s.Name),
				zap.Uint32("type_id", pointee),
				zap.String("reason", reason))
			continue
		}

		s.Type = typ
		found = append(found, *s)
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].Location != found[j].Location {
			return found[i].Location < found[j].Location
		}
		return found[i].Name < found[j].Name
	})
	assignLocationNames(found)

	r.log.Debug("Reflected module",
		zap.Int("uniforms", len(found)),
		zap.Int("names", len(stubs)))
	return found
}

// assignLocationNames derives a unique Go identifier for every uniform,
// suffixing a counter when two names collapse to the same identifier.
func assignLocationNames(uniforms []FoundUniform) {
	seen := make(map[string]int)
	for i := range uniforms {
		base := LocationName(uniforms[i].Name)
		name := base
		for n := seen[base]; n > 0; n++ {
			candidate := fmt.Sprintf("%s%d", base, n+1)
			if seen[candidate] == 0 {
				name = candidate
				break
			}
		}
		seen[base]++
		if name != base {
			seen[name]++
		}
		uniforms[i].LocationName = name
	}
}

// LocationName returns the identifier used for the cached location of the
// uniform called name, e.g. "iTimeLocation".
func LocationName(name string) string {
	return strcase.ToLowerCamel(name + "_location")
}
