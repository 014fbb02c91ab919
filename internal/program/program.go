// Package program groups reflected shader stages into linked programs.
package program

import (
	"github.com/Faultbox/glslgen/internal/shader"
	"github.com/Faultbox/glslgen/pkg/gltype"
	"github.com/Faultbox/glslgen/pkg/reflect"
)

// Uniform is a program-level uniform together with the stage that owns its
// location.
type Uniform struct {
	reflect.FoundUniform
	// Shader indexes Program.Shaders.
	Shader int
}

// Conflict records a uniform declared with different types in two stages.
// The first declaration is the one kept.
type Conflict struct {
	Name      string
	Kept      gltype.ItemOrArrayType
	KeptIn    string
	Dropped   gltype.ItemOrArrayType
	DroppedIn string
}

// Program is a set of shader stages linked together.
type Program struct {
	ID      string
	Stages  []shader.Stage
	Shaders []*shader.Shader
	// Uniforms holds one entry per uniform name, in stage order then
	// reflection order.
	Uniforms  []Uniform
	Conflicts []Conflict
}

// Assemble builds a program from its stages. Uniforms are concatenated in
// stage order and the first occurrence of each name wins.
func Assemble(id string, shaders []*shader.Shader) *Program {
	p := &Program{
		ID:      id,
		Shaders: shaders,
	}

	index := make(map[string]int)
	for si, sh := range shaders {
		p.Stages = append(p.Stages, sh.Stage)

		for _, u := range sh.Uniforms {
			if i, ok := index[u.Name]; ok {
				kept := p.Uniforms[i]
				if kept.Type != u.Type {
					p.Conflicts = append(p.Conflicts, Conflict{
						Name:      u.Name,
						Kept:      kept.Type,
						KeptIn:    shaders[kept.Shader].Name,
						Dropped:   u.Type,
						DroppedIn: sh.Name,
					})
				}
				continue
			}
			index[u.Name] = len(p.Uniforms)
			p.Uniforms = append(p.Uniforms, Uniform{FoundUniform: u, Shader: si})
		}
	}
	return p
}

// Uniform looks up a uniform by name.
func (p *Program) Uniform(name string) (Uniform, bool) {
	for _, u := range p.Uniforms {
		if u.Name == name {
			return u, true
		}
	}
	return Uniform{}, false
}

// Keys returns the (name, type) identity of every uniform.
func (p *Program) Keys() []reflect.Key {
	keys := make([]reflect.Key, len(p.Uniforms))
	for i, u := range p.Uniforms {
		keys[i] = u.Key()
	}
	return keys
}

// ShadersWithUniforms returns the indexes of stages that declare at least
// one uniform. Only those stages need a location cache.
func (p *Program) ShadersWithUniforms() []int {
	var idx []int
	for i, sh := range p.Shaders {
		if sh.HasUniforms() {
			idx = append(idx, i)
		}
	}
	return idx
}
