// Package uniformset computes the uniforms shared by a group of programs.
package uniformset

import (
	"sort"

	"github.com/Faultbox/glslgen/internal/program"
	"github.com/Faultbox/glslgen/pkg/reflect"
)

// UniformSet is the common uniform interface of its member programs.
type UniformSet struct {
	ID       string
	Programs []*program.Program
	// Uniforms holds the intersected uniforms sorted by name.
	Uniforms []reflect.Key
}

// Resolve intersects the uniforms of programs by name and type. The result
// does not depend on program order; zero programs yield an empty set.
func Resolve(id string, programs []*program.Program) *UniformSet {
	set := &UniformSet{ID: id, Programs: programs}
	if len(programs) == 0 {
		return set
	}

	common := make(map[reflect.Key]struct{})
	for _, k := range programs[0].Keys() {
		common[k] = struct{}{}
	}

	for _, p := range programs[1:] {
		next := make(map[reflect.Key]struct{}, len(common))
		for _, k := range p.Keys() {
			if _, ok := common[k]; ok {
				next[k] = struct{}{}
			}
		}
		common = next
	}

	set.Uniforms = make([]reflect.Key, 0, len(common))
	for k := range common {
		set.Uniforms = append(set.Uniforms, k)
	}
	sort.Slice(set.Uniforms, func(i, j int) bool {
		return set.Uniforms[i].Name < set.Uniforms[j].Name
	})
	return set
}

// Contains reports whether the set exposes a uniform called name.
func (s *UniformSet) Contains(name string) bool {
	for _, k := range s.Uniforms {
		if k.Name == name {
			return true
		}
	}
	return false
}
