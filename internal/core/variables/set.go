package variables

import (
	"github.com/artpar/simpled/internal/core/fault"
	"github.com/artpar/simpled/internal/core/spec"
)

// =============================================================================
// Variable Set
// =============================================================================

// Scope resolves variable names to values.
type Scope interface {
	Lookup(name string) (string, bool)
}

// Set is an ordered collection of variables with unique names.
// A Set is not safe for concurrent writes; concurrent reads are fine.
type Set struct {
	vars  []spec.EnvVariable
	index map[string]int
}

// NewSet creates a set from vars. A repeated name replaces the earlier value
// in place.
func NewSet(vars ...spec.EnvVariable) *Set {
	s := &Set{index: make(map[string]int, len(vars))}
	for _, v := range vars {
		s.Put(v.Name, v.Value)
	}
	return s
}

// Add appends a variable. Adding a name that is already present fails.
func (s *Set) Add(name, value string) error {
	if _, ok := s.index[name]; ok {
		return fault.Constraint("variable %s is declared more than once", name)
	}
	s.index[name] = len(s.vars)
	s.vars = append(s.vars, spec.EnvVariable{Name: name, Value: value})
	return nil
}

// Put replaces the value of an existing name in place, or appends it.
func (s *Set) Put(name, value string) {
	if i, ok := s.index[name]; ok {
		s.vars[i].Value = value
		return
	}
	s.index[name] = len(s.vars)
	s.vars = append(s.vars, spec.EnvVariable{Name: name, Value: value})
}

// Lookup returns the value of name.
func (s *Set) Lookup(name string) (string, bool) {
	i, ok := s.index[name]
	if !ok {
		return "", false
	}
	return s.vars[i].Value, true
}

// Vars returns a copy of the variables in insertion order.
func (s *Set) Vars() []spec.EnvVariable {
	out := make([]spec.EnvVariable, len(s.vars))
	copy(out, s.vars)
	return out
}
