// Package persona holds the writing voices posts are generated in.
package persona

import "fmt"

// Persona is a named writing-voice configuration.
type Persona struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Voice       string `json:"-" yaml:"voice"`
}

// Registry maps persona identifiers to personas. It is read-only once built.
type Registry struct {
	order     []string
	personas  map[string]Persona
	defaultID string
}

// NewRegistry builds a registry from definitions in listing order.
// defaultID must name one of the definitions.
func NewRegistry(defs []Persona, defaultID string) (*Registry, error) {
	r := &Registry{
		order:     make([]string, 0, len(defs)),
		personas:  make(map[string]Persona, len(defs)),
		defaultID: defaultID,
	}
	for _, p := range defs {
		if p.ID == "" {
			return nil, fmt.Errorf("persona with empty id")
		}
		if _, dup := r.personas[p.ID]; dup {
			return nil, fmt.Errorf("duplicate persona %q", p.ID)
		}
		r.order = append(r.order, p.ID)
		r.personas[p.ID] = p
	}
	if _, ok := r.personas[defaultID]; !ok {
		return nil, fmt.Errorf("default persona %q is not defined", defaultID)
	}
	return r, nil
}

// Get returns the persona for id, or the default persona when id is unknown.
func (r *Registry) Get(id string) Persona {
	if p, ok := r.personas[id]; ok {
		return p
	}
	return r.personas[r.defaultID]
}

// Has reports whether id is defined.
func (r *Registry) Has(id string) bool {
	_, ok := r.personas[id]
	return ok
}

// Default returns the fallback persona.
func (r *Registry) Default() Persona {
	return r.personas[r.defaultID]
}

// List returns all personas in definition order.
func (r *Registry) List() []Persona {
	out := make([]Persona, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.personas[id])
	}
	return out
}

// Len returns the number of personas.
func (r *Registry) Len() int {
	return len(r.order)
}
