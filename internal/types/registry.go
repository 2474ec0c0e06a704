package types

import (
	"fmt"
	"sync"
)

// ErrAlreadyRegistered is returned when registering a duplicate type name.
var ErrAlreadyRegistered = fmt.Errorf("exposed type already registered")

// Registry is the ordered list of exposed type descriptors.
//
// The list is populated before the settings façade is used and its
// membership never changes afterwards; only the capability flag on each
// member is toggled.
type Registry struct {
	mu          sync.RWMutex
	descriptors []*Descriptor
	byName      map[string]*Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Descriptor),
	}
}

// DefaultRegistry returns a registry holding the engine's exposed
// value families.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, name := range []string{
		"polynomial",
		"rational_function",
		"poisson_series",
		"divisor_series",
	} {
		if err := r.Register(NewDescriptor(name, nil)); err != nil {
			panic(err)
		}
	}
	return r
}

// Register appends a descriptor to the registry.
// Returns ErrAlreadyRegistered if the name is taken.
func (r *Registry) Register(d *Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[d.name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, d.name)
	}
	r.descriptors = append(r.descriptors, d)
	r.byName[d.name] = d
	return nil
}

// Get returns the descriptor with the given name, or nil.
func (r *Registry) Get(name string) *Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// First returns the first registered descriptor, or nil when empty.
// The façade uses it as the representative sample for capability state.
func (r *Registry) First() *Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.descriptors) == 0 {
		return nil
	}
	return r.descriptors[0]
}

// List returns the descriptors in registration order.
func (r *Registry) List() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*Descriptor, len(r.descriptors))
	copy(result, r.descriptors)
	return result
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.descriptors)
}
