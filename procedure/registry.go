package procedure

import "fmt"

// Lookup resolves a namespace.name procedure reference. *Registry
// satisfies this directly; hosts that source procedures some other way
// (e.g. from a graph model) can supply their own implementation.
type Lookup interface {
	Get(namespace, name string) (Procedure, bool)
}

// Registry tracks procedures by namespace.name, keyed lookup table for
// host-populated callables.
type Registry struct {
	procedures map[string]Procedure
}

// NewRegistry creates an empty procedure registry.
func NewRegistry() *Registry {
	return &Registry{procedures: make(map[string]Procedure)}
}

func key(namespace, name string) string {
	return fmt.Sprintf("%s.%s", namespace, name)
}

// Register adds a procedure, keyed by its own Namespace()/Name().
func (r *Registry) Register(p Procedure) {
	r.procedures[key(p.Namespace(), p.Name())] = p
}

// Get looks up a procedure by namespace and name.
func (r *Registry) Get(namespace, name string) (Procedure, bool) {
	p, ok := r.procedures[key(namespace, name)]
	return p, ok
}
