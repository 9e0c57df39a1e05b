package gen

import (
	"sort"
	"sync"
)

// Registry records which source type owns each companion name. It is shared
// by all pipelines of a run so two source types never emit the same name.
type Registry struct {
	mu     sync.Mutex
	owners map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{owners: make(map[string]string)}
}

// Claim assigns name to owner. Claiming a name the owner already holds
// succeeds, so reruns for the same source type are idempotent.
func (r *Registry) Claim(name, owner string) error {
	return r.ClaimAll([]string{name}, owner)
}

// ClaimAll assigns every name to owner, or none of them if any is held by
// another owner.
func (r *Registry) ClaimAll(names []string, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.owners == nil {
		r.owners = make(map[string]string)
	}
	for _, name := range names {
		if cur, ok := r.owners[name]; ok && cur != owner {
			return NewNamingConflictError(name, cur, owner, "name already claimed")
		}
	}
	for _, name := range names {
		r.owners[name] = owner
	}
	return nil
}

// Release frees every name held by owner.
func (r *Registry) Release(owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, cur := range r.owners {
		if cur == owner {
			delete(r.owners, name)
		}
	}
}

// Owner returns the owner of name.
func (r *Registry) Owner(name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner, ok := r.owners[name]
	return owner, ok
}

// Names returns the claimed names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.owners))
	for name := range r.owners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
