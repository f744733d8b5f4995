package tool

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is the name-keyed dispatch table of invocable tools. The
// orchestrator stays closed to modification as tools are added: new
// capabilities only register new entries.
type Registry interface {
	// Register adds a tool. Registering a name twice is an error.
	Register(def Definition, handler Handler) error
	// Replace upserts a tool; used by the periodic manifest refresh.
	Replace(def Definition, handler Handler)
	// Resolve returns the handler for a tool name.
	Resolve(name string) (Handler, bool)
	// Manifest returns every registered definition, sorted by name.
	Manifest() []Definition
}

// DefaultRegistry is the default implementation of Registry.
type DefaultRegistry struct {
	mu      sync.RWMutex
	entries map[string]registryEntry
}

type registryEntry struct {
	def     Definition
	handler Handler
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{entries: make(map[string]registryEntry)}
}

// Register adds a tool to the registry.
func (r *DefaultRegistry) Register(def Definition, handler Handler) error {
	if def.Name == "" {
		return fmt.Errorf("tool definition has no name")
	}
	if handler == nil {
		return fmt.Errorf("tool %s has no handler", def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[def.Name]; exists {
		return fmt.Errorf("tool already registered: %s", def.Name)
	}

	r.entries[def.Name] = registryEntry{def: def, handler: handler}
	return nil
}

// Replace upserts a tool entry.
func (r *DefaultRegistry) Replace(def Definition, handler Handler) {
	if def.Name == "" || handler == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[def.Name] = registryEntry{def: def, handler: handler}
}

// Resolve returns the handler registered for name.
func (r *DefaultRegistry) Resolve(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	return entry.handler, ok
}

// Manifest returns every registered definition sorted by name, so the set
// advertised to the model is deterministic.
func (r *DefaultRegistry) Manifest() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.entries))
	for _, entry := range r.entries {
		defs = append(defs, entry.def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}
