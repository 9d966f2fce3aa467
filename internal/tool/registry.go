package tool

import (
	"fmt"
	"sync"
)

// Registry holds the loaded tool definitions in registration order.
// It is the capability source the read-only coordinator and the block
// toolbox consult.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]*Definition
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[string]*Definition),
	}
}

// Register adds a definition. Registration order is preserved for
// deterministic iteration.
func (r *Registry) Register(def *Definition) error {
	if def == nil || def.Name == "" || def.New == nil {
		return ErrInvalidDefinition
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.Name]; exists {
		return fmt.Errorf("tool %q: %w", def.Name, ErrDuplicateTool)
	}
	r.defs[def.Name] = def
	r.order = append(r.order, def.Name)
	return nil
}

// Get returns a definition by name.
func (r *Registry) Get(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[name]
	return def, ok
}

// All returns every definition in registration order.
func (r *Registry) All() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Definition, 0, len(r.order))
	for _, name := range r.order {
		if def, ok := r.defs[name]; ok {
			out = append(out, def)
		}
	}
	return out
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// Capability reports a tool's declared capabilities.
func (r *Registry) Capability(name string) (Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[name]
	if !ok {
		return Capability{}, false
	}

	cap := Capability{
		SupportsReadOnly: def.SupportsReadOnly,
		Title:            def.Title,
		Shortcut:         def.Shortcut,
	}
	if cap.Title == "" {
		cap.Title = def.Name
	}
	if def.Toolbox != nil {
		cap.ToolboxIcon = def.Toolbox.Icon
	}
	return cap, true
}
