package runtime

import (
	"fmt"
	"sort"
	"strings"
)

// PluginRegistry maps plugin ids to factories. The CLI and the daemon share
// one registry; every project gets fresh plugin instances from it.
type PluginRegistry struct {
	factories map[string]PluginFactory
}

func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{
		factories: make(map[string]PluginFactory),
	}
}

func (r *PluginRegistry) Register(id string, factory PluginFactory) error {
	if err := ValidatePluginID(id); err != nil {
		return err
	}
	if factory == nil {
		return fmt.Errorf("plugin %q: factory cannot be nil", id)
	}
	if _, exists := r.factories[id]; exists {
		return fmt.Errorf("plugin %q is already registered", id)
	}
	r.factories[id] = factory
	return nil
}

func (r *PluginRegistry) Lookup(id string) (PluginFactory, error) {
	factory, ok := r.factories[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownPlugin, id, strings.Join(r.IDs(), ", "))
	}
	return factory, nil
}

// IDs returns the registered plugin ids, sorted.
func (r *PluginRegistry) IDs() []string {
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
