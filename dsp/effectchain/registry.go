package effectchain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Factory builds one Runtime instance for a node.
type Factory func(ctx Context) (Runtime, error)

// Registry maps effect type names to their factories.
type Registry struct {
	factories map[string]Factory
}

var errDuplicateEffect = errors.New("duplicate effect type")

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds effectType to factory. Routing and I/O node types are
// reserved, and each type can be bound once.
func (r *Registry) Register(effectType string, factory Factory) error {
	switch {
	case effectType == "":
		return errors.New("empty effect type")
	case isStructuralNodeType(effectType):
		return fmt.Errorf("reserved effect type: %s", effectType)
	case factory == nil:
		return errors.New("nil factory")
	}

	if _, taken := r.factories[effectType]; taken {
		return fmt.Errorf("%w: %s", errDuplicateEffect, effectType)
	}

	r.factories[effectType] = factory

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(effectType string, factory Factory) {
	if err := r.Register(effectType, factory); err != nil {
		panic("effectchain registry: " + err.Error())
	}
}

// Lookup returns the factory for the given effect type, or nil.
func (r *Registry) Lookup(effectType string) Factory {
	return r.factories[effectType]
}

// Types returns the registered effect types in sorted order.
func (r *Registry) Types() []string {
	return slices.Sorted(maps.Keys(r.factories))
}
