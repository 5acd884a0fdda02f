// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package ecs

import (
	"reflect"
)

// remover is implemented by every Storage so the Registry
// can drop an entity's components on destruction.
type remover interface {
	Remove(e Entity)
	Len() int
}

// Registry holds one Storage per component type.
type Registry struct {
	stores map[reflect.Type]remover
	order  []remover
}

// Register adds s as the storage for components of type T.
// It panics if T already has a storage.
func Register[T any](r *Registry, s *Storage[T]) {
	t := reflect.TypeFor[T]()
	if r.stores == nil {
		r.stores = make(map[reflect.Type]remover)
	}
	if _, ok := r.stores[t]; ok {
		panic("ecs: duplicate storage for " + t.String())
	}
	r.stores[t] = s
	r.order = append(r.order, s)
}

// Lookup returns the storage for components of type T.
func Lookup[T any](r *Registry) (*Storage[T], bool) {
	s, ok := r.stores[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return s.(*Storage[T]), true
}

// RemoveAll removes e's components from every storage.
func (r *Registry) RemoveAll(e Entity) {
	for _, s := range r.order {
		s.Remove(e)
	}
}

// Len returns the number of registered storages.
func (r *Registry) Len() int { return len(r.order) }
