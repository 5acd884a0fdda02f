// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package ecs

// World owns the entity pool, the component registry and
// a queue of entities whose destruction was deferred to
// the end of the frame.
type World struct {
	pool     Pool
	registry Registry
	doomed   []Entity
}

// NewWorld creates an empty world.
func NewWorld() *World { return new(World) }

// Registry returns w's component registry.
func (w *World) Registry() *Registry { return &w.registry }

// Create allocates a new entity.
func (w *World) Create() Entity { return w.pool.Create() }

// Alive checks whether e is alive in w.
func (w *World) Alive(e Entity) bool { return w.pool.Alive(e) }

// Len returns the number of live entities.
func (w *World) Len() int { return w.pool.Len() }

// Destroy removes e's components and releases e.
func (w *World) Destroy(e Entity) {
	if !w.pool.Alive(e) {
		return
	}
	w.registry.RemoveAll(e)
	w.pool.Destroy(e)
}

// Defer queues e for destruction on the next call
// to Flush.
func (w *World) Defer(e Entity) { w.doomed = append(w.doomed, e) }

// Flush destroys every queued entity.
func (w *World) Flush() {
	for _, e := range w.doomed {
		w.Destroy(e)
	}
	clear(w.doomed)
	w.doomed = w.doomed[:0]
}

// Component returns the storage for components of type T,
// creating and registering it on first use.
func Component[T any](w *World) *Storage[T] {
	if s, ok := Lookup[T](&w.registry); ok {
		return s
	}
	s := NewStorage[T]()
	Register(&w.registry, s)
	return s
}
