// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package ecs

import (
	"iter"
)

// entry is what a Storage stores.
type entry[T any] struct {
	data   T
	entity Entity
}

// Storage stores components of type T keyed by Entity.
// Components are kept densely packed; removal moves the
// last component into the vacated position, so pointers
// returned by Get are valid only until the next call to
// Set or Remove.
type Storage[T any] struct {
	// sparse maps an entity index to its position
	// in dense plus one. Zero means absent.
	sparse []int
	dense  []entry[T]
}

// NewStorage creates an empty storage.
func NewStorage[T any]() *Storage[T] { return new(Storage[T]) }

func (s *Storage[T]) pos(e Entity) (int, bool) {
	idx := int(e.Index())
	if idx >= len(s.sparse) || s.sparse[idx] == 0 {
		return 0, false
	}
	p := s.sparse[idx] - 1
	if s.dense[p].entity != e {
		return 0, false
	}
	return p, true
}

// Set stores c as e's component, replacing any previous
// one.
func (s *Storage[T]) Set(e Entity, c T) {
	if p, ok := s.pos(e); ok {
		s.dense[p].data = c
		return
	}
	idx := int(e.Index())
	if idx >= len(s.sparse) {
		s.sparse = append(s.sparse, make([]int, idx+1-len(s.sparse))...)
	} else if p := s.sparse[idx]; p != 0 {
		// A stale generation still occupies the slot.
		s.remove(p - 1)
	}
	s.dense = append(s.dense, entry[T]{c, e})
	s.sparse[idx] = len(s.dense)
}

// Get returns a pointer to e's component.
func (s *Storage[T]) Get(e Entity) (*T, bool) {
	if p, ok := s.pos(e); ok {
		return &s.dense[p].data, true
	}
	return nil, false
}

// Has checks whether e has a component in s.
func (s *Storage[T]) Has(e Entity) bool {
	_, ok := s.pos(e)
	return ok
}

// Remove removes e's component, if any.
func (s *Storage[T]) Remove(e Entity) {
	if p, ok := s.pos(e); ok {
		s.remove(p)
	}
}

func (s *Storage[T]) remove(p int) {
	last := len(s.dense) - 1
	s.sparse[s.dense[p].entity.Index()] = 0
	if p < last {
		s.dense[p] = s.dense[last]
		s.sparse[s.dense[p].entity.Index()] = p + 1
	}
	s.dense[last] = entry[T]{}
	s.dense = s.dense[:last]
}

// Len returns the number of components in s.
func (s *Storage[_]) Len() int { return len(s.dense) }

// All returns an iterator over the components of s.
// s must not be changed during iteration, except through
// the yielded pointers.
func (s *Storage[T]) All() iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		for i := range s.dense {
			if !yield(s.dense[i].entity, &s.dense[i].data) {
				return
			}
		}
	}
}
