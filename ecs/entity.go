// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package ecs implements the entity store and the typed
// component storages keyed by entity.
package ecs

import (
	"fmt"
)

// Entity identifies an entity in a World.
// The lower 32 bits hold the slot index and the upper 32
// bits hold the slot generation. Generations start at 1,
// so the zero Entity is never alive.
type Entity uint64

// Nil represents an invalid Entity.
const Nil Entity = 0

func newEntity(index, gen uint32) Entity { return Entity(uint64(gen)<<32 | uint64(index)) }

// Index returns the slot index of e.
func (e Entity) Index() uint32 { return uint32(e) }

// Generation returns the slot generation of e.
func (e Entity) Generation() uint32 { return uint32(e >> 32) }

func (e Entity) String() string { return fmt.Sprintf("%d.%d", e.Index(), e.Generation()) }

// Pool allocates entities from a free list of slots.
// Destroying an entity bumps its slot's generation, which
// invalidates stale handles.
type Pool struct {
	gens []uint32
	free []uint32
	live int
}

// Create allocates a new entity.
func (p *Pool) Create() Entity {
	p.live++
	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		return newEntity(idx, p.gens[idx])
	}
	p.gens = append(p.gens, 1)
	return newEntity(uint32(len(p.gens)-1), 1)
}

// Alive checks whether e was created by p and not yet
// destroyed.
func (p *Pool) Alive(e Entity) bool {
	idx := e.Index()
	return int(idx) < len(p.gens) && p.gens[idx] == e.Generation()
}

// Destroy releases e.
// Stale or unknown entities are ignored.
func (p *Pool) Destroy(e Entity) {
	if !p.Alive(e) {
		return
	}
	idx := e.Index()
	p.gens[idx]++
	if p.gens[idx] == 0 {
		// Skip the zero generation on wrap-around.
		p.gens[idx] = 1
	}
	p.free = append(p.free, idx)
	p.live--
}

// Len returns the number of live entities.
func (p *Pool) Len() int { return p.live }
