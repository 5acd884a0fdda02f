// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package render

import (
	"fmt"
	"sync"

	"github.com/gviegas/scenery/internal/bitvec"
	"github.com/gviegas/scenery/linear"
)

// Mesh is the geometry held by a buffer.
type Mesh struct {
	Name      string
	Positions []linear.V3
	Indices   []uint32
}

// Buffer identifies a mesh buffer in a Buffers table.
// As with entities, the lower 32 bits hold the slot
// index and the upper 32 bits hold the slot generation.
// The zero Buffer is never valid.
type Buffer uint64

// NoBuffer represents an invalid Buffer.
const NoBuffer Buffer = 0

func (b Buffer) index() int     { return int(uint32(b)) }
func (b Buffer) gen() uint32    { return uint32(b >> 32) }
func (b Buffer) String() string { return fmt.Sprintf("buffer %d.%d", b.index(), b.gen()) }

// bufferID identifies a Buffers.data element.
type bufferID struct {
	gen  uint32
	data int
}

// bufferEntry is what a Buffers table stores.
type bufferEntry struct {
	mesh     Mesh
	uploaded bool
	id       int
}

// Buffers is a table of mesh buffers.
// It is safe for concurrent use.
type Buffers struct {
	mu    sync.Mutex
	ids   []bufferID
	idMap bitvec.V[uint32]
	data  []bufferEntry
}

// Create inserts m into the table.
// It returns a Buffer that identifies m.
func (t *Buffers) Create(m Mesh) Buffer {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.idMap.Rem() == 0 {
		switch n := t.idMap.Len(); {
		case n > 0:
			cnt := 1 + (n-31)/32
			more := make([]bufferID, cnt*32)
			for i := range more {
				more[i].gen = 1
			}
			t.ids = append(t.ids, more...)
			t.idMap.Grow(cnt)
		default:
			var elems [32]bufferID
			for i := range elems {
				elems[i].gen = 1
			}
			t.ids = append(t.ids, elems[:]...)
			t.idMap.Grow(1)
		}
	}
	idx, ok := t.idMap.Search()
	if !ok {
		// Should never happen.
		panic("unexpected failure from bitvec.V.Search")
	}
	t.idMap.Set(idx)
	t.ids[idx].data = len(t.data)
	t.data = append(t.data, bufferEntry{mesh: m, id: idx})
	return Buffer(uint64(t.ids[idx].gen)<<32 | uint64(uint32(idx)))
}

// pos returns the position of b in t.data.
// t.mu must be held.
func (t *Buffers) pos(b Buffer) (int, bool) {
	idx := b.index()
	if idx >= len(t.ids) || !t.idMap.IsSet(idx) || t.ids[idx].gen != b.gen() {
		return 0, false
	}
	return t.ids[idx].data, true
}

// Delete removes the buffer identified by b.
// It fails with ErrNoBuffer if b is not in t.
func (t *Buffers) Delete(b Buffer) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, ok := t.pos(b)
	if !ok {
		return fmt.Errorf("%w: %v", ErrNoBuffer, b)
	}
	last := len(t.data) - 1
	if d < last {
		swap := t.data[last].id
		t.ids[swap].data = d
		t.data[d] = t.data[last]
	}
	idx := b.index()
	t.ids[idx].data = -1
	if t.ids[idx].gen++; t.ids[idx].gen == 0 {
		t.ids[idx].gen = 1
	}
	t.idMap.Unset(idx)
	t.data[last] = bufferEntry{}
	t.data = t.data[:last]
	return nil
}

// Get returns a copy of the mesh identified by b.
func (t *Buffers) Get(b Buffer) (Mesh, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if d, ok := t.pos(b); ok {
		return t.data[d].mesh, true
	}
	return Mesh{}, false
}

// upload calls f with b's mesh if b was not uploaded yet,
// and records the upload if f succeeds.
func (t *Buffers) upload(b Buffer, f func(Buffer, *Mesh) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, ok := t.pos(b)
	if !ok {
		return fmt.Errorf("%w: %v", ErrNoBuffer, b)
	}
	if t.data[d].uploaded {
		return nil
	}
	if err := f(b, &t.data[d].mesh); err != nil {
		return err
	}
	t.data[d].uploaded = true
	return nil
}

// Len returns the number of buffers in t.
func (t *Buffers) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.data)
}
