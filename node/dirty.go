// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package node

import (
	"github.com/gviegas/scenery/internal/bitvec"
)

// Tracker records which nodes of a Graph have stale world
// transforms.
//
// Marking is eager: Mark flags the node and every one of
// its descendants, so a node whose flag is clear never has
// a dirty ancestor. The tracker also remembers the topmost
// nodes of each dirty subtree, which lets a resolver reach
// every dirty node without scanning clean ones.
type Tracker struct {
	g      *Graph
	bits   bitvec.V[uint64]
	listed bitvec.V[uint64]
	roots  []int
}

// Mark marks n and every descendant of n as dirty.
// Marking an already dirty subtree is a no-op.
func (t *Tracker) Mark(n Node) error {
	if err := t.g.check(n); err != nil {
		return err
	}
	t.mark(n.index())
	return nil
}

func (t *Tracker) mark(idx int) {
	for i := range t.g.walk(idx) {
		t.bits.Fit(i)
		t.bits.Set(i)
	}
	t.list(idx)
}

// list records idx as a potential dirty root.
func (t *Tracker) list(idx int) {
	t.listed.Fit(idx)
	if !t.listed.IsSet(idx) {
		t.listed.Set(idx)
		t.roots = append(t.roots, idx)
	}
}

// forget clears the flag of the slot at idx.
// A listed slot stays listed; Roots drops the entry unless
// the slot is reused and marked again.
func (t *Tracker) forget(idx int) {
	if t.bits.IsSet(idx) {
		t.bits.Unset(idx)
	}
}

// IsDirty checks whether n is marked dirty.
func (t *Tracker) IsDirty(n Node) bool {
	return t.g.Valid(n) && t.bits.IsSet(n.index())
}

// Clear clears n's dirty flag.
// The flags of n's descendants are not affected; the dirty
// immediate descendants become roots of their own.
// Only the transform resolver should call this method.
func (t *Tracker) Clear(n Node) {
	if !t.IsDirty(n) {
		return
	}
	idx := n.index()
	t.bits.Unset(idx)
	for c := t.g.slots[idx].first; c != none; c = t.g.slots[c].next {
		if t.bits.IsSet(c) {
			t.list(c)
		}
	}
}

// Len returns the number of dirty nodes.
func (t *Tracker) Len() int { return t.bits.Count() }

// Roots returns the topmost dirty nodes: those that are
// dirty and whose parent is clean. Every dirty node is a
// descendant of exactly one of them, or one of them.
// The returned slice is owned by the caller.
func (t *Tracker) Roots() []Node {
	var nodes []Node
	keep := t.roots[:0]
	for _, idx := range t.roots {
		if !t.bits.IsSet(idx) || !t.g.slotMap.IsSet(idx) {
			t.listed.Unset(idx)
			continue
		}
		if p := t.g.slots[idx].parent; p != none && t.bits.IsSet(p) {
			// Covered by a dirty ancestor.
			t.listed.Unset(idx)
			continue
		}
		keep = append(keep, idx)
		nodes = append(nodes, t.g.node(idx))
	}
	clear(t.roots[len(keep):])
	t.roots = keep
	return nodes
}
