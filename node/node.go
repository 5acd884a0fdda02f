// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package node implements the scene's graph.
//
// A Graph is a tree of entities rooted at a sentinel node.
// It only records parent/child relationships; transforms and
// other per-entity data live in component storages keyed by
// the entity that each node holds.
package node

import (
	"errors"
	"fmt"
	"iter"

	"github.com/gviegas/scenery/ecs"
	"github.com/gviegas/scenery/internal/bitvec"
)

var (
	// ErrInvalidNode means that a Node does not refer to a live
	// node of the graph, or that the operation does not apply
	// to the root.
	ErrInvalidNode = errors.New("node: invalid node")

	// ErrInvalidEdge means that an edge would give a node a
	// second parent or create a cycle.
	ErrInvalidEdge = errors.New("node: invalid edge")

	// ErrMissingChild means that an entity expected to be in
	// the graph has no node.
	ErrMissingChild = errors.New("node: missing child")
)

// Node identifies a node in a Graph.
// The lower 32 bits hold the slot index and the upper 32
// bits hold the slot generation, so a Node that outlives
// its removal is rejected rather than aliasing whatever
// node reuses the slot.
type Node uint64

// Nil represents an invalid Node.
const Nil Node = 0

func newNode(index int, gen uint32) Node { return Node(uint64(gen)<<32 | uint64(uint32(index))) }

func (n Node) index() int     { return int(uint32(n)) }
func (n Node) gen() uint32    { return uint32(n >> 32) }
func (n Node) String() string { return fmt.Sprintf("%d.%d", n.index(), n.gen()) }

// Policy determines what happens to the descendants of a
// removed node.
type Policy int

const (
	// Cascade removes the whole subtree.
	Cascade Policy = iota
	// Reparent moves the immediate descendants to the
	// removed node's parent.
	Reparent
)

// none marks the absence of a link.
const none = -1

type slot struct {
	entity ecs.Entity
	gen    uint32
	parent int
	first  int
	last   int
	prev   int
	next   int
}

// Graph is a node graph.
// It is not safe for concurrent use.
type Graph struct {
	slots   []slot
	slotMap bitvec.V[uint32]
	ents    map[ecs.Entity]Node
	root    Node
	dirty   Tracker
}

// New creates a graph whose root node holds the given entity.
func New(root ecs.Entity) *Graph {
	g := &Graph{ents: make(map[ecs.Entity]Node)}
	g.dirty.g = g
	g.root = g.alloc(root, none)
	return g
}

// alloc takes a free slot for entity e and links it as the
// last immediate descendant of parent.
func (g *Graph) alloc(e ecs.Entity, parent int) Node {
	if g.slotMap.Rem() == 0 {
		var elems [32]slot
		for i := range elems {
			elems[i].gen = 1
		}
		g.slots = append(g.slots, elems[:]...)
		g.slotMap.Grow(1)
	}
	idx, ok := g.slotMap.Search()
	if !ok {
		// Should never happen.
		panic("unexpected failure from bitvec.V.Search")
	}
	g.slotMap.Set(idx)
	s := &g.slots[idx]
	*s = slot{entity: e, gen: s.gen, parent: none, first: none, last: none, prev: none, next: none}
	g.link(idx, parent)
	n := newNode(idx, s.gen)
	g.ents[e] = n
	return n
}

// free releases the slot at idx.
// The slot must have been unlinked already.
func (g *Graph) free(idx int) {
	s := &g.slots[idx]
	delete(g.ents, s.entity)
	g.dirty.forget(idx)
	g.slotMap.Unset(idx)
	gen := s.gen + 1
	if gen == 0 {
		gen = 1
	}
	*s = slot{gen: gen}
}

// link appends idx to the immediate descendants of parent.
func (g *Graph) link(idx, parent int) {
	s := &g.slots[idx]
	s.parent = parent
	if parent == none {
		return
	}
	p := &g.slots[parent]
	s.prev = p.last
	s.next = none
	if p.last != none {
		g.slots[p.last].next = idx
	} else {
		p.first = idx
	}
	p.last = idx
}

// unlink detaches idx from its parent.
func (g *Graph) unlink(idx int) {
	s := &g.slots[idx]
	if s.parent == none {
		return
	}
	p := &g.slots[s.parent]
	if s.prev != none {
		g.slots[s.prev].next = s.next
	} else {
		p.first = s.next
	}
	if s.next != none {
		g.slots[s.next].prev = s.prev
	} else {
		p.last = s.prev
	}
	s.parent, s.prev, s.next = none, none, none
}

// Valid checks whether n refers to a live node of g.
func (g *Graph) Valid(n Node) bool {
	idx := n.index()
	return idx < len(g.slots) && g.slotMap.IsSet(idx) && g.slots[idx].gen == n.gen()
}

func (g *Graph) check(n Node) error {
	if !g.Valid(n) {
		return fmt.Errorf("%w: %v", ErrInvalidNode, n)
	}
	return nil
}

// Root returns the root node.
func (g *Graph) Root() Node { return g.root }

// Len returns the number of nodes in g, including the root.
func (g *Graph) Len() int { return g.slotMap.Count() }

// Dirty returns g's dirty tracker.
func (g *Graph) Dirty() *Tracker { return &g.dirty }

// Insert inserts a new node holding entity e as the last
// immediate descendant of parent.
// It fails with ErrInvalidNode if parent is not a node of
// g, and with ErrInvalidEdge if e already has a node.
// The new node is not marked dirty.
func (g *Graph) Insert(parent Node, e ecs.Entity) (Node, error) {
	if err := g.check(parent); err != nil {
		return Nil, err
	}
	if n, ok := g.ents[e]; ok {
		return Nil, fmt.Errorf("%w: entity %v already held by node %v", ErrInvalidEdge, e, n)
	}
	return g.alloc(e, parent.index()), nil
}

// Remove removes node n.
// Under Cascade, every descendant of n is removed as well;
// under Reparent, the immediate descendants of n become
// immediate descendants of n's parent (and are marked dirty,
// since their ancestry changed).
// It returns the entities of the removed nodes, n's first.
// It fails with ErrInvalidNode if n is not a node of g or if
// n is the root.
func (g *Graph) Remove(n Node, p Policy) ([]ecs.Entity, error) {
	if err := g.check(n); err != nil {
		return nil, err
	}
	if n == g.root {
		return nil, fmt.Errorf("%w: cannot remove the root", ErrInvalidNode)
	}
	if p != Cascade && p != Reparent {
		panic(fmt.Sprintf("node: invalid policy %d", p))
	}
	idx := n.index()
	parent := g.slots[idx].parent
	g.unlink(idx)
	if p == Cascade {
		var ents []ecs.Entity
		var idxs []int
		for i := range g.walk(idx) {
			ents = append(ents, g.slots[i].entity)
			idxs = append(idxs, i)
		}
		for _, i := range idxs {
			g.free(i)
		}
		return ents, nil
	}
	var moved []int
	for c := g.slots[idx].first; c != none; {
		next := g.slots[c].next
		g.unlink(c)
		g.link(c, parent)
		moved = append(moved, c)
		c = next
	}
	ents := []ecs.Entity{g.slots[idx].entity}
	g.free(idx)
	for _, c := range moved {
		g.dirty.mark(c)
	}
	return ents, nil
}

// Reparent moves n, along with its descendants, to the end
// of parent's immediate descendants. The moved subtree is
// marked dirty.
// It fails with ErrInvalidNode if either node is not a node
// of g or if n is the root, and with ErrInvalidEdge if parent
// is n or a descendant of n.
func (g *Graph) Reparent(n, parent Node) error {
	if err := g.check(n); err != nil {
		return err
	}
	if err := g.check(parent); err != nil {
		return err
	}
	if n == g.root {
		return fmt.Errorf("%w: cannot reparent the root", ErrInvalidNode)
	}
	idx := n.index()
	for i := parent.index(); i != none; i = g.slots[i].parent {
		if i == idx {
			return fmt.Errorf("%w: %v is an ancestor of %v", ErrInvalidEdge, n, parent)
		}
	}
	g.unlink(idx)
	g.link(idx, parent.index())
	g.dirty.mark(idx)
	return nil
}

// Parent returns the immediate ancestor of n.
// It returns false if n is the root or not a node of g.
func (g *Graph) Parent(n Node) (Node, bool) {
	if !g.Valid(n) {
		return Nil, false
	}
	p := g.slots[n.index()].parent
	if p == none {
		return Nil, false
	}
	return g.node(p), true
}

// Depth returns the number of ancestors of n.
// It returns -1 if n is not a node of g.
func (g *Graph) Depth(n Node) int {
	if !g.Valid(n) {
		return -1
	}
	d := 0
	for p := g.slots[n.index()].parent; p != none; p = g.slots[p].parent {
		d++
	}
	return d
}

// Entity returns the entity held by n.
func (g *Graph) Entity(n Node) (ecs.Entity, bool) {
	if !g.Valid(n) {
		return ecs.Nil, false
	}
	return g.slots[n.index()].entity, true
}

// Lookup returns the node that holds entity e.
func (g *Graph) Lookup(e ecs.Entity) (Node, bool) {
	n, ok := g.ents[e]
	return n, ok
}

func (g *Graph) node(idx int) Node { return newNode(idx, g.slots[idx].gen) }

// Children returns an iterator over the immediate
// descendants of n, in insertion order.
// The iterator yields nothing if n is not a node of g.
func (g *Graph) Children(n Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if !g.Valid(n) {
			return
		}
		for c := g.slots[n.index()].first; c != none; c = g.slots[c].next {
			if !yield(g.node(c)) {
				return
			}
		}
	}
}

// walk returns a breadth-first iterator over the slot
// indices of the subtree rooted at idx.
func (g *Graph) walk(idx int) iter.Seq[int] {
	return func(yield func(int) bool) {
		que := []int{idx}
		for len(que) > 0 {
			i := que[0]
			que = que[1:]
			if !yield(i) {
				return
			}
			for c := g.slots[i].first; c != none; c = g.slots[c].next {
				que = append(que, c)
			}
		}
	}
}

// Walk returns an iterator over the subtree rooted at n,
// n included. Ancestors are yielded first.
// g must not be changed during iteration.
func (g *Graph) Walk(n Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if !g.Valid(n) {
			return
		}
		for i := range g.walk(n.index()) {
			if !yield(g.node(i)) {
				return
			}
		}
	}
}

// Order returns an iterator over every node of g such that
// a node is always yielded before its descendants.
// g must not be changed during iteration.
func (g *Graph) Order() iter.Seq[Node] { return g.Walk(g.root) }

// Edges returns an iterator over every parent/child pair
// of g, in the same order as Order.
func (g *Graph) Edges() iter.Seq2[Node, Node] {
	return func(yield func(Node, Node) bool) {
		for i := range g.walk(g.root.index()) {
			if p := g.slots[i].parent; p != none {
				if !yield(g.node(p), g.node(i)) {
					return
				}
			}
		}
	}
}
