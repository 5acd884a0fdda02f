// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package node

import (
	"errors"
	"slices"
	"testing"

	"github.com/gviegas/scenery/ecs"
)

// tree builds the following graph:
//
//	root
//	├── a
//	│   ├── b
//	│   │   └── c
//	│   └── d
//	└── e
func tree() (g *Graph, a, b, c, d, e Node) {
	var pool ecs.Pool
	g = New(pool.Create())
	a, _ = g.Insert(g.Root(), pool.Create())
	b, _ = g.Insert(a, pool.Create())
	c, _ = g.Insert(b, pool.Create())
	d, _ = g.Insert(a, pool.Create())
	e, _ = g.Insert(g.Root(), pool.Create())
	return
}

func TestMark(t *testing.T) {
	g, a, b, c, d, e := tree()
	trk := g.Dirty()
	if err := trk.Mark(b); err != nil {
		t.Fatalf("trk.Mark(b):\nhave %v\nwant nil", err)
	}
	for _, x := range [...]struct {
		n     Node
		dirty bool
	}{
		{g.Root(), false}, {a, false}, {b, true}, {c, true}, {d, false}, {e, false},
	} {
		if trk.IsDirty(x.n) != x.dirty {
			t.Fatalf("trk.IsDirty(%v):\nhave %t\nwant %t", x.n, !x.dirty, x.dirty)
		}
	}
	if n := trk.Len(); n != 2 {
		t.Fatalf("trk.Len:\nhave %d\nwant 2", n)
	}

	trk.Mark(b)
	if n := trk.Len(); n != 2 {
		t.Fatalf("trk.Mark: idempotent\nhave %d\nwant 2", n)
	}

	trk.Mark(a)
	if n := trk.Len(); n != 4 {
		t.Fatalf("trk.Mark(a): Len\nhave %d\nwant 4", n)
	}
	if have := trk.Roots(); !slices.Equal(have, []Node{a}) {
		t.Fatalf("trk.Roots:\nhave %v\nwant %v", have, []Node{a})
	}

	trk.Clear(a)
	if trk.IsDirty(a) || !trk.IsDirty(b) || !trk.IsDirty(c) || !trk.IsDirty(d) {
		t.Fatal("trk.Clear(a): descendants should remain dirty")
	}
	want := []Node{b, d}
	have := trk.Roots()
	slices.Sort(have)
	slices.Sort(want)
	if !slices.Equal(have, want) {
		t.Fatalf("trk.Roots: after Clear\nhave %v\nwant %v", have, want)
	}

	if err := trk.Mark(Nil); !errors.Is(err, ErrInvalidNode) {
		t.Fatalf("trk.Mark(Nil):\nhave %v\nwant %v", err, ErrInvalidNode)
	}
}

func TestMarkRoot(t *testing.T) {
	g, a, b, c, d, e := tree()
	trk := g.Dirty()
	trk.Mark(e)
	trk.Mark(c)
	trk.Mark(g.Root())
	for _, n := range [...]Node{g.Root(), a, b, c, d, e} {
		if !trk.IsDirty(n) {
			t.Fatalf("trk.IsDirty(%v):\nhave false\nwant true", n)
		}
	}
	if have := trk.Roots(); !slices.Equal(have, []Node{g.Root()}) {
		t.Fatalf("trk.Roots:\nhave %v\nwant %v", have, []Node{g.Root()})
	}
	for n := range g.Order() {
		trk.Clear(n)
	}
	if n := trk.Len(); n != 0 {
		t.Fatalf("trk.Len:\nhave %d\nwant 0", n)
	}
	if have := trk.Roots(); len(have) != 0 {
		t.Fatalf("trk.Roots:\nhave %v\nwant []", have)
	}
}

func TestMarkRemoved(t *testing.T) {
	g, a, b, c, _, _ := tree()
	trk := g.Dirty()
	trk.Mark(b)
	if _, err := g.Remove(b, Cascade); err != nil {
		t.Fatal(err)
	}
	if n := trk.Len(); n != 0 {
		t.Fatalf("trk.Len: after Remove\nhave %d\nwant 0", n)
	}
	if trk.IsDirty(b) || trk.IsDirty(c) {
		t.Fatal("trk.IsDirty: removed nodes should not be dirty")
	}
	if have := trk.Roots(); len(have) != 0 {
		t.Fatalf("trk.Roots:\nhave %v\nwant []", have)
	}

	// Reused slots start clean and are listed once
	// when marked.
	var pool ecs.Pool
	for range 10 {
		pool.Create()
	}
	x, _ := g.Insert(a, pool.Create())
	if trk.IsDirty(x) {
		t.Fatal("trk.IsDirty: reused slot should be clean")
	}
	trk.Mark(x)
	if have := trk.Roots(); !slices.Equal(have, []Node{x}) {
		t.Fatalf("trk.Roots:\nhave %v\nwant %v", have, []Node{x})
	}
}

func TestMarkInsertUnderDirty(t *testing.T) {
	g, a, _, _, _, _ := tree()
	trk := g.Dirty()
	trk.Mark(a)
	var pool ecs.Pool
	for range 10 {
		pool.Create()
	}
	x, _ := g.Insert(a, pool.Create())
	if trk.IsDirty(x) {
		t.Fatal("g.Insert: new node should not be marked")
	}
	trk.Mark(x)
	if have := trk.Roots(); !slices.Equal(have, []Node{a}) {
		t.Fatalf("trk.Roots:\nhave %v\nwant %v", have, []Node{a})
	}
}
