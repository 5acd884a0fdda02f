// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package transform

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gviegas/scenery/ecs"
	"github.com/gviegas/scenery/linear"
	"github.com/gviegas/scenery/node"
)

// Locals provides read access to local transforms.
// A node whose entity has no Local is treated as having
// the identity transform.
type Locals interface {
	Get(e ecs.Entity) (*Local, bool)
}

// Worlds provides write access to world transforms.
type Worlds interface {
	Get(e ecs.Entity) (*World, bool)
}

// Stats describes a resolution pass.
type Stats struct {
	// Number of nodes taken from the traversal queue.
	Visited int
	// Number of world transforms recomputed.
	Resolved int
	// Number of dirty nodes that could not be resolved.
	// They remain dirty, as do their descendants.
	Skipped int
}

// Resolver restores world transforms of dirty nodes.
type Resolver struct {
	log *zap.Logger
	que []node.Node
}

// NewResolver creates a resolver.
// log may be nil.
func NewResolver(log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{log: log}
}

// Resolve recomputes the world transform of every dirty
// node of g, so that
//
//	world[n] = world[parent(n)] ⋅ local[n]
//	world[root] = local[root]
//
// holds for every clean node afterwards.
// Each dirty subtree is walked parent first, starting at
// its topmost node, so clean parts of the graph are never
// visited beyond the immediate descendants of resolved
// nodes.
// A node that cannot be resolved is skipped along with its
// descendants; they stay dirty and are retried by the
// next call.
func (r *Resolver) Resolve(g *node.Graph, locals Locals, worlds Worlds) (st Stats) {
	trk := g.Dirty()
	for _, root := range trk.Roots() {
		r.que = append(r.que[:0], root)
		for len(r.que) > 0 {
			n := r.que[0]
			r.que = r.que[1:]
			st.Visited++
			if !trk.IsDirty(n) {
				continue
			}
			if err := r.resolve(g, n, locals, worlds); err != nil {
				st.Skipped++
				r.log.Debug("transform skipped", zap.Stringer("node", n), zap.Error(err))
				continue
			}
			trk.Clear(n)
			st.Resolved++
			for c := range g.Children(n) {
				r.que = append(r.que, c)
			}
		}
	}
	r.que = r.que[:0]
	return
}

func (r *Resolver) resolve(g *node.Graph, n node.Node, locals Locals, worlds Worlds) error {
	e, _ := g.Entity(n)
	w, ok := worlds.Get(e)
	if !ok {
		return fmt.Errorf("%w: entity %v has no world transform", node.ErrMissingChild, e)
	}
	var m linear.M4
	if l, ok := locals.Get(e); ok {
		l.M4(&m)
	} else {
		m.I()
	}
	if p, ok := g.Parent(n); ok {
		if g.Dirty().IsDirty(p) {
			return fmt.Errorf("parent %v is unresolved", p)
		}
		pe, _ := g.Entity(p)
		pw, ok := worlds.Get(pe)
		if !ok {
			return fmt.Errorf("%w: parent entity %v has no world transform", node.ErrMissingChild, pe)
		}
		m.Mul(pw.Matrix(), &m)
	}
	w.Set(&m)
	return nil
}
