// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/gviegas/scenery/ecs"
	"github.com/gviegas/scenery/linear"
	"github.com/gviegas/scenery/node"
	"github.com/gviegas/scenery/transform"
)

// LookAt is a constraint component that makes an entity
// face a point or another entity.
type LookAt struct {
	// Target is used when Entity is ecs.Nil.
	Target linear.V3
	Entity ecs.Entity
	Up     linear.V3
	// LH makes +Z the forward axis instead of -Z.
	LH bool
}

// LookAtPoint returns a constraint facing p.
func LookAtPoint(p linear.V3) LookAt {
	return LookAt{Target: p, Up: linear.V3{0, 1, 0}}
}

// LookAtEntity returns a constraint facing e.
func LookAtEntity(e ecs.Entity) LookAt {
	return LookAt{Entity: e, Up: linear.V3{0, 1, 0}}
}

// LookAtSystem solves LookAt constraints.
//
// Directions are taken between world positions as of the
// last resolution, and the resulting rotation replaces
// the local one, so the parent of a constrained entity is
// expected not to rotate.
type LookAtSystem struct {
	g       *node.Graph
	cons    *ecs.Storage[LookAt]
	locals  *ecs.Storage[transform.Local]
	worlds  *ecs.Storage[transform.World]
	log     *zap.Logger
	skipped int
}

// NewLookAtSystem creates a LookAtSystem over the
// components of w.
// log may be nil.
func NewLookAtSystem(w *ecs.World, g *node.Graph, log *zap.Logger) *LookAtSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &LookAtSystem{
		g:      g,
		cons:   ecs.Component[LookAt](w),
		locals: ecs.Component[transform.Local](w),
		worlds: ecs.Component[transform.World](w),
		log:    log,
	}
}

func (s *LookAtSystem) Phase() Phase { return PhaseConstraint }

// Skipped returns the number of constraints that could
// not be solved by the last call to Update.
func (s *LookAtSystem) Skipped() int { return s.skipped }

func (s *LookAtSystem) Update(time.Duration) {
	s.skipped = 0
	for e, c := range s.cons.All() {
		l, ok := s.locals.Get(e)
		if !ok {
			s.skip(e, "no local transform")
			continue
		}
		w, ok := s.worlds.Get(e)
		if !ok {
			s.skip(e, "no world transform")
			continue
		}
		target := c.Target
		if c.Entity != ecs.Nil {
			tw, ok := s.worlds.Get(c.Entity)
			if _, in := s.g.Lookup(c.Entity); !ok || !in {
				// The target is gone; try again next frame.
				s.skip(e, "missing target", zap.Stringer("target", c.Entity))
				continue
			}
			m := tw.Matrix()
			target = linear.V3{m[3][0], m[3][1], m[3][2]}
		}
		m := w.Matrix()
		var dir linear.V3
		dir.Sub(&target, &linear.V3{m[3][0], m[3][1], m[3][2]})
		var q linear.Q
		if !q.LookAt(&dir, &c.Up, c.LH) {
			s.skip(e, "degenerate direction")
			continue
		}
		if q == l.Rotation {
			continue
		}
		l.Rotation = q
		if n, ok := s.g.Lookup(e); ok {
			s.g.Dirty().Mark(n)
		}
	}
}

func (s *LookAtSystem) skip(e ecs.Entity, msg string, fields ...zap.Field) {
	s.skipped++
	s.log.Debug("look-at skipped: "+msg, append(fields, zap.Stringer("entity", e))...)
}
