// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package transform implements local and world transforms
// and their resolution over a node.Graph.
package transform

import (
	"github.com/gviegas/scenery/linear"
)

// Local is the transform of an entity relative to its
// parent.
type Local struct {
	Position linear.V3
	Rotation linear.Q
	Scale    linear.V3

	// Matrix replaces the position/rotation/scale
	// composition when Override is set.
	Matrix   linear.M4
	Override bool
}

// Identity returns the identity local transform.
func Identity() Local {
	return Local{
		Rotation: linear.Q{R: 1},
		Scale:    linear.V3{1, 1, 1},
	}
}

// Translation returns a local transform that only
// translates.
func Translation(x, y, z float32) Local {
	l := Identity()
	l.Position = linear.V3{x, y, z}
	return l
}

// Raw returns a local transform given by m.
func Raw(m *linear.M4) Local {
	l := Identity()
	l.Matrix = *m
	l.Override = true
	return l
}

// M4 sets m to contain the matrix of l, T ⋅ R ⋅ S.
func (l *Local) M4(m *linear.M4) {
	if l.Override {
		*m = l.Matrix
		return
	}
	m.Compose(&l.Position, &l.Rotation, &l.Scale)
}

// Inverse state of a World.
const (
	invUnknown = iota
	invValid
	invSingular
)

// World is the resolved transform of an entity relative
// to the root of the graph.
type World struct {
	m   linear.M4
	inv linear.M4
	st  int
}

// NewWorld returns an identity world transform.
func NewWorld() World {
	var w World
	w.m.I()
	return w
}

// Matrix returns the world matrix.
func (w *World) Matrix() *linear.M4 { return &w.m }

// Set replaces the world matrix and drops the cached
// inverse.
func (w *World) Set(m *linear.M4) {
	w.m = *m
	w.st = invUnknown
}

// Inverse returns the inverse of the world matrix.
// It is computed on first request and cached until the
// next call to Set.
// If the matrix is singular, Inverse returns false.
func (w *World) Inverse() (linear.M4, bool) {
	if w.st == invUnknown {
		if w.inv.Invert(&w.m) {
			w.st = invValid
		} else {
			w.st = invSingular
		}
	}
	if w.st == invSingular {
		return linear.M4{}, false
	}
	return w.inv, true
}
